package get_facility

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/service/facilities"
)

const (
	msgInvalidFacilityID = "ID de espaço inválido"
	msgNotFound          = "espaço não encontrado"
)

type Handler struct {
	service FacilityService
	logger  Logger
}

func NewHandler(service FacilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(mux.Vars(r)["facilityId"], 10, 64)
	if err != nil || facilityID <= 0 {
		h.logger.Warn("GET /facilities/{id} - Invalid facility ID: %s", mux.Vars(r)["facilityId"])
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	facility, err := h.service.Get(r.Context(), facilityID)
	if err != nil {
		if errors.Is(err, facilities.ErrFacilityNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /facilities/{id} - Failed to get facility: facility_id=%d, error=%v", facilityID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, facility)
}
