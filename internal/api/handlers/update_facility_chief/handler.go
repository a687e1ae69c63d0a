package update_facility_chief

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/api/middleware"
	"github.com/idjuv/agenda-service/internal/service/facilities"
)

const (
	msgInvalidFacilityID  = "ID de espaço inválido"
	msgInvalidRequestBody = "corpo da requisição inválido"
	msgInvalidInput       = "dados do chefe do espaço inválidos"
	msgNotFound           = "espaço não encontrado"
	msgForbidden          = "apenas administradores podem designar o chefe do espaço"
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

// Handle PUT /api/v1/facilities/{facilityId}/chief
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(mux.Vars(r)["facilityId"], 10, 64)
	if err != nil || facilityID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	var req UpdateChiefRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /facilities/{id}/chief - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	facility, err := h.service.AssignChief(r.Context(), facilityID, req.ToServiceRequest(middleware.GetRole(r.Context())))
	if err != nil {
		switch {
		case errors.Is(err, facilities.ErrAccessDenied):
			h.logger.Warn("PUT /facilities/{id}/chief - Access denied: facility_id=%d, user_id=%s", facilityID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, facilities.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, facilities.ErrFacilityNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("PUT /facilities/{id}/chief - Failed to assign chief: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /facilities/{id}/chief - Chief updated: facility_id=%d, by user_id=%s", facilityID, userID)
	handlers.RespondJSON(w, http.StatusOK, facility)
}
