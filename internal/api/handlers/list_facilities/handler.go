package list_facilities

import (
	"net/http"
	"strconv"

	"github.com/idjuv/agenda-service/internal/api/handlers"
)

const msgInvalidActiveFlag = "parâmetro activeOnly inválido"

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

// Handle GET /api/v1/facilities?activeOnly=true
// По умолчанию возвращаются только активные объекты.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if raw := r.URL.Query().Get("activeOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidActiveFlag)
			return
		}
		activeOnly = v
	}

	list, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("GET /facilities - Failed to list facilities: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, list)
}
