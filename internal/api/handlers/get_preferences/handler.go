package get_preferences

import (
	"net/http"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/api/middleware"
)

const msgUnauthorized = "usuário não autenticado"

type Handler struct {
	service PreferencesService
	logger  Logger
}

func NewHandler(service PreferencesService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/me/preferences
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	prefs, err := h.service.Load(r.Context(), userID)
	if err != nil {
		h.logger.Error("GET /me/preferences - Failed to load preferences: user_id=%s, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, prefs)
}
