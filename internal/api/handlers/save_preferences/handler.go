package save_preferences

import (
	"errors"
	"net/http"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/api/middleware"
	"github.com/idjuv/agenda-service/internal/service/preferences"
)

const (
	msgUnauthorized       = "usuário não autenticado"
	msgInvalidRequestBody = "corpo da requisição inválido"
	msgFacilityNotFound   = "espaço selecionado não encontrado"
)

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

// Handle PUT /api/v1/me/preferences
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req preferences.Preferences
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /me/preferences - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	saved, err := h.service.Save(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, preferences.ErrFacilityNotFound) {
			handlers.RespondNotFound(w, msgFacilityNotFound)
			return
		}
		h.logger.Error("PUT /me/preferences - Failed to save preferences: user_id=%s, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, saved)
}
