package complete_reservation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/api/middleware"
	"github.com/idjuv/agenda-service/internal/service/reservations"
	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

const (
	msgInvalidReservationID = "ID de agendamento inválido"
	msgUnauthorized         = "usuário não autenticado"
	msgNotFound             = "agendamento não encontrado"
	msgForbidden            = "apenas o chefe do espaço pode concluir agendamentos"
	msgInvalidTransition    = "apenas agendamentos aprovados podem ser concluídos"
	msgNotFinished          = "o agendamento ainda não terminou"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(mux.Vars(r)["reservationId"])
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/complete - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	reservation, err := h.service.Complete(r.Context(), reservationID, &models.ActionRequest{UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservations/{id}/complete - Reservation not found: reservation_id=%s", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/complete - Access denied: reservation_id=%s, user_id=%s",
				reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrNotFinished):
			handlers.RespondError(w, http.StatusConflict, msgNotFinished)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservations/{id}/complete - Invalid transition: reservation_id=%s", reservationID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		default:
			h.logger.Error("PATCH /reservations/{id}/complete - Failed to complete reservation: reservation_id=%s, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/complete - Reservation completed: reservation_id=%s, user_id=%s",
		reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
