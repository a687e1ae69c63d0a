package approve_reservation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/api/middleware"
	"github.com/idjuv/agenda-service/internal/service/reservations"
)

const (
	msgInvalidReservationID = "ID de agendamento inválido"
	msgInvalidRequestBody   = "corpo da requisição inválido"
	msgUnauthorized         = "usuário não autenticado"
	msgNotFound             = "agendamento não encontrado"
	msgForbidden            = "apenas o chefe do espaço pode aprovar agendamentos"
	msgInvalidReference     = "informe um número de processo SEI válido (ex.: 12345.123456/2025-01)"
	msgInvalidTransition    = "o agendamento não pode ser aprovado no status atual"
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

// Handle PATCH /api/v1/reservations/{reservationId}/approve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(mux.Vars(r)["reservationId"])
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/approve - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req ApproveReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservations/{id}/approve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	reservation, err := h.service.Approve(r.Context(), reservationID, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservations/{id}/approve - Reservation not found: reservation_id=%s", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/approve - Access denied: reservation_id=%s, user_id=%s",
				reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidReference):
			handlers.RespondBadRequest(w, msgInvalidReference)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservations/{id}/approve - Invalid transition: reservation_id=%s", reservationID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		default:
			h.logger.Error("PATCH /reservations/{id}/approve - Failed to approve reservation: reservation_id=%s, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/approve - Reservation approved: reservation_id=%s, user_id=%s",
		reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
