package reject_reservation

import (
	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

// RejectReservationRequest HTTP request model
type RejectReservationRequest struct {
	Reason string `json:"reason"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RejectReservationRequest) ToServiceRequest(userID uuid.UUID) *models.RejectRequest {
	return &models.RejectRequest{
		UserID: userID,
		Reason: r.Reason,
	}
}
