package approve_reservation

import (
	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

// ApproveReservationRequest HTTP request model
type ApproveReservationRequest struct {
	ReferenceNumber string `json:"referenceNumber"` // Номер процесса SEI, "12345.123456/2025-01"
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *ApproveReservationRequest) ToServiceRequest(userID uuid.UUID) *models.ApproveRequest {
	return &models.ApproveRequest{
		UserID:          userID,
		ReferenceNumber: r.ReferenceNumber,
	}
}
