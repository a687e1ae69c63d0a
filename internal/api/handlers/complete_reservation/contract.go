package complete_reservation

import (
	"context"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

type ReservationService interface {
	Complete(ctx context.Context, id uuid.UUID, req *models.ActionRequest) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
