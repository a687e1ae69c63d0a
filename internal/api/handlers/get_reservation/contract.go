package get_reservation

import (
	"context"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

type ReservationService interface {
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
