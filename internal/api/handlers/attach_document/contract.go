package attach_document

import (
	"context"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

type ReservationService interface {
	AttachDocument(ctx context.Context, id uuid.UUID, req *models.DocumentRequest) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
