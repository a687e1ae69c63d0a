package facilities

import (
	"context"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
)

// FacilityRepository интерфейс репозитория объектов
type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Facility, error)
	UpdateChief(ctx context.Context, id int64, chiefUserID *uuid.UUID, chiefName *string) (*domain.Facility, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
