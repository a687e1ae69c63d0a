package get_facility_agenda

import (
	"context"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/cache"
)

// ReservationRepository интерфейс репозитория заявок
type ReservationRepository interface {
	GetByFacilityWithFilter(ctx context.Context, filter domain.AgendaFilter) ([]*domain.Reservation, error)
}

// FacilityRepository интерфейс репозитория объектов
type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// AgendaCache интерфейс кэша агенды
type AgendaCache interface {
	Generation(ctx context.Context, entity, scope string) (int64, error)
	Get(ctx context.Context, key cache.Key, dst interface{}) (bool, error)
	Set(ctx context.Context, key cache.Key, value interface{}) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
