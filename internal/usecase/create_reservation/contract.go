package create_reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/queue"
)

// ReservationRepository интерфейс репозитория заявок
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	GetByFacilityWithFilter(ctx context.Context, filter domain.AgendaFilter) ([]*domain.Reservation, error)
}

// FacilityRepository интерфейс репозитория объектов
type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// PartnerRepository интерфейс репозитория федераций и учреждений
type PartnerRepository interface {
	GetFederation(ctx context.Context, id uuid.UUID) (*domain.Federation, error)
	GetInstitution(ctx context.Context, id uuid.UUID) (*domain.Institution, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AgendaCache интерфейс кэша агенды
type AgendaCache interface {
	InvalidateScope(ctx context.Context, entity, scope string) error
}

// EventPublisher интерфейс издателя событий
type EventPublisher interface {
	PublishReservation(ctx context.Context, event queue.ReservationEvent) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
