package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/queue"
)

// ReservationRepository интерфейс репозитория заявок
type ReservationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange) (*domain.Reservation, error)
	CompleteElapsed(ctx context.Context, before time.Time) ([]*domain.Reservation, error)
	SetDocument(ctx context.Context, id uuid.UUID, documentURL string, actorID uuid.UUID) error
}

// FacilityRepository интерфейс репозитория объектов
type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// DocumentStorage интерфейс объектного хранилища документов
type DocumentStorage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// AgendaCache интерфейс кэша агенды
type AgendaCache interface {
	InvalidateScope(ctx context.Context, entity, scope string) error
}

// EventPublisher интерфейс издателя событий
type EventPublisher interface {
	PublishReservation(ctx context.Context, event queue.ReservationEvent) error
}

// TransitionMetrics счетчик переходов статусов
type TransitionMetrics interface {
	ObserveTransition(status string)
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
