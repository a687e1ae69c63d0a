package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
)

// ReservationEvent событие изменения статуса резервирования
type ReservationEvent struct {
	ReservationID  uuid.UUID      `json:"reservation_id"`
	FacilityID     int64          `json:"facility_id"`
	Title          string         `json:"title"`
	Status         domain.Status  `json:"status"`
	PreviousStatus *domain.Status `json:"previous_status,omitempty"`
	StartAt        time.Time      `json:"start_at"`
	EndAt          time.Time      `json:"end_at"`
	ActorID        uuid.UUID      `json:"actor_id"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

// NewReservationEvent собирает событие по резервированию после изменения
func NewReservationEvent(r *domain.Reservation, previous *domain.Status, actorID uuid.UUID, at time.Time) ReservationEvent {
	return ReservationEvent{
		ReservationID:  r.ID,
		FacilityID:     r.FacilityID,
		Title:          r.Title,
		Status:         r.Status,
		PreviousStatus: previous,
		StartAt:        r.StartAt,
		EndAt:          r.EndAt,
		ActorID:        actorID,
		OccurredAt:     at,
	}
}

// RoutingKey ключ маршрутизации вида reservation.<status>
func (e ReservationEvent) RoutingKey() string {
	return "reservation." + string(e.Status)
}
