package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status статус заявки на использование объекта
type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// transitions допустимые переходы статусов
var transitions = map[Status][]Status{
	StatusRequested: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusCancelled, StatusCompleted},
}

// IsValid returns true if the status is one of the known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal returns true if no transition leaves the status
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Reservation represents a request to use a facility for a bounded time window
type Reservation struct {
	ID         uuid.UUID
	SeriesID   *uuid.UUID // общий ID для повторяющейся заявки
	FacilityID int64

	Title             string
	Description       *string
	Area              *string // помещение/площадка внутри объекта
	EstimatedAudience *int
	Observations      *string

	StartAt time.Time
	EndAt   time.Time

	// Заявитель: либо свободный ввод, либо копия данных федерации/учреждения
	RequesterName     string
	RequesterDocument *string
	RequesterPhone    *string
	RequesterEmail    *string
	FederationID      *uuid.UUID
	InstitutionID     *uuid.UUID

	UsageType  UsageType
	Modalities []Modality

	Status Status

	ApprovedBy      *uuid.UUID
	DecidedAt       *time.Time
	RejectionReason *string
	ReferenceNumber *string
	CancelledAt     *time.Time
	CompletedAt     *time.Time

	DocumentURL *string

	CreatedBy uuid.UUID
	UpdatedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransitionTo returns true if the state machine allows moving to the target status
func (r *Reservation) CanTransitionTo(target Status) bool {
	for _, s := range transitions[r.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// IsBlocking returns true if the reservation occupies the facility agenda
func (r *Reservation) IsBlocking() bool {
	return r.Status != StatusCancelled && r.Status != StatusRejected
}

// IsTerminal returns true if the reservation can no longer change
func (r *Reservation) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// Overlaps проверяет пересечение с окном [start, end].
// Границы включительные: касание по времени окончания считается пересечением.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return !r.StartAt.After(end) && !r.EndAt.Before(start)
}

// HasFinished returns true if the reservation window has already ended at now
func (r *Reservation) HasFinished(now time.Time) bool {
	return !now.Before(r.EndAt)
}

// IsFromPartner returns true if the requester identity was copied from a federation or institution
func (r *Reservation) IsFromPartner() bool {
	return r.FederationID != nil || r.InstitutionID != nil
}

// Duration returns the length of the reservation window
func (r *Reservation) Duration() time.Duration {
	return r.EndAt.Sub(r.StartAt)
}

// AgendaFilter фильтр выборки агенды объекта
type AgendaFilter struct {
	FacilityID      int64      // Обязательный параметр
	From            *time.Time // Начало периода (опционально)
	To              *time.Time // Конец периода (опционально)
	Status          *Status    // Фильтр по статусу (опционально)
	IncludeInactive bool       // Включать отмененные и отклоненные
	ForUpdate       bool       // Блокировать строки (только внутри транзакции)
}

// StatusChange описывает переход статуса заявки.
// Обновление применяется только если текущий статус равен From.
type StatusChange struct {
	From    Status
	To      Status
	ActorID uuid.UUID
	At      time.Time

	ReferenceNumber *string // для approved
	RejectionReason *string // для rejected
}
