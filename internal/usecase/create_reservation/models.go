package create_reservation

import (
	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
)

// Request модель запроса на создание заявки.
// Даты и время задаются в часовом поясе агенды.
type Request struct {
	FacilityID int64     `validate:"gt=0"`
	ActorID    uuid.UUID // Пользователь, создающий заявку

	Title      string   `validate:"required,max=200"`
	UsageType  string   `validate:"required"`
	Modalities []string // Обязательны для спортивных типов

	StartDate string `validate:"required"` // YYYY-MM-DD
	StartTime string `validate:"required"` // HH:MM
	EndDate   string `validate:"required"`
	EndTime   string `validate:"required"`

	Description       *string `validate:"omitempty,max=2000"`
	Area              *string `validate:"omitempty,max=200"`
	EstimatedAudience *int    `validate:"omitempty,min=0"`
	Observations      *string `validate:"omitempty,max=2000"`

	RequesterSource   string  // manual (по умолчанию), federation, institution
	RequesterName     string  `validate:"required_if=RequesterSource manual,max=200"`
	RequesterDocument *string `validate:"omitempty,max=32"`
	RequesterPhone    *string `validate:"omitempty,max=32"`
	RequesterEmail    *string `validate:"omitempty,email"`
	FederationID      *uuid.UUID
	InstitutionID     *uuid.UUID

	Recurrence *string // RRULE, например FREQ=WEEKLY;COUNT=4
}

// Response модель ответа с созданными заявками (несколько при повторении)
type Response struct {
	SeriesID     *uuid.UUID
	Reservations []*domain.Reservation
}
