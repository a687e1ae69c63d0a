package create_reservation

import (
	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/service/reservations/models"
	createReservation "github.com/idjuv/agenda-service/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	Title      string   `json:"title"`
	UsageType  string   `json:"usageType"`
	Modalities []string `json:"modalities,omitempty"`

	StartDate string `json:"startDate"` // "2025-03-10"
	StartTime string `json:"startTime"` // "08:00"
	EndDate   string `json:"endDate"`
	EndTime   string `json:"endTime"`

	Description       *string `json:"description,omitempty"`
	Area              *string `json:"area,omitempty"`
	EstimatedAudience *int    `json:"estimatedAudience,omitempty"`
	Observations      *string `json:"observations,omitempty"`

	RequesterSource   string     `json:"requesterSource,omitempty"` // manual | federation | institution
	RequesterName     string     `json:"requesterName,omitempty"`
	RequesterDocument *string    `json:"requesterDocument,omitempty"`
	RequesterPhone    *string    `json:"requesterPhone,omitempty"`
	RequesterEmail    *string    `json:"requesterEmail,omitempty"`
	FederationID      *uuid.UUID `json:"federationId,omitempty"`
	InstitutionID     *uuid.UUID `json:"institutionId,omitempty"`

	Recurrence *string `json:"recurrence,omitempty"` // "FREQ=WEEKLY;COUNT=4"
}

// CreateReservationResponse HTTP response model
type CreateReservationResponse struct {
	SeriesID     *uuid.UUID                   `json:"seriesId,omitempty"`
	Reservations []models.ReservationResponse `json:"reservations"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(facilityID int64, actorID uuid.UUID) *createReservation.Request {
	return &createReservation.Request{
		FacilityID:        facilityID,
		ActorID:           actorID,
		Title:             r.Title,
		UsageType:         r.UsageType,
		Modalities:        r.Modalities,
		StartDate:         r.StartDate,
		StartTime:         r.StartTime,
		EndDate:           r.EndDate,
		EndTime:           r.EndTime,
		Description:       r.Description,
		Area:              r.Area,
		EstimatedAudience: r.EstimatedAudience,
		Observations:      r.Observations,
		RequesterSource:   r.RequesterSource,
		RequesterName:     r.RequesterName,
		RequesterDocument: r.RequesterDocument,
		RequesterPhone:    r.RequesterPhone,
		RequesterEmail:    r.RequesterEmail,
		FederationID:      r.FederationID,
		InstitutionID:     r.InstitutionID,
		Recurrence:        r.Recurrence,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *CreateReservationResponse {
	list := models.FromDomainReservationList(resp.Reservations)
	return &CreateReservationResponse{
		SeriesID:     resp.SeriesID,
		Reservations: list.Reservations,
	}
}
