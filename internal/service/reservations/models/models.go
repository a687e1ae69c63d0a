package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
)

// Request модели

// ApproveRequest запрос на утверждение заявки
type ApproveRequest struct {
	UserID          uuid.UUID `json:"-"`
	ReferenceNumber string    `json:"referenceNumber"`
}

// RejectRequest запрос на отклонение заявки
type RejectRequest struct {
	UserID uuid.UUID `json:"-"`
	Reason string    `json:"reason"`
}

// ActionRequest запрос на отмену или завершение заявки
type ActionRequest struct {
	UserID uuid.UUID `json:"-"`
}

// DocumentRequest запрос на прикрепление документа (ofício, termo)
type DocumentRequest struct {
	UserID      uuid.UUID
	Filename    string
	ContentType string
	Body        []byte
}

// Response модели

// ReservationResponse ответ с данными заявки
type ReservationResponse struct {
	ID         uuid.UUID  `json:"id"`
	SeriesID   *uuid.UUID `json:"seriesId,omitempty"`
	FacilityID int64      `json:"facilityId"`

	Title             string  `json:"title"`
	Description       *string `json:"description,omitempty"`
	Area              *string `json:"area,omitempty"`
	EstimatedAudience *int    `json:"estimatedAudience,omitempty"`
	Observations      *string `json:"observations,omitempty"`

	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`

	RequesterName     string     `json:"requesterName"`
	RequesterDocument *string    `json:"requesterDocument,omitempty"`
	RequesterPhone    *string    `json:"requesterPhone,omitempty"`
	RequesterEmail    *string    `json:"requesterEmail,omitempty"`
	FederationID      *uuid.UUID `json:"federationId,omitempty"`
	InstitutionID     *uuid.UUID `json:"institutionId,omitempty"`

	UsageType  string   `json:"usageType"`
	Modalities []string `json:"modalities"`
	Status     string   `json:"status"`

	ApprovedBy      *uuid.UUID `json:"approvedBy,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	ReferenceNumber *string    `json:"referenceNumber,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	DocumentURL     *string    `json:"documentUrl,omitempty"`

	CreatedBy uuid.UUID `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком заявок
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	modalities := make([]string, 0, len(r.Modalities))
	for _, m := range r.Modalities {
		modalities = append(modalities, string(m))
	}

	return &ReservationResponse{
		ID:                r.ID,
		SeriesID:          r.SeriesID,
		FacilityID:        r.FacilityID,
		Title:             r.Title,
		Description:       r.Description,
		Area:              r.Area,
		EstimatedAudience: r.EstimatedAudience,
		Observations:      r.Observations,
		StartAt:           r.StartAt,
		EndAt:             r.EndAt,
		RequesterName:     r.RequesterName,
		RequesterDocument: r.RequesterDocument,
		RequesterPhone:    r.RequesterPhone,
		RequesterEmail:    r.RequesterEmail,
		FederationID:      r.FederationID,
		InstitutionID:     r.InstitutionID,
		UsageType:         string(r.UsageType),
		Modalities:        modalities,
		Status:            string(r.Status),
		ApprovedBy:        r.ApprovedBy,
		DecidedAt:         r.DecidedAt,
		RejectionReason:   r.RejectionReason,
		ReferenceNumber:   r.ReferenceNumber,
		CancelledAt:       r.CancelledAt,
		CompletedAt:       r.CompletedAt,
		DocumentURL:       r.DocumentURL,
		CreatedBy:         r.CreatedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		if dto := FromDomainReservation(r); dto != nil {
			resp.Reservations = append(resp.Reservations, *dto)
		}
	}

	return resp
}
