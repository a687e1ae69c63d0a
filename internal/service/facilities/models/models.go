package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
)

// AssignChiefRequest запрос на назначение руководителя объекта.
// ChiefUserID = nil снимает текущего руководителя.
type AssignChiefRequest struct {
	ActorRole   string     `json:"-"`
	ChiefUserID *uuid.UUID `json:"chiefUserId"`
	ChiefName   *string    `json:"chiefName,omitempty"`
}

// FacilityResponse ответ с данными объекта
type FacilityResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Address     *string    `json:"address,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	ChiefUserID *uuid.UUID `json:"chiefUserId,omitempty"`
	ChiefName   *string    `json:"chiefName,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FacilityListResponse ответ со списком объектов
type FacilityListResponse struct {
	Facilities []FacilityResponse `json:"facilities"`
}

// FromDomainFacility конвертирует domain модель в DTO
func FromDomainFacility(f *domain.Facility) *FacilityResponse {
	if f == nil {
		return nil
	}

	return &FacilityResponse{
		ID:          f.ID,
		Name:        f.Name,
		Address:     f.Address,
		Capacity:    f.Capacity,
		ChiefUserID: f.ChiefUserID,
		ChiefName:   f.ChiefName,
		Active:      f.Active,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// FromDomainFacilityList конвертирует список domain моделей в DTO
func FromDomainFacilityList(facilities []*domain.Facility) *FacilityListResponse {
	resp := &FacilityListResponse{
		Facilities: make([]FacilityResponse, 0, len(facilities)),
	}

	for _, f := range facilities {
		if dto := FromDomainFacility(f); dto != nil {
			resp.Facilities = append(resp.Facilities, *dto)
		}
	}

	return resp
}
