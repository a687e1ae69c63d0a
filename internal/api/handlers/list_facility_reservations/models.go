package list_facility_reservations

import (
	facilityModels "github.com/idjuv/agenda-service/internal/service/facilities/models"
	"github.com/idjuv/agenda-service/internal/service/reservations/models"
	getFacilityAgenda "github.com/idjuv/agenda-service/internal/usecase/get_facility_agenda"
)

const dateFormat = "2006-01-02"

// AgendaResponse HTTP response model
type AgendaResponse struct {
	Facility     *facilityModels.FacilityResponse `json:"facility"`
	From         string                           `json:"from"`
	To           string                           `json:"to"`
	Reservations []models.ReservationResponse     `json:"reservations"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getFacilityAgenda.Response) *AgendaResponse {
	return &AgendaResponse{
		Facility:     facilityModels.FromDomainFacility(resp.Facility),
		From:         resp.From.Format(dateFormat),
		To:           resp.To.Format(dateFormat),
		Reservations: models.FromDomainReservationList(resp.Reservations).Reservations,
	}
}
