package update_facility_chief

import (
	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/service/facilities/models"
)

// UpdateChiefRequest HTTP request model. chiefUserId = null снимает руководителя.
type UpdateChiefRequest struct {
	ChiefUserID *uuid.UUID `json:"chiefUserId"`
	ChiefName   *string    `json:"chiefName,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateChiefRequest) ToServiceRequest(role string) *models.AssignChiefRequest {
	return &models.AssignChiefRequest{
		ActorRole:   role,
		ChiefUserID: r.ChiefUserID,
		ChiefName:   r.ChiefName,
	}
}
