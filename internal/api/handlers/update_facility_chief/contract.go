package update_facility_chief

import (
	"context"

	"github.com/idjuv/agenda-service/internal/service/facilities/models"
)

type FacilityService interface {
	AssignChief(ctx context.Context, id int64, req *models.AssignChiefRequest) (*models.FacilityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
