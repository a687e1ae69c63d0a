package list_facility_reservations

import (
	"context"

	getFacilityAgenda "github.com/idjuv/agenda-service/internal/usecase/get_facility_agenda"
)

type GetFacilityAgendaUseCase interface {
	Execute(ctx context.Context, req *getFacilityAgenda.Request) (*getFacilityAgenda.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
