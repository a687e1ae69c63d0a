package list_partners

import (
	"context"

	"github.com/idjuv/agenda-service/internal/service/partners"
)

type PartnerService interface {
	List(ctx context.Context, kind string) ([]partners.Partner, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
