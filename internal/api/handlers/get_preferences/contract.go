package get_preferences

import (
	"context"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/service/preferences"
)

type PreferencesService interface {
	Load(ctx context.Context, userID uuid.UUID) (*preferences.Preferences, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
