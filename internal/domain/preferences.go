package domain

import (
	"time"

	"github.com/google/uuid"
)

// Preferences пользовательские настройки, сохраняемые между сессиями
type Preferences struct {
	UserID             uuid.UUID
	SelectedFacilityID *int64
	UpdatedAt          time.Time
}
