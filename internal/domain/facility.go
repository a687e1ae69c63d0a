package domain

import (
	"time"

	"github.com/google/uuid"
)

// Facility represents a bookable physical space ("unidade local")
type Facility struct {
	ID       int64
	Name     string
	Address  *string
	Capacity *int

	// Текущий руководитель объекта, единственный, кто утверждает заявки
	ChiefUserID *uuid.UUID
	ChiefName   *string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasChief returns true if a current chief is designated
func (f *Facility) HasChief() bool {
	return f.ChiefUserID != nil
}

// IsChief returns true if userID is the designated current chief of the facility
func (f *Facility) IsChief(userID uuid.UUID) bool {
	return f.ChiefUserID != nil && *f.ChiefUserID == userID
}

// Роли пользователей из JWT
const (
	RoleAdmin = "admin"
)
