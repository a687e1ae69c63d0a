package get_facility_agenda

import (
	"time"

	"github.com/idjuv/agenda-service/internal/domain"
)

// Request модель запроса агенды объекта
type Request struct {
	FacilityID      int64   // ID объекта
	From            string  // Дата начала периода YYYY-MM-DD (включительно)
	To              string  // Дата конца периода YYYY-MM-DD (включительно)
	Status          *string // Фильтр по статусу (опционально)
	IncludeInactive bool    // Включать отмененные и отклоненные
}

// Response модель ответа с агендой
type Response struct {
	Facility     *domain.Facility
	From         time.Time
	To           time.Time
	Reservations []*domain.Reservation // По возрастанию start_at
}
