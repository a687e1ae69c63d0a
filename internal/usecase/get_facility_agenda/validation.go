package get_facility_agenda

import (
	"fmt"
	"time"

	"github.com/idjuv/agenda-service/internal/domain"
)

// period границы периода: from начало первого дня, to последний момент последнего
type period struct {
	from time.Time
	to   time.Time
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, loc *time.Location) (period, *domain.Status, error) {
	if req.FacilityID <= 0 {
		return period{}, nil, fmt.Errorf("%w: facilityID must be positive", ErrInvalidInput)
	}

	from, err := time.ParseInLocation(domain.DateFormat, req.From, loc)
	if err != nil {
		return period{}, nil, fmt.Errorf("%w: invalid from date: %v", ErrInvalidInput, err)
	}

	to, err := time.ParseInLocation(domain.DateFormat, req.To, loc)
	if err != nil {
		return period{}, nil, fmt.Errorf("%w: invalid to date: %v", ErrInvalidInput, err)
	}

	if to.Before(from) {
		return period{}, nil, fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}

	if to.Sub(from) > domain.MaxAgendaRangeDays*24*time.Hour {
		return period{}, nil, fmt.Errorf("%w: at most %d days", ErrRangeTooLong, domain.MaxAgendaRangeDays)
	}

	var status *domain.Status
	if req.Status != nil && *req.Status != "" {
		s := domain.Status(*req.Status)
		if !s.IsValid() {
			return period{}, nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		status = &s
	}

	// Конец периода включительно: до последней наносекунды дня
	end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)

	return period{from: from, to: end}, status, nil
}
