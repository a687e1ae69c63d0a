package create_reservation

import (
	"errors"
	"strings"

	"github.com/idjuv/agenda-service/internal/domain"
)

var (
	// ErrFacilityNotFound возвращается, когда объект не найден
	ErrFacilityNotFound = errors.New("create_reservation: facility not found")

	// ErrFacilityInactive возвращается, когда объект не принимает заявки
	ErrFacilityInactive = errors.New("create_reservation: facility is inactive")

	// ErrFederationNotFound возвращается, когда выбранная федерация не найдена
	ErrFederationNotFound = errors.New("create_reservation: federation not found")

	// ErrInstitutionNotFound возвращается, когда выбранное учреждение не найдено
	ErrInstitutionNotFound = errors.New("create_reservation: institution not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrConflict возвращается, когда окно пересекается с существующей заявкой
	ErrConflict = errors.New("create_reservation: reservation window conflicts with existing reservation")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)

// ValidationError содержит упорядоченный список сообщений для пользователя
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidInput.Error() + ": " + strings.Join(e.Messages, "; ")
}

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidInput)
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConflictError указывает первую пересекающуюся заявку.
// Conflicting пуст, если пересечение обнаружила БД.
type ConflictError struct {
	Conflicting *domain.Reservation
}

func (e *ConflictError) Error() string {
	if e.Conflicting == nil {
		return ErrConflict.Error()
	}
	return ErrConflict.Error() + ": " + e.Conflicting.Title
}

// Is позволяет проверять ошибку через errors.Is(err, ErrConflict)
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Title название пересекающейся заявки, если известно
func (e *ConflictError) Title() string {
	if e.Conflicting == nil {
		return ""
	}
	return e.Conflicting.Title
}
