package get_facility_agenda

import "errors"

var (
	// ErrFacilityNotFound возвращается, когда объект не найден
	ErrFacilityNotFound = errors.New("get_facility_agenda: facility not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_facility_agenda: invalid input data")

	// ErrRangeTooLong возвращается, когда период превышает допустимую длину
	ErrRangeTooLong = errors.New("get_facility_agenda: date range is too long")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_facility_agenda: internal error")
)
