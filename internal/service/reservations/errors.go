package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда заявка не найдена
	ErrReservationNotFound = errors.New("reservations: reservation not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на действие
	ErrAccessDenied = errors.New("reservations: access denied")

	// ErrInvalidTransition возвращается, когда переход недопустим из текущего статуса
	// или статус изменился конкурентно
	ErrInvalidTransition = errors.New("reservations: invalid status transition")

	// ErrInvalidReference возвращается при пустом или некорректном номере процесса
	ErrInvalidReference = errors.New("reservations: invalid reference number")

	// ErrReasonRequired возвращается при пустой причине отклонения
	ErrReasonRequired = errors.New("reservations: rejection reason is required")

	// ErrReasonTooLong возвращается, когда причина отклонения слишком длинная
	ErrReasonTooLong = errors.New("reservations: rejection reason is too long")

	// ErrNotFinished возвращается при попытке завершить заявку до окончания окна
	ErrNotFinished = errors.New("reservations: reservation window has not ended yet")

	// ErrInvalidDocument возвращается при некорректном файле документа
	ErrInvalidDocument = errors.New("reservations: invalid document")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)
