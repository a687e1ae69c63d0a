package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда заявка не найдена
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrOverlap возвращается, когда БД отклонила пересекающуюся заявку (exclusion constraint или сериализация)
	ErrOverlap = errors.New("reservation.repository: overlapping reservation")

	// ErrStatusChanged возвращается, когда статус заявки изменился до применения перехода
	ErrStatusChanged = errors.New("reservation.repository: reservation status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")

	// ErrInvalidStatus возвращается при попытке установить недопустимый статус
	ErrInvalidStatus = errors.New("reservation.repository: invalid reservation status")
)
