package storageservice

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("storageservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от хранилища
	ErrInvalidResponse = errors.New("storageservice client: invalid response")

	// ErrUnauthorized возвращается, если хранилище отклонило ключ сервиса
	ErrUnauthorized = errors.New("storageservice client: unauthorized")

	// ErrNotConfigured возвращается, если URL хранилища не задан
	ErrNotConfigured = errors.New("storageservice client: not configured")
)
