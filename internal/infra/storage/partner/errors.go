package partner

import "errors"

var (
	// ErrFederationNotFound возвращается, когда федерация не найдена
	ErrFederationNotFound = errors.New("partner.repository: federation not found")

	// ErrInstitutionNotFound возвращается, когда учреждение не найдено
	ErrInstitutionNotFound = errors.New("partner.repository: institution not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("partner.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("partner.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("partner.repository: failed to scan row")
)
