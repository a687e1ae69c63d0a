package storageservice

// ErrorResponse модель ошибки хранилища
type ErrorResponse struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}
