// Package handlers содержит общие функции HTTP ответов.
// Обработчики эндпоинтов лежат в подпакетах.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const (
	maxBodyBytes = 1 << 20

	msgInternalError = "erro interno do servidor"
	msgValidation    = "dados inválidos"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code        int      `json:"code"`
	Message     string   `json:"message"`
	Errors      []string `json:"errors,omitempty"`
	Conflicting string   `json:"conflicting,omitempty"`
}

// DecodeJSON декодирует тело запроса. Пустое тело не считается ошибкой.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError отправляет ошибку с кодом и сообщением
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondValidationErrors 400 со списком сообщений в порядке проверки
func RespondValidationErrors(w http.ResponseWriter, messages []string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: msgValidation,
		Errors:  messages,
	})
}

// RespondUnauthorized 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondForbidden 403
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondConflict 409. conflicting название пересекающейся заявки, если известно.
func RespondConflict(w http.ResponseWriter, message, conflicting string) {
	RespondJSON(w, http.StatusConflict, ErrorResponse{
		Code:        http.StatusConflict,
		Message:     message,
		Conflicting: conflicting,
	})
}

// RespondInternalError 500 без деталей
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}
