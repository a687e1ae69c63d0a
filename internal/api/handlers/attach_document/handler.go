package attach_document

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/api/middleware"
	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/service/reservations"
	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

const (
	formField = "file"

	// Запас под заголовки multipart сверх размера файла
	multipartOverhead = 1 << 20
)

const (
	msgInvalidReservationID = "ID de agendamento inválido"
	msgUnauthorized         = "usuário não autenticado"
	msgMissingFile          = "envie o arquivo no campo 'file'"
	msgInvalidDocument      = "arquivo inválido: envie PDF, JPEG ou PNG de até 10 MB"
	msgNotFound             = "agendamento não encontrado"
	msgForbidden            = "apenas o solicitante ou o chefe do espaço pode anexar documentos"
	msgInvalidTransition    = "não é possível anexar documentos a um agendamento encerrado"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/document (multipart/form-data, поле file)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(mux.Vars(r)["reservationId"])
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/document - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxDocumentSizeBytes+multipartOverhead)

	file, header, err := r.FormFile(formField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondBadRequest(w, msgInvalidDocument)
			return
		}
		h.logger.Warn("POST /reservations/{id}/document - Missing file: %v", err)
		handlers.RespondBadRequest(w, msgMissingFile)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, domain.MaxDocumentSizeBytes+1))
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/document - Failed to read file: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDocument)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(body)
	}

	reservation, err := h.service.AttachDocument(r.Context(), reservationID, &models.DocumentRequest{
		UserID:      userID,
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        body,
	})
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidDocument):
			h.logger.Warn("POST /reservations/{id}/document - Invalid document: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDocument)

		case errors.Is(err, reservations.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("POST /reservations/{id}/document - Access denied: reservation_id=%s, user_id=%s",
				reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidTransition):
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		default:
			h.logger.Error("POST /reservations/{id}/document - Failed to attach document: reservation_id=%s, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/document - Document attached: reservation_id=%s, user_id=%s",
		reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
