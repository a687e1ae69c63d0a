package create_reservation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/api/middleware"
	createReservation "github.com/idjuv/agenda-service/internal/usecase/create_reservation"
)

const (
	msgInvalidFacilityID   = "ID de espaço inválido"
	msgInvalidRequestBody  = "corpo da requisição inválido"
	msgUnauthorized        = "usuário não autenticado"
	msgFacilityNotFound    = "espaço não encontrado"
	msgFacilityInactive    = "o espaço não está disponível para agendamento"
	msgFederationNotFound  = "federação não encontrada"
	msgInstitutionNotFound = "instituição não encontrada"
	msgConflict            = "já existe um agendamento neste período"
	msgConflictConcurrent  = "o período foi reservado por outra solicitação, tente novamente"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/facilities/{facilityId}/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(mux.Vars(r)["facilityId"], 10, 64)
	if err != nil || facilityID <= 0 {
		h.logger.Warn("POST /facilities/{id}/reservations - Invalid facility ID: %s", mux.Vars(r)["facilityId"])
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /facilities/{id}/reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(facilityID, userID))
	if err != nil {
		var validationErr *createReservation.ValidationError
		var conflictErr *createReservation.ConflictError

		switch {
		case errors.As(err, &validationErr):
			h.logger.Warn("POST /facilities/{id}/reservations - Validation failed: facility_id=%d, errors=%v",
				facilityID, validationErr.Messages)
			handlers.RespondValidationErrors(w, validationErr.Messages)

		case errors.As(err, &conflictErr):
			h.logger.Warn("POST /facilities/{id}/reservations - Conflict: facility_id=%d, conflicting=%q",
				facilityID, conflictErr.Title())
			if conflictErr.Title() == "" {
				handlers.RespondConflict(w, msgConflictConcurrent, "")
			} else {
				handlers.RespondConflict(w, msgConflict, conflictErr.Title())
			}

		case errors.Is(err, createReservation.ErrFacilityNotFound):
			h.logger.Warn("POST /facilities/{id}/reservations - Facility not found: facility_id=%d", facilityID)
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, createReservation.ErrFacilityInactive):
			h.logger.Warn("POST /facilities/{id}/reservations - Facility inactive: facility_id=%d", facilityID)
			handlers.RespondBadRequest(w, msgFacilityInactive)

		case errors.Is(err, createReservation.ErrFederationNotFound):
			handlers.RespondBadRequest(w, msgFederationNotFound)

		case errors.Is(err, createReservation.ErrInstitutionNotFound):
			handlers.RespondBadRequest(w, msgInstitutionNotFound)

		default:
			h.logger.Error("POST /facilities/{id}/reservations - Failed to create reservation: facility_id=%d, error=%v",
				facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /facilities/{id}/reservations - Created %d reservation(s): facility_id=%d, user_id=%s",
		len(resp.Reservations), facilityID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(resp))
}
