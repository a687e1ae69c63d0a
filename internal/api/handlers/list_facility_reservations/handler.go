package list_facility_reservations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	getFacilityAgenda "github.com/idjuv/agenda-service/internal/usecase/get_facility_agenda"
)

const (
	msgInvalidFacilityID  = "ID de espaço inválido"
	msgInvalidQuery       = "parâmetros de consulta inválidos (from e to no formato AAAA-MM-DD, status conhecido)"
	msgInvalidIncludeFlag = "parâmetro includeInactive inválido"
	msgRangeTooLong       = "o período consultado é muito longo"
	msgFacilityNotFound   = "espaço não encontrado"
)

type Handler struct {
	useCase GetFacilityAgendaUseCase
	logger  Logger
}

func NewHandler(useCase GetFacilityAgendaUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}/reservations?from=YYYY-MM-DD&to=YYYY-MM-DD&status=&includeInactive=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(mux.Vars(r)["facilityId"], 10, 64)
	if err != nil || facilityID <= 0 {
		h.logger.Warn("GET /facilities/{id}/reservations - Invalid facility ID: %s", mux.Vars(r)["facilityId"])
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	query := r.URL.Query()
	req := &getFacilityAgenda.Request{
		FacilityID: facilityID,
		From:       query.Get("from"),
		To:         query.Get("to"),
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if raw := query.Get("includeInactive"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidIncludeFlag)
			return
		}
		req.IncludeInactive = include
	}

	resp, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getFacilityAgenda.ErrInvalidInput):
			h.logger.Warn("GET /facilities/{id}/reservations - Invalid query: %v", err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		case errors.Is(err, getFacilityAgenda.ErrRangeTooLong):
			handlers.RespondBadRequest(w, msgRangeTooLong)

		case errors.Is(err, getFacilityAgenda.ErrFacilityNotFound):
			h.logger.Warn("GET /facilities/{id}/reservations - Facility not found: facility_id=%d", facilityID)
			handlers.RespondNotFound(w, msgFacilityNotFound)

		default:
			h.logger.Error("GET /facilities/{id}/reservations - Failed to get agenda: facility_id=%d, error=%v",
				facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /facilities/{id}/reservations - Returned %d reservation(s): facility_id=%d",
		len(resp.Reservations), facilityID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
