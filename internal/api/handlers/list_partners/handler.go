package list_partners

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	"github.com/idjuv/agenda-service/internal/service/partners"
)

const msgUnknownKind = "tipo de parceiro desconhecido: use federations ou institutions"

// PartnerListResponse HTTP response model
type PartnerListResponse struct {
	Partners []partners.Partner `json:"partners"`
}

type Handler struct {
	service PartnerService
	logger  Logger
}

func NewHandler(service PartnerService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/partners/{kind}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	list, err := h.service.List(r.Context(), kind)
	if err != nil {
		if errors.Is(err, partners.ErrUnknownKind) {
			h.logger.Warn("GET /partners/{kind} - Unknown kind: %q", kind)
			handlers.RespondNotFound(w, msgUnknownKind)
			return
		}
		h.logger.Error("GET /partners/{kind} - Failed to list partners: kind=%s, error=%v", kind, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, PartnerListResponse{Partners: list})
}
