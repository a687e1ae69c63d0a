package approve_reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idjuv/agenda-service/internal/api/middleware"
	"github.com/idjuv/agenda-service/internal/service/reservations"
	"github.com/idjuv/agenda-service/internal/service/reservations/models"
	"github.com/idjuv/agenda-service/pkg/logger"
)

type fakeService struct {
	gotID  uuid.UUID
	gotReq *models.ApproveRequest
	err    error
}

func (f *fakeService) Approve(_ context.Context, id uuid.UUID, req *models.ApproveRequest) (*models.ReservationResponse, error) {
	f.gotID = id
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReservationResponse{ID: id, Status: "approved", ReferenceNumber: &req.ReferenceNumber}, nil
}

func serve(t *testing.T, svc *fakeService, reservationID, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc("/reservations/{reservationId}/approve", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, "/reservations/"+reservationID+"/approve", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), uuid.New(), ""))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Approve(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{}

	rr := serve(t, svc, id.String(), `{"referenceNumber":"12345.123456/2025-01"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, id, svc.gotID)
	assert.Equal(t, "12345.123456/2025-01", svc.gotReq.ReferenceNumber)
	assert.NotEqual(t, uuid.Nil, svc.gotReq.UserID)
	assert.Contains(t, rr.Body.String(), `"status":"approved"`)
}

func TestHandler_ApproveErrors(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{"invalid id", "42", nil, http.StatusBadRequest},
		{"not found", uuid.NewString(), reservations.ErrReservationNotFound, http.StatusNotFound},
		{"not chief", uuid.NewString(), reservations.ErrAccessDenied, http.StatusForbidden},
		{"bad reference", uuid.NewString(), reservations.ErrInvalidReference, http.StatusBadRequest},
		{"already decided", uuid.NewString(), reservations.ErrInvalidTransition, http.StatusConflict},
		{"internal", uuid.NewString(), reservations.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, &fakeService{err: tt.err}, tt.id, `{"referenceNumber":"x"}`)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
