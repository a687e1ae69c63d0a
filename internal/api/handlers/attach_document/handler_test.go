package attach_document

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
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
	got *models.DocumentRequest
	err error
}

func (f *fakeService) AttachDocument(_ context.Context, id uuid.UUID, req *models.DocumentRequest) (*models.ReservationResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	url := "https://storage/doc.pdf"
	return &models.ReservationResponse{ID: id, DocumentURL: &url}, nil
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return buf, mw.FormDataContentType()
}

func serve(svc *fakeService, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/reservations/{reservationId}/document", NewHandler(svc, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodPost, "/reservations/"+uuid.NewString()+"/document", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(middleware.WithUser(req.Context(), uuid.New(), ""))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_AttachDocument(t *testing.T) {
	svc := &fakeService{}
	body, ct := multipartBody(t, "file", "oficio.pdf", "application/pdf", []byte("%PDF-1.4 test"))

	rr := serve(svc, body, ct)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, "oficio.pdf", svc.got.Filename)
	assert.Equal(t, "application/pdf", svc.got.ContentType)
	assert.Equal(t, []byte("%PDF-1.4 test"), svc.got.Body)
}

func TestHandler_AttachDocument_SniffsOctetStream(t *testing.T) {
	svc := &fakeService{}
	body, ct := multipartBody(t, "file", "oficio.pdf", "application/octet-stream", []byte("%PDF-1.4 test"))

	rr := serve(svc, body, ct)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", svc.got.ContentType)
}

func TestHandler_AttachDocument_Errors(t *testing.T) {
	body, ct := multipartBody(t, "other", "a.pdf", "application/pdf", []byte("x"))
	rr := serve(&fakeService{}, body, ct)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "missing file field")

	body, ct = multipartBody(t, "file", "a.exe", "application/x-msdownload", []byte("MZ"))
	rr = serve(&fakeService{err: reservations.ErrInvalidDocument}, body, ct)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body, ct = multipartBody(t, "file", "a.pdf", "application/pdf", []byte("x"))
	rr = serve(&fakeService{err: reservations.ErrInvalidTransition}, body, ct)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
