package reservations

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/queue"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
	reservationRepo "github.com/idjuv/agenda-service/internal/infra/storage/reservation"
	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

// fakeReservations хранит заявки в памяти и применяет условный UPDATE как БД
type fakeReservations struct {
	items map[uuid.UUID]*domain.Reservation

	// beforeUpdate имитирует конкурентное изменение между чтением и UPDATE
	beforeUpdate func(r *domain.Reservation)
	updateErr    error
	documentErr  error
}

func (f *fakeReservations) GetByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id uuid.UUID, change domain.StatusChange) (*domain.Reservation, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	r, ok := f.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	if f.beforeUpdate != nil {
		f.beforeUpdate(r)
	}
	if r.Status != change.From {
		return nil, reservationRepo.ErrStatusChanged
	}
	r.Status = change.To
	r.UpdatedBy = &change.ActorID
	at := change.At
	switch change.To {
	case domain.StatusApproved:
		r.ApprovedBy, r.DecidedAt, r.ReferenceNumber = &change.ActorID, &at, change.ReferenceNumber
	case domain.StatusRejected:
		r.ApprovedBy, r.DecidedAt, r.RejectionReason = &change.ActorID, &at, change.RejectionReason
	case domain.StatusCancelled:
		r.CancelledAt = &at
	case domain.StatusCompleted:
		r.CompletedAt = &at
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservations) CompleteElapsed(_ context.Context, before time.Time) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	for _, r := range f.items {
		if r.Status == domain.StatusApproved && !r.EndAt.After(before) {
			r.Status = domain.StatusCompleted
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReservations) SetDocument(_ context.Context, id uuid.UUID, url string, _ uuid.UUID) error {
	if f.documentErr != nil {
		return f.documentErr
	}
	r, ok := f.items[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	r.DocumentURL = &url
	return nil
}

type fakeFacilities map[int64]*domain.Facility

func (f fakeFacilities) GetByID(_ context.Context, id int64) (*domain.Facility, error) {
	if fac, ok := f[id]; ok {
		return fac, nil
	}
	return nil, facilityRepo.ErrFacilityNotFound
}

type fakeStorage struct {
	paths []string
	err   error
}

func (f *fakeStorage) Upload(_ context.Context, path, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, path)
	return "https://storage.local/documents/" + path, nil
}

type fakeCache struct{ scopes []string }

func (f *fakeCache) InvalidateScope(_ context.Context, _ string, scope string) error {
	f.scopes = append(f.scopes, scope)
	return nil
}

type fakePublisher struct{ events []queue.ReservationEvent }

func (f *fakePublisher) PublishReservation(_ context.Context, e queue.ReservationEvent) error {
	f.events = append(f.events, e)
	return nil
}

type fakeMetrics struct{ transitions []string }

func (f *fakeMetrics) ObserveTransition(status string) {
	f.transitions = append(f.transitions, status)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// recordingLogger сохраняет отформатированные ошибки
type recordingLogger struct {
	nopLogger
	errors []string
}

func (l *recordingLogger) Error(format string, v ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}

var (
	now     = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chief   = uuid.New()
	creator = uuid.New()
	other   = uuid.New()
)

const validReference = "12345.123456/2025-01"

type env struct {
	svc       *Service
	repo      *fakeReservations
	storage   *fakeStorage
	cache     *fakeCache
	publisher *fakePublisher
	metrics   *fakeMetrics
}

func newEnv() *env {
	e := &env{
		repo:      &fakeReservations{items: map[uuid.UUID]*domain.Reservation{}},
		storage:   &fakeStorage{},
		cache:     &fakeCache{},
		publisher: &fakePublisher{},
		metrics:   &fakeMetrics{},
	}
	facilities := fakeFacilities{
		1: {ID: 1, Name: "Ginásio Rildo Saraiva", Active: true, ChiefUserID: &chief},
	}
	e.svc = NewService(e.repo, facilities, e.storage, e.cache, e.publisher, e.metrics, nopLogger{})
	e.svc.timeProvider = fixedTime{now: now}
	return e
}

func (e *env) add(status domain.Status, start, end time.Time) *domain.Reservation {
	r := &domain.Reservation{
		ID:         uuid.New(),
		FacilityID: 1,
		Title:      "Treino de vôlei",
		StartAt:    start,
		EndAt:      end,
		Status:     status,
		CreatedBy:  creator,
	}
	e.repo.items[r.ID] = r
	return r
}

func (e *env) future(status domain.Status) *domain.Reservation {
	return e.add(status, now.Add(24*time.Hour), now.Add(26*time.Hour))
}

func TestApprove(t *testing.T) {
	e := newEnv()
	r := e.future(domain.StatusRequested)

	resp, err := e.svc.Approve(context.Background(), r.ID, &models.ApproveRequest{
		UserID:          chief,
		ReferenceNumber: "  " + validReference + " ",
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), resp.Status)
	assert.Equal(t, validReference, *resp.ReferenceNumber)
	assert.Equal(t, chief, *resp.ApprovedBy)
	assert.Equal(t, now, *resp.DecidedAt)

	assert.Equal(t, []string{"approved"}, e.metrics.transitions)
	assert.Equal(t, []string{"facility:1"}, e.cache.scopes)
	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, domain.StatusRequested, *e.publisher.events[0].PreviousStatus)
}

func TestApprove_InvalidReferenceLeavesStatus(t *testing.T) {
	for _, ref := range []string{"", "   ", "abc", "12345.123456/2025"} {
		t.Run(ref, func(t *testing.T) {
			e := newEnv()
			r := e.future(domain.StatusRequested)

			_, err := e.svc.Approve(context.Background(), r.ID, &models.ApproveRequest{UserID: chief, ReferenceNumber: ref})

			assert.ErrorIs(t, err, ErrInvalidReference)
			assert.Equal(t, domain.StatusRequested, e.repo.items[r.ID].Status)
			assert.Empty(t, e.publisher.events)
		})
	}
}

func TestApprove_OnlyChief(t *testing.T) {
	e := newEnv()
	r := e.future(domain.StatusRequested)

	_, err := e.svc.Approve(context.Background(), r.ID, &models.ApproveRequest{UserID: creator, ReferenceNumber: validReference})

	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, domain.StatusRequested, e.repo.items[r.ID].Status)
}

func TestReject(t *testing.T) {
	e := newEnv()
	r := e.future(domain.StatusRequested)
	reason := "  Quadra em manutenção nessa data. "

	resp, err := e.svc.Reject(context.Background(), r.ID, &models.RejectRequest{UserID: chief, Reason: reason})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), resp.Status)
	assert.Equal(t, reason, *resp.RejectionReason, "reason stored verbatim")
}

func TestReject_ReasonRequired(t *testing.T) {
	e := newEnv()
	r := e.future(domain.StatusRequested)

	_, err := e.svc.Reject(context.Background(), r.ID, &models.RejectRequest{UserID: chief, Reason: " \n\t"})

	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Equal(t, domain.StatusRequested, e.repo.items[r.ID].Status)
}

func TestTransitions_FromWrongStatus(t *testing.T) {
	tests := []struct {
		name   string
		status domain.Status
		act    func(s *Service, id uuid.UUID) error
	}{
		{"approve approved", domain.StatusApproved, func(s *Service, id uuid.UUID) error {
			_, err := s.Approve(context.Background(), id, &models.ApproveRequest{UserID: chief, ReferenceNumber: validReference})
			return err
		}},
		{"reject approved", domain.StatusApproved, func(s *Service, id uuid.UUID) error {
			_, err := s.Reject(context.Background(), id, &models.RejectRequest{UserID: chief, Reason: "x"})
			return err
		}},
		{"cancel rejected", domain.StatusRejected, func(s *Service, id uuid.UUID) error {
			_, err := s.Cancel(context.Background(), id, &models.ActionRequest{UserID: creator})
			return err
		}},
		{"cancel completed", domain.StatusCompleted, func(s *Service, id uuid.UUID) error {
			_, err := s.Cancel(context.Background(), id, &models.ActionRequest{UserID: chief})
			return err
		}},
		{"complete requested", domain.StatusRequested, func(s *Service, id uuid.UUID) error {
			_, err := s.Complete(context.Background(), id, &models.ActionRequest{UserID: chief})
			return err
		}},
		{"approve cancelled", domain.StatusCancelled, func(s *Service, id uuid.UUID) error {
			_, err := s.Approve(context.Background(), id, &models.ApproveRequest{UserID: chief, ReferenceNumber: validReference})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			r := e.future(tt.status)

			err := tt.act(e.svc, r.ID)

			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.status, e.repo.items[r.ID].Status)
			assert.Empty(t, e.metrics.transitions)
		})
	}
}

func TestCancel_CreatorOrChief(t *testing.T) {
	for _, actor := range []uuid.UUID{creator, chief} {
		e := newEnv()
		r := e.future(domain.StatusApproved)

		resp, err := e.svc.Cancel(context.Background(), r.ID, &models.ActionRequest{UserID: actor})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		assert.NotNil(t, resp.CancelledAt)
	}

	e := newEnv()
	r := e.future(domain.StatusRequested)
	_, err := e.svc.Cancel(context.Background(), r.ID, &models.ActionRequest{UserID: other})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestComplete(t *testing.T) {
	e := newEnv()
	ended := e.add(domain.StatusApproved, now.Add(-3*time.Hour), now.Add(-time.Hour))
	running := e.add(domain.StatusApproved, now.Add(-time.Hour), now.Add(time.Hour))

	resp, err := e.svc.Complete(context.Background(), ended.ID, &models.ActionRequest{UserID: chief})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)

	_, err = e.svc.Complete(context.Background(), running.ID, &models.ActionRequest{UserID: chief})
	assert.ErrorIs(t, err, ErrNotFinished)
	assert.Equal(t, domain.StatusApproved, e.repo.items[running.ID].Status)
}

func TestCompleteElapsed(t *testing.T) {
	e := newEnv()
	e.add(domain.StatusApproved, now.Add(-3*time.Hour), now.Add(-time.Hour))
	e.add(domain.StatusApproved, now.Add(-5*time.Hour), now.Add(-4*time.Hour))
	e.add(domain.StatusRequested, now.Add(-3*time.Hour), now.Add(-time.Hour))
	e.future(domain.StatusApproved)

	n, err := e.svc.CompleteElapsed(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"facility:1"}, e.cache.scopes, "one invalidation per facility")
	assert.Len(t, e.publisher.events, 2)
}

func TestTransition_ConcurrentChange(t *testing.T) {
	e := newEnv()
	r := e.future(domain.StatusRequested)
	// Автор отменяет заявку между чтением и UPDATE руководителя
	e.repo.beforeUpdate = func(stored *domain.Reservation) {
		stored.Status = domain.StatusCancelled
	}

	_, err := e.svc.Approve(context.Background(), r.ID, &models.ApproveRequest{UserID: chief, ReferenceNumber: validReference})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusCancelled, e.repo.items[r.ID].Status)
	assert.Nil(t, e.repo.items[r.ID].ReferenceNumber)
}

func TestTransition_BackendFailure(t *testing.T) {
	e := newEnv()
	r := e.future(domain.StatusRequested)
	e.repo.updateErr = errors.New("connection reset")

	_, err := e.svc.Cancel(context.Background(), r.ID, &models.ActionRequest{UserID: creator})

	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, domain.StatusRequested, e.repo.items[r.ID].Status)
	assert.Empty(t, e.cache.scopes)
}

func TestGetByID_NotFound(t *testing.T) {
	e := newEnv()

	_, err := e.svc.GetByID(context.Background(), uuid.New(), creator)

	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestAttachDocument(t *testing.T) {
	e := newEnv()
	r := e.future(domain.StatusRequested)

	resp, err := e.svc.AttachDocument(context.Background(), r.ID, &models.DocumentRequest{
		UserID:      creator,
		Filename:    `C:\docs\ofício 12.pdf`,
		ContentType: "application/pdf",
		Body:        []byte("%PDF-1.4"),
	})

	require.NoError(t, err)
	require.Len(t, e.storage.paths, 1)
	assert.Contains(t, e.storage.paths[0], r.ID.String()+"/")
	assert.Contains(t, e.storage.paths[0], "of_cio_12.pdf")
	assert.Equal(t, "https://storage.local/documents/"+e.storage.paths[0], *resp.DocumentURL)
	assert.Equal(t, *resp.DocumentURL, *e.repo.items[r.ID].DocumentURL)
}

func TestAttachDocument_RepositoryFailureLogsOrphan(t *testing.T) {
	e := newEnv()
	r := e.future(domain.StatusRequested)
	e.repo.documentErr = errors.New("connection reset")
	log := &recordingLogger{}
	e.svc.logger = log

	_, err := e.svc.AttachDocument(context.Background(), r.ID, &models.DocumentRequest{
		UserID:      creator,
		Filename:    "oficio.pdf",
		ContentType: "application/pdf",
		Body:        []byte("%PDF-1.4"),
	})

	assert.ErrorIs(t, err, ErrInternal)
	require.Len(t, e.storage.paths, 1)
	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], e.storage.paths[0])
	assert.Nil(t, e.repo.items[r.ID].DocumentURL)
	assert.Empty(t, e.cache.scopes)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"oficio.pdf", "oficio.pdf"},
		{"oficio#2?.pdf", "oficio_2_.pdf"},
		{"50% off&more=1.png", "50__off_more_1.png"},
		{`C:\docs\ofício 12.pdf`, "of_cio_12.pdf"},
		{"../../etc/passwd", "passwd"},
		{"", "documento"},
		{"/", "documento"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}

func TestAttachDocument_Rules(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.Status
		req     models.DocumentRequest
		wantErr error
	}{
		{"empty body", domain.StatusRequested, models.DocumentRequest{UserID: creator, ContentType: "application/pdf"}, ErrInvalidDocument},
		{"bad type", domain.StatusRequested, models.DocumentRequest{UserID: creator, ContentType: "text/html", Body: []byte("x")}, ErrInvalidDocument},
		{"stranger", domain.StatusRequested, models.DocumentRequest{UserID: other, ContentType: "image/png", Body: []byte("x")}, ErrAccessDenied},
		{"terminal", domain.StatusRejected, models.DocumentRequest{UserID: creator, ContentType: "image/png", Body: []byte("x")}, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			r := e.future(tt.status)
			req := tt.req

			_, err := e.svc.AttachDocument(context.Background(), r.ID, &req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, e.storage.paths)
		})
	}
}
