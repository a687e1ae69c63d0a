package create_reservation

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/queue"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
	partnerRepo "github.com/idjuv/agenda-service/internal/infra/storage/partner"
	reservationRepo "github.com/idjuv/agenda-service/internal/infra/storage/reservation"
	"github.com/idjuv/agenda-service/pkg/ptr"
)

// --- fakes ---

type fakeReservations struct {
	items     []*domain.Reservation
	createErr error
	lastQuery domain.AgendaFilter
}

func (f *fakeReservations) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	res.ID = uuid.New()
	f.items = append(f.items, res)
	return res, nil
}

func (f *fakeReservations) GetByFacilityWithFilter(_ context.Context, filter domain.AgendaFilter) ([]*domain.Reservation, error) {
	f.lastQuery = filter
	var out []*domain.Reservation
	for _, r := range f.items {
		if r.FacilityID != filter.FacilityID {
			continue
		}
		if !filter.IncludeInactive && !r.IsBlocking() {
			continue
		}
		if filter.To != nil && r.StartAt.After(*filter.To) {
			continue
		}
		if filter.From != nil && r.EndAt.Before(*filter.From) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

type fakeFacilities map[int64]*domain.Facility

func (f fakeFacilities) GetByID(_ context.Context, id int64) (*domain.Facility, error) {
	if fac, ok := f[id]; ok {
		return fac, nil
	}
	return nil, facilityRepo.ErrFacilityNotFound
}

type fakePartners struct {
	federations  map[uuid.UUID]*domain.Federation
	institutions map[uuid.UUID]*domain.Institution
}

func (f fakePartners) GetFederation(_ context.Context, id uuid.UUID) (*domain.Federation, error) {
	if v, ok := f.federations[id]; ok {
		return v, nil
	}
	return nil, partnerRepo.ErrFederationNotFound
}

func (f fakePartners) GetInstitution(_ context.Context, id uuid.UUID) (*domain.Institution, error) {
	if v, ok := f.institutions[id]; ok {
		return v, nil
	}
	return nil, partnerRepo.ErrInstitutionNotFound
}

type fakeTx struct{ calls int }

func (f *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeCache struct{ scopes []string }

func (f *fakeCache) InvalidateScope(_ context.Context, _ string, scope string) error {
	f.scopes = append(f.scopes, scope)
	return nil
}

type fakePublisher struct{ events []queue.ReservationEvent }

func (f *fakePublisher) PublishReservation(_ context.Context, e queue.ReservationEvent) error {
	f.events = append(f.events, e)
	return errors.New("broker down")
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- helpers ---

var now = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	uc        *UseCase
	repo      *fakeReservations
	tx        *fakeTx
	cache     *fakeCache
	publisher *fakePublisher
}

func newEnv(t *testing.T, partners fakePartners) *env {
	t.Helper()
	e := &env{
		repo:      &fakeReservations{},
		tx:        &fakeTx{},
		cache:     &fakeCache{},
		publisher: &fakePublisher{},
	}
	facilities := fakeFacilities{
		1: {ID: 1, Name: "Ginásio Rildo Saraiva", Active: true},
		2: {ID: 2, Name: "Estádio Nilton Santos", Active: true},
		3: {ID: 3, Name: "Quadra desativada", Active: false},
	}
	e.uc = NewUseCase(e.repo, facilities, partners, e.tx, e.cache, e.publisher,
		Settings{Location: time.UTC, MaxOccurrences: 52}, nopLogger{})
	e.uc.timeProvider = fixedTime{now: now}
	return e
}

func validRequest() *Request {
	return &Request{
		FacilityID:    1,
		ActorID:       uuid.New(),
		Title:         "Treino de futsal sub-17",
		UsageType:     string(domain.UsageTraining),
		Modalities:    []string{"futsal"},
		StartDate:     "2025-05-10",
		StartTime:     "08:00",
		EndDate:       "2025-05-10",
		EndTime:       "10:00",
		RequesterName: "João da Silva",
	}
}

func seed(e *env, facilityID int64, title string, start, end time.Time, status domain.Status) *domain.Reservation {
	r := &domain.Reservation{
		ID:         uuid.New(),
		FacilityID: facilityID,
		Title:      title,
		StartAt:    start,
		EndAt:      end,
		Status:     status,
	}
	e.repo.items = append(e.repo.items, r)
	return r
}

func day(hour, minute int) time.Time {
	return time.Date(2025, 5, 10, hour, minute, 0, 0, time.UTC)
}

// --- tests ---

func TestExecute_CreatesRequestedReservation(t *testing.T) {
	e := newEnv(t, fakePartners{})
	req := validRequest()

	resp, err := e.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)
	res := resp.Reservations[0]
	assert.Equal(t, domain.StatusRequested, res.Status)
	assert.Equal(t, day(8, 0), res.StartAt)
	assert.Equal(t, day(10, 0), res.EndAt)
	assert.Equal(t, req.ActorID, res.CreatedBy)
	assert.Equal(t, "João da Silva", res.RequesterName)
	assert.Nil(t, resp.SeriesID)

	assert.True(t, e.repo.lastQuery.ForUpdate)
	assert.Equal(t, []string{"facility:1"}, e.cache.scopes)
	require.Len(t, e.publisher.events, 1, "publish failure must not fail the request")
	assert.Equal(t, "reservation.requested", e.publisher.events[0].RoutingKey())
}

func TestExecute_Conflicts(t *testing.T) {
	tests := []struct {
		name       string
		facilityID int64
		start, end time.Time
		status     domain.Status
		wantErr    bool
	}{
		{"partial overlap", 1, day(9, 0), day(11, 0), domain.StatusApproved, true},
		{"existing ends at candidate start", 1, day(6, 0), day(8, 0), domain.StatusRequested, true},
		{"existing starts at candidate end", 1, day(10, 0), day(12, 0), domain.StatusApproved, true},
		{"completed still blocks", 1, day(7, 0), day(9, 0), domain.StatusCompleted, true},
		{"one minute apart", 1, day(10, 1), day(12, 0), domain.StatusApproved, false},
		{"cancelled does not block", 1, day(8, 0), day(10, 0), domain.StatusCancelled, false},
		{"rejected does not block", 1, day(8, 0), day(10, 0), domain.StatusRejected, false},
		{"other facility", 2, day(8, 0), day(10, 0), domain.StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, fakePartners{})
			seed(e, tt.facilityID, "Campeonato Estadual", tt.start, tt.end, tt.status)

			resp, err := e.uc.Execute(context.Background(), validRequest())

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Len(t, resp.Reservations, 1)
				return
			}

			require.ErrorIs(t, err, ErrConflict)
			var conflict *ConflictError
			require.True(t, errors.As(err, &conflict))
			assert.Equal(t, "Campeonato Estadual", conflict.Title())
			assert.Len(t, e.repo.items, 1, "nothing inserted")
			assert.Empty(t, e.cache.scopes)
		})
	}
}

func TestExecute_ConflictNamesFirstReservation(t *testing.T) {
	e := newEnv(t, fakePartners{})
	seed(e, 1, "Segundo", day(9, 30), day(11, 0), domain.StatusApproved)
	seed(e, 1, "Primeiro", day(7, 0), day(8, 30), domain.StatusRequested)

	_, err := e.uc.Execute(context.Background(), validRequest())

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Primeiro", conflict.Title())
}

func TestExecute_DatabaseOverlapIsConflict(t *testing.T) {
	e := newEnv(t, fakePartners{})
	e.repo.createErr = reservationRepo.ErrOverlap

	_, err := e.uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrConflict)
}

func TestExecute_ValidationMessagesInOrder(t *testing.T) {
	e := newEnv(t, fakePartners{})
	req := &Request{
		FacilityID: 1,
		ActorID:    uuid.New(),
		Title:      "   ",
		UsageType:  string(domain.UsageCompetition),
		StartDate:  "2025-05-10",
		StartTime:  "10:00",
		EndDate:    "2025-05-10",
		EndTime:    "09:00",
	}

	_, err := e.uc.Execute(context.Background(), req)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []string{
		msgTitleRequired,
		msgRequesterNameRequired,
		msgEndBeforeStart,
		msgModalityRequired,
	}, verr.Messages)
	assert.Zero(t, e.tx.calls, "no store call on validation failure")
}

func TestExecute_ValidationRules(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
		want   string
	}{
		{"missing start", func(r *Request) { r.StartTime = "" }, msgStartRequired},
		{"missing end", func(r *Request) { r.EndDate = "" }, msgEndRequired},
		{"bad start", func(r *Request) { r.StartTime = "25:00" }, msgStartInvalid},
		{"start in past", func(r *Request) { r.StartDate = "2025-04-30"; r.EndDate = "2025-04-30" }, msgStartInPast},
		{"equal bounds", func(r *Request) { r.EndTime = "08:00" }, msgEndBeforeStart},
		{"unknown usage", func(r *Request) { r.UsageType = "festa" }, msgUsageTypeInvalid},
		{"missing usage", func(r *Request) { r.UsageType = "" }, msgUsageTypeRequired},
		{"unknown modality", func(r *Request) { r.Modalities = []string{"quadribol"} }, "Modalidade inválida: quadribol."},
		{"bad email", func(r *Request) { r.RequesterEmail = ptr.Ptr("not-an-email") }, msgEmailInvalid},
		{"negative audience", func(r *Request) { r.EstimatedAudience = ptr.Ptr(-1) }, msgAudienceNegative},
		{"federation without id", func(r *Request) { r.RequesterSource = "federation" }, msgFederationRequired},
		{"both partner ids", func(r *Request) {
			r.FederationID = ptr.Ptr(uuid.New())
			r.InstitutionID = ptr.Ptr(uuid.New())
		}, msgPartnerExclusive},
		{"unknown source", func(r *Request) { r.RequesterSource = "outro" }, msgRequesterSourceBad},
		{"no facility", func(r *Request) { r.FacilityID = 0 }, msgFacilityRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, fakePartners{})
			req := validRequest()
			tt.modify(req)

			_, err := e.uc.Execute(context.Background(), req)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Messages, tt.want)
		})
	}
}

func TestExecute_NonSportiveWithoutModality(t *testing.T) {
	e := newEnv(t, fakePartners{})
	req := validRequest()
	req.UsageType = string(domain.UsageMeeting)
	req.Modalities = nil

	_, err := e.uc.Execute(context.Background(), req)

	assert.NoError(t, err)
}

func TestExecute_StartEqualToNowIsAccepted(t *testing.T) {
	e := newEnv(t, fakePartners{})
	req := validRequest()
	req.StartDate, req.StartTime = "2025-05-01", "09:00"
	req.EndDate, req.EndTime = "2025-05-01", "10:00"

	_, err := e.uc.Execute(context.Background(), req)

	assert.NoError(t, err)
}

func TestExecute_Facility(t *testing.T) {
	e := newEnv(t, fakePartners{})

	req := validRequest()
	req.FacilityID = 99
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrFacilityNotFound)

	req = validRequest()
	req.FacilityID = 3
	_, err = e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrFacilityInactive)
}

func TestExecute_FederationRequesterIsCopied(t *testing.T) {
	fedID := uuid.New()
	partners := fakePartners{federations: map[uuid.UUID]*domain.Federation{
		fedID: {
			ID:      fedID,
			Name:    "Federação Tocantinense de Futsal",
			Acronym: ptr.Ptr("FTF"),
			CNPJ:    ptr.Ptr("00.111.222/0001-33"),
			Phone:   ptr.Ptr("(63) 3218-0000"),
			Email:   ptr.Ptr("contato@ftf.org.br"),
			Active:  true,
		},
	}}
	e := newEnv(t, partners)

	req := validRequest()
	req.RequesterSource = "federation"
	req.FederationID = &fedID
	req.RequesterName = "ignored"
	req.RequesterEmail = ptr.Ptr("ignored")

	resp, err := e.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	res := resp.Reservations[0]
	assert.Equal(t, "FTF - Federação Tocantinense de Futsal", res.RequesterName)
	assert.Equal(t, "00.111.222/0001-33", *res.RequesterDocument)
	assert.Equal(t, "contato@ftf.org.br", *res.RequesterEmail)
	assert.Equal(t, fedID, *res.FederationID)
	assert.Nil(t, res.InstitutionID)
}

func TestExecute_UnknownInstitution(t *testing.T) {
	e := newEnv(t, fakePartners{})
	req := validRequest()
	req.RequesterSource = "institution"
	req.InstitutionID = ptr.Ptr(uuid.New())

	_, err := e.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInstitutionNotFound)
}

func TestExecute_InactivePartnerIsRejected(t *testing.T) {
	fedID, instID := uuid.New(), uuid.New()
	partners := fakePartners{
		federations:  map[uuid.UUID]*domain.Federation{fedID: {ID: fedID, Name: "Federação Extinta", Active: false}},
		institutions: map[uuid.UUID]*domain.Institution{instID: {ID: instID, Name: "Escola Fechada", Active: false}},
	}

	t.Run("federation", func(t *testing.T) {
		e := newEnv(t, partners)
		req := validRequest()
		req.RequesterSource = "federation"
		req.FederationID = &fedID

		_, err := e.uc.Execute(context.Background(), req)

		assert.ErrorIs(t, err, ErrFederationNotFound)
		assert.Empty(t, e.repo.items)
	})

	t.Run("institution", func(t *testing.T) {
		e := newEnv(t, partners)
		req := validRequest()
		req.RequesterSource = "institution"
		req.InstitutionID = &instID

		_, err := e.uc.Execute(context.Background(), req)

		assert.ErrorIs(t, err, ErrInstitutionNotFound)
		assert.Empty(t, e.repo.items)
	})
}

func TestExecute_WeeklyRecurrence(t *testing.T) {
	e := newEnv(t, fakePartners{})
	req := validRequest()
	req.Recurrence = ptr.Ptr("FREQ=WEEKLY;COUNT=4")

	resp, err := e.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, resp.Reservations, 4)
	require.NotNil(t, resp.SeriesID)
	for i, r := range resp.Reservations {
		assert.Equal(t, day(8, 0).AddDate(0, 0, 7*i), r.StartAt)
		assert.Equal(t, 2*time.Hour, r.Duration())
		assert.Equal(t, *resp.SeriesID, *r.SeriesID)
	}
	assert.Len(t, e.publisher.events, 4)
}

func TestExecute_RecurrenceIsAllOrNothing(t *testing.T) {
	e := newEnv(t, fakePartners{})
	third := day(8, 0).AddDate(0, 0, 14)
	seed(e, 1, "Copa Tocantins", third.Add(time.Hour), third.Add(3*time.Hour), domain.StatusApproved)

	req := validRequest()
	req.Recurrence = ptr.Ptr("FREQ=WEEKLY;COUNT=4")

	_, err := e.uc.Execute(context.Background(), req)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Copa Tocantins", conflict.Title())
	assert.Len(t, e.repo.items, 1)
}

func TestExecute_RecurrenceRules(t *testing.T) {
	tests := []struct {
		name string
		rule string
		want string
	}{
		{"garbage", "FREQ=SOMETIMES", msgRecurrenceInvalid},
		{"unbounded", "FREQ=DAILY", msgRecurrenceUnbounded},
		{"too many", "FREQ=DAILY;COUNT=53", "A recorrência excede o limite de 52 ocorrências."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, fakePartners{})
			req := validRequest()
			req.Recurrence = ptr.Ptr(tt.rule)

			_, err := e.uc.Execute(context.Background(), req)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, []string{tt.want}, verr.Messages)
		})
	}
}

func TestExecute_OverlappingOccurrences(t *testing.T) {
	e := newEnv(t, fakePartners{})
	req := validRequest()
	req.EndDate = "2025-05-12"
	req.Recurrence = ptr.Ptr("FREQ=DAILY;COUNT=2")

	_, err := e.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, e.repo.items)
}
