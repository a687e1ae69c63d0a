package get_facility_agenda

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/cache"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
	"github.com/idjuv/agenda-service/pkg/ptr"
)

type fakeReservations struct {
	items   []*domain.Reservation
	calls   int
	filters []domain.AgendaFilter

	// afterSnapshot вызывается после чтения, до возврата результата
	afterSnapshot func()
}

func (f *fakeReservations) GetByFacilityWithFilter(_ context.Context, filter domain.AgendaFilter) ([]*domain.Reservation, error) {
	f.calls++
	f.filters = append(f.filters, filter)
	var out []*domain.Reservation
	for _, r := range f.items {
		if r.FacilityID == filter.FacilityID && (filter.IncludeInactive || r.IsBlocking()) {
			cp := *r
			out = append(out, &cp)
		}
	}
	if f.afterSnapshot != nil {
		hook := f.afterSnapshot
		f.afterSnapshot = nil
		hook()
	}
	return out, nil
}

type fakeFacilities map[int64]*domain.Facility

func (f fakeFacilities) GetByID(_ context.Context, id int64) (*domain.Facility, error) {
	if fac, ok := f[id]; ok {
		return fac, nil
	}
	return nil, facilityRepo.ErrFacilityNotFound
}

// memoryCache кэш в памяти с той же семантикой областей и поколений, что и Redis
type memoryCache struct {
	data map[string][]byte
	gens map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, gens: map[string]int64{}}
}

func (c *memoryCache) Generation(_ context.Context, entity, scope string) (int64, error) {
	return c.gens[entity+":"+scope], nil
}

func (c *memoryCache) InvalidateScope(_ context.Context, entity, scope string) error {
	c.gens[entity+":"+scope]++
	prefix := entity + ":" + scope + ":"
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memoryCache) Get(_ context.Context, k cache.Key, dst interface{}) (bool, error) {
	data, ok := c.data[k.String()]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *memoryCache) Set(_ context.Context, k cache.Key, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[k.String()] = data
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newUseCase(repo *fakeReservations, c AgendaCache) *UseCase {
	facilities := fakeFacilities{1: {ID: 1, Name: "Ginásio Rildo Saraiva", Active: true}}
	return NewUseCase(repo, facilities, c, time.UTC, nopLogger{})
}

func TestExecute_ReadsThroughCache(t *testing.T) {
	repo := &fakeReservations{items: []*domain.Reservation{
		{ID: uuid.New(), FacilityID: 1, Title: "Treino", Status: domain.StatusApproved},
		{ID: uuid.New(), FacilityID: 1, Title: "Cancelado", Status: domain.StatusCancelled},
	}}
	c := newMemoryCache()
	uc := newUseCase(repo, c)
	req := &Request{FacilityID: 1, From: "2025-05-01", To: "2025-05-31"}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	require.Len(t, first.Reservations, 1)
	require.Len(t, second.Reservations, 1)
	assert.Equal(t, first.Reservations[0].ID, second.Reservations[0].ID)
	assert.Contains(t, c.data, "agenda:facility:1:g0:2025-05-01:2025-05-31:-:false")
}

// approve завершает транзакцию и сбрасывает область объекта
func approve(t *testing.T, repo *fakeReservations, c *memoryCache, id uuid.UUID) {
	t.Helper()
	for _, r := range repo.items {
		if r.ID == id {
			r.Status = domain.StatusApproved
		}
	}
	require.NoError(t, c.InvalidateScope(context.Background(), cache.EntityAgenda, cache.FacilityScope(1)))
}

func statuses(resp *Response) []domain.Status {
	out := make([]domain.Status, 0, len(resp.Reservations))
	for _, r := range resp.Reservations {
		out = append(out, r.Status)
	}
	return out
}

func TestExecute_ReadAfterWrite(t *testing.T) {
	id := uuid.New()
	repo := &fakeReservations{items: []*domain.Reservation{
		{ID: id, FacilityID: 1, Title: "Treino", Status: domain.StatusRequested},
	}}
	c := newMemoryCache()
	uc := newUseCase(repo, c)
	req := &Request{FacilityID: 1, From: "2025-05-01", To: "2025-05-31"}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{domain.StatusRequested}, statuses(first))

	approve(t, repo, c, id)

	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{domain.StatusApproved}, statuses(second))

	third, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{domain.StatusApproved}, statuses(third))
	assert.Equal(t, 2, repo.calls, "third read is served from cache")
}

func TestExecute_WriteDuringMissDoesNotLeaveStaleEntry(t *testing.T) {
	id := uuid.New()
	repo := &fakeReservations{items: []*domain.Reservation{
		{ID: id, FacilityID: 1, Title: "Treino", Status: domain.StatusRequested},
	}}
	c := newMemoryCache()
	uc := newUseCase(repo, c)
	req := &Request{FacilityID: 1, From: "2025-05-01", To: "2025-05-31"}

	// Запись коммитится между снимком БД и заполнением кэша
	repo.afterSnapshot = func() { approve(t, repo, c, id) }

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{domain.StatusRequested}, statuses(first))

	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{domain.StatusApproved}, statuses(second))
	assert.Equal(t, 2, repo.calls)
}

func TestExecute_PeriodBounds(t *testing.T) {
	repo := &fakeReservations{}
	uc := newUseCase(repo, cache.NoopCache{})

	resp, err := uc.Execute(context.Background(), &Request{
		FacilityID:      1,
		From:            "2025-05-01",
		To:              "2025-05-01",
		Status:          ptr.Ptr("approved"),
		IncludeInactive: true,
	})

	require.NoError(t, err)
	require.Len(t, repo.filters, 1)
	f := repo.filters[0]
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2025, 5, 1, 23, 59, 59, 999999999, time.UTC), *f.To)
	assert.Equal(t, domain.StatusApproved, *f.Status)
	assert.True(t, f.IncludeInactive)
	assert.False(t, f.ForUpdate)
	assert.Equal(t, "Ginásio Rildo Saraiva", resp.Facility.Name)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"no facility", Request{From: "2025-01-01", To: "2025-01-02"}, ErrInvalidInput},
		{"bad from", Request{FacilityID: 1, From: "01/01/2025", To: "2025-01-02"}, ErrInvalidInput},
		{"to before from", Request{FacilityID: 1, From: "2025-01-02", To: "2025-01-01"}, ErrInvalidInput},
		{"range too long", Request{FacilityID: 1, From: "2025-01-01", To: "2026-06-01"}, ErrRangeTooLong},
		{"bad status", Request{FacilityID: 1, From: "2025-01-01", To: "2025-01-02", Status: ptr.Ptr("pending")}, ErrInvalidInput},
		{"unknown facility", Request{FacilityID: 9, From: "2025-01-01", To: "2025-01-02"}, ErrFacilityNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(&fakeReservations{}, cache.NoopCache{})
			req := tt.req

			_, err := uc.Execute(context.Background(), &req)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
