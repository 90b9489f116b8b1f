package journals

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fundament-gl/fundament/internal/identity"
	"github.com/fundament-gl/fundament/internal/ledger/periods"
)

type listResponse struct {
	Items []struct {
		EntryNumber int64  `json:"entry_number"`
		Source      string `json:"source"`
		Status      string `json:"status"`
	} `json:"items"`
	Total int `json:"total"`
}

func seedListEntry(repo *memoryRepo, number int64, periodID uuid.UUID, source string, status Status) {
	e := Entry{
		ID:             uuid.New(),
		EntryNumber:    number,
		SubsidiaryID:   uuid.New(),
		FiscalPeriodID: periodID,
		EntryDate:      time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Source:         source,
		Status:         status,
	}
	repo.entries[e.ID] = e
}

func newListRouter(repo *memoryRepo) http.Handler {
	resolver := stubResolver{period: periods.FiscalPeriod{ID: uuid.New(), Code: "2026-03", Status: periods.StatusOpen}}
	svc := NewService(repo, openDirectory{}, resolver, nil, nil)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	router := chi.NewRouter()
	h.MountRoutes(router)
	return router
}

func doList(t *testing.T, router http.Handler, query string) (*httptest.ResponseRecorder, listResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	ctx := identity.ContextWithActor(req.Context(), identity.Actor{ID: uuid.New(), Role: identity.RoleViewer})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req.WithContext(ctx))
	var out listResponse
	if rr.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	}
	return rr, out
}

func TestListFilters(t *testing.T) {
	repo := newMemoryRepo()
	march := uuid.New()
	april := uuid.New()
	repo.periodCodes[march] = "2026-03"
	repo.periodCodes[april] = "2026-04"
	seedListEntry(repo, 1, march, SourceManual, StatusPosted)
	seedListEntry(repo, 2, april, "payroll", StatusPosted)
	seedListEntry(repo, 3, march, SourceManual, StatusDraft)
	router := newListRouter(repo)

	rr, out := doList(t, router, "?period=2026-03")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 2, out.Total)
	require.Equal(t, int64(3), out.Items[0].EntryNumber)
	require.Equal(t, int64(1), out.Items[1].EntryNumber)

	rr, out = doList(t, router, "?source=payroll")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, out.Total)
	require.Equal(t, int64(2), out.Items[0].EntryNumber)

	rr, out = doList(t, router, "?status=draft")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, out.Total)
	require.Equal(t, int64(3), out.Items[0].EntryNumber)
}

func TestListPaging(t *testing.T) {
	repo := newMemoryRepo()
	period := uuid.New()
	repo.periodCodes[period] = "2026-03"
	for n := int64(1); n <= 5; n++ {
		seedListEntry(repo, n, period, SourceManual, StatusPosted)
	}
	router := newListRouter(repo)

	rr, out := doList(t, router, "?limit=2")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 2, out.Total)
	require.Equal(t, int64(5), out.Items[0].EntryNumber)
	require.Equal(t, int64(4), out.Items[1].EntryNumber)

	rr, out = doList(t, router, "?limit=2&offset=2")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 2, out.Total)
	require.Equal(t, int64(3), out.Items[0].EntryNumber)
	require.Equal(t, int64(2), out.Items[1].EntryNumber)
}

func TestListRejectsBadPaging(t *testing.T) {
	router := newListRouter(newMemoryRepo())

	rr, _ := doList(t, router, "?limit=abc")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr, _ = doList(t, router, "?offset=-1")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
