package periods

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

type memoryRepo struct {
	years   map[uuid.UUID]FiscalYear
	periods map[uuid.UUID]FiscalPeriod
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{years: map[uuid.UUID]FiscalYear{}, periods: map[uuid.UUID]FiscalPeriod{}}
}

func (m *memoryRepo) InsertYear(_ context.Context, year FiscalYear, ps []FiscalPeriod) (FiscalYear, error) {
	year.CreatedAt = time.Now()
	m.years[year.ID] = year
	for _, p := range ps {
		m.periods[p.ID] = p
	}
	return year, nil
}

func (m *memoryRepo) ListPeriods(_ context.Context, yearID uuid.UUID) ([]FiscalPeriod, error) {
	var out []FiscalPeriod
	for _, p := range m.periods {
		if p.FiscalYearID == yearID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetPeriod(_ context.Context, id uuid.UUID) (FiscalPeriod, error) {
	p, ok := m.periods[id]
	if !ok {
		return FiscalPeriod{}, &shared.NotFoundError{Entity: "fiscal_period", ID: id.String()}
	}
	return p, nil
}

func (m *memoryRepo) GetPeriodByCode(_ context.Context, code string) (FiscalPeriod, error) {
	for _, p := range m.periods {
		if p.Code == code {
			return p, nil
		}
	}
	return FiscalPeriod{}, &shared.NotFoundError{Entity: "fiscal_period", ID: code}
}

func (m *memoryRepo) FindCovering(_ context.Context, date time.Time) (FiscalPeriod, error) {
	for _, p := range m.periods {
		if p.Covers(date) {
			return p, nil
		}
	}
	return FiscalPeriod{}, &shared.NotFoundError{Entity: "fiscal_period", ID: date.Format("2006-01-02")}
}

func (m *memoryRepo) TransitionStatus(_ context.Context, id uuid.UUID, from []Status, to Status) (bool, error) {
	p, ok := m.periods[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if p.Status == f {
			p.Status = to
			m.periods[id] = p
			return true, nil
		}
	}
	return false, nil
}

func TestGenerateMonthlyPeriods(t *testing.T) {
	yearID := uuid.New()
	ps := GenerateMonthlyPeriods(yearID, 2026)
	require.Len(t, ps, 12)
	require.Equal(t, "2026-01", ps[0].Code)
	require.Equal(t, "2026-12", ps[11].Code)
	require.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), ps[1].EndDate)

	// Periods tile the year with no gaps or overlaps.
	for i := 1; i < len(ps); i++ {
		require.Equal(t, ps[i-1].EndDate.AddDate(0, 0, 1), ps[i].StartDate)
	}
	for _, p := range ps {
		require.Equal(t, StatusOpen, p.Status)
		require.Equal(t, yearID, p.FiscalYearID)
	}
}

func TestResolveForDate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	_, ps, err := svc.CreateYear(context.Background(), 2026, uuid.New())
	require.NoError(t, err)

	apr := ps[3]
	got, err := svc.ResolveForDate(context.Background(), time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, apr.ID, got.ID)

	_, err = svc.ResolveForDate(context.Background(), time.Date(2031, 4, 15, 0, 0, 0, 0, time.UTC))
	var nf *shared.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCloseAndReopen(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	actor := uuid.New()
	_, ps, err := svc.CreateYear(context.Background(), 2026, actor)
	require.NoError(t, err)
	apr := ps[3]

	closed, err := svc.Close(context.Background(), apr.ID, actor)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, closed.Status)

	// Entries dated inside a closed period are rejected distinctly from
	// missing periods.
	_, err = svc.ResolveForDate(context.Background(), time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	var pc *shared.PeriodClosedError
	require.ErrorAs(t, err, &pc)
	require.Equal(t, "2026-04", pc.PeriodCode)

	// Double close fails.
	_, err = svc.Close(context.Background(), apr.ID, actor)
	var ise *shared.InvalidStateError
	require.ErrorAs(t, err, &ise)

	reopened, err := svc.Reopen(context.Background(), apr.ID, actor)
	require.NoError(t, err)
	require.Equal(t, StatusAdjusting, reopened.Status)

	// Reopen of a non-closed period fails.
	_, err = svc.Reopen(context.Background(), apr.ID, actor)
	require.ErrorAs(t, err, &ise)

	// Adjusting accepts entries again.
	got, err := svc.ResolveForDate(context.Background(), time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StatusAdjusting, got.Status)
}
