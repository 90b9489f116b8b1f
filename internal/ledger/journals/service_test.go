package journals

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fundament-gl/fundament/internal/ledger/periods"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

type memoryRepo struct {
	mu          sync.Mutex
	seq         int64
	entries     map[uuid.UUID]Entry
	lines       map[uuid.UUID][]Line
	periodCodes map[uuid.UUID]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		entries:     map[uuid.UUID]Entry{},
		lines:       map[uuid.UUID][]Line{},
		periodCodes: map[uuid.UUID]string{},
	}
}

func (m *memoryRepo) WithTx(_ context.Context, fn func(TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *memoryRepo) GetEntry(_ context.Context, id uuid.UUID) (Entry, []Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *memoryRepo) GetEntryForUpdate(_ context.Context, id uuid.UUID) (Entry, []Line, error) {
	return m.get(id)
}

func (m *memoryRepo) get(id uuid.UUID) (Entry, []Line, error) {
	e, ok := m.entries[id]
	if !ok {
		return Entry{}, nil, &shared.NotFoundError{Entity: "journal_entry", ID: id.String()}
	}
	return e, m.lines[id], nil
}

func (m *memoryRepo) ListEntries(_ context.Context, filter ListFilter) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Source != "" && e.Source != filter.Source {
			continue
		}
		if filter.SubsidiaryID != nil && e.SubsidiaryID != *filter.SubsidiaryID {
			continue
		}
		if filter.PeriodCode != "" && m.periodCodes[e.FiscalPeriodID] != filter.PeriodCode {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryNumber > out[j].EntryNumber })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryRepo) FindBySourceRef(_ context.Context, source, ref string) (Entry, []Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.Source == source && e.SourceRef == ref {
			return e, m.lines[id], nil
		}
	}
	return Entry{}, nil, &shared.NotFoundError{Entity: "journal_entry", ID: source + ":" + ref}
}

func (m *memoryRepo) NextEntryNumber(context.Context) (int64, error) {
	m.seq++
	return m.seq, nil
}

func (m *memoryRepo) InsertEntry(_ context.Context, e Entry) (Entry, error) {
	for _, ex := range m.entries {
		if e.SourceRef != "" && ex.Source == e.Source && ex.SourceRef == e.SourceRef {
			return Entry{}, &shared.ValidationError{Field: "source_reference", Reason: "already imported"}
		}
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.entries[e.ID] = e
	return e, nil
}

func (m *memoryRepo) InsertLines(_ context.Context, lines []Line) error {
	for _, l := range lines {
		m.lines[l.EntryID] = append(m.lines[l.EntryID], l)
	}
	return nil
}

func (m *memoryRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to Status, actor uuid.UUID, at time.Time) (bool, error) {
	e, ok := m.entries[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	e.UpdatedAt = at
	if to == StatusPosted {
		e.PostedBy = &actor
		e.PostedAt = &at
	}
	m.entries[id] = e
	return true, nil
}

func (m *memoryRepo) SetReversedBy(_ context.Context, originalID, reversalID uuid.UUID) error {
	e := m.entries[originalID]
	e.ReversedByID = &reversalID
	m.entries[originalID] = e
	return nil
}

// openDirectory resolves every reference.
type openDirectory struct{}

func (openDirectory) SubsidiaryExists(context.Context, uuid.UUID) error { return nil }
func (openDirectory) AccountExists(context.Context, uuid.UUID) error   { return nil }
func (openDirectory) FundExists(context.Context, uuid.UUID) error      { return nil }
func (openDirectory) DepartmentExists(context.Context, uuid.UUID) error {
	return nil
}

type stubResolver struct {
	period periods.FiscalPeriod
	err    error
}

func (r stubResolver) ResolveForDate(_ context.Context, date time.Time) (periods.FiscalPeriod, error) {
	if r.err != nil {
		return periods.FiscalPeriod{}, r.err
	}
	return r.period, nil
}

func newTestService(repo *memoryRepo) *Service {
	resolver := stubResolver{period: periods.FiscalPeriod{ID: uuid.New(), Code: "2026-03", Status: periods.StatusOpen}}
	return NewService(repo, openDirectory{}, resolver, nil, nil)
}

func balancedInput(autoPost bool) CreateInput {
	return CreateInput{
		SubsidiaryID: uuid.New(),
		EntryDate:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Memo:         "March donation",
		AutoPost:     autoPost,
		ActorID:      uuid.New(),
		Lines:        twoLines("100.00", "100.00"),
	}
}

func TestCreateDraft(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	entry, lines, err := svc.Create(context.Background(), balancedInput(false))
	require.NoError(t, err)
	require.Equal(t, StatusDraft, entry.Status)
	require.Equal(t, int64(1), entry.EntryNumber)
	require.Nil(t, entry.PostedBy)
	require.Len(t, lines, 2)
	require.Equal(t, 1, lines[0].LineNumber)

	debits, credits := Totals(lines)
	require.Equal(t, "100.00", debits.StringFixed(2))
	require.Equal(t, "100.00", credits.StringFixed(2))
}

func TestCreateAutoPost(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	entry, _, err := svc.Create(context.Background(), balancedInput(true))
	require.NoError(t, err)
	require.Equal(t, StatusPosted, entry.Status)
	require.NotNil(t, entry.PostedBy)
	require.NotNil(t, entry.PostedAt)
}

func TestCreateUnbalancedRejected(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	in := balancedInput(false)
	in.Lines = twoLines("100.00", "50.00")
	_, _, err := svc.Create(context.Background(), in)
	require.True(t, shared.IsValidation(err))
	require.Empty(t, repo.entries)
}

func TestCreateInClosedPeriod(t *testing.T) {
	repo := newMemoryRepo()
	resolver := stubResolver{err: &shared.PeriodClosedError{PeriodCode: "2026-04", Date: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)}}
	svc := NewService(repo, openDirectory{}, resolver, nil, nil)

	in := balancedInput(false)
	in.EntryDate = time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.Create(context.Background(), in)
	var pc *shared.PeriodClosedError
	require.ErrorAs(t, err, &pc)
	require.Empty(t, repo.entries)
}

func TestPostDraft(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	entry, _, err := svc.Create(context.Background(), balancedInput(false))
	require.NoError(t, err)

	actor := uuid.New()
	posted, err := svc.Post(context.Background(), entry.ID, actor)
	require.NoError(t, err)
	require.Equal(t, StatusPosted, posted.Status)
	require.Equal(t, actor, *posted.PostedBy)

	// Posting again is an invalid transition and changes nothing.
	_, err = svc.Post(context.Background(), entry.ID, actor)
	var ise *shared.InvalidStateError
	require.ErrorAs(t, err, &ise)
	got, _, _ := repo.GetEntry(context.Background(), entry.ID)
	require.Equal(t, StatusPosted, got.Status)
}

func TestConcurrentPostExactlyOneWins(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	entry, _, err := svc.Create(context.Background(), balancedInput(false))
	require.NoError(t, err)

	const n = 16
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Post(context.Background(), entry.ID, uuid.New())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		var ise *shared.InvalidStateError
		require.ErrorAs(t, err, &ise)
	}
	require.Equal(t, 1, wins)
}

func TestConcurrentCreateUniqueNumbers(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	const n = 32
	numbers := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, _, err := svc.Create(context.Background(), balancedInput(false))
			require.NoError(t, err)
			numbers <- entry.EntryNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int64]bool{}
	for num := range numbers {
		require.False(t, seen[num], "entry number %d reused", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
}

func TestReverse(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	in := balancedInput(true)
	in.Lines = twoLines("500.00", "500.00")
	entry, origLines, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	actor := uuid.New()
	original, reversal, err := svc.Reverse(context.Background(), entry.ID, actor)
	require.NoError(t, err)
	require.Equal(t, StatusReversed, original.Status)
	require.Equal(t, reversal.ID, *original.ReversedByID)
	require.Equal(t, StatusPosted, reversal.Status)
	require.Equal(t, original.SubsidiaryID, reversal.SubsidiaryID)
	require.Equal(t, original.FiscalPeriodID, reversal.FiscalPeriodID)
	require.Equal(t, original.EntryDate, reversal.EntryDate)
	require.Contains(t, reversal.Memo, "Reversal of JE #")

	_, revLines, err := repo.GetEntry(context.Background(), reversal.ID)
	require.NoError(t, err)
	require.Len(t, revLines, len(origLines))
	for i, l := range revLines {
		require.True(t, l.Debit.Equal(origLines[i].Credit), "line %d debit", i+1)
		require.True(t, l.Credit.Equal(origLines[i].Debit), "line %d credit", i+1)
		require.Equal(t, origLines[i].AccountID, l.AccountID)
	}

	// The pair nets to zero but each side individually balances.
	d, c := Totals(revLines)
	require.True(t, d.Equal(c))
}

func TestReverseTwiceFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	entry, _, err := svc.Create(context.Background(), balancedInput(true))
	require.NoError(t, err)

	actor := uuid.New()
	_, _, err = svc.Reverse(context.Background(), entry.ID, actor)
	require.NoError(t, err)

	_, _, err = svc.Reverse(context.Background(), entry.ID, actor)
	var ise *shared.InvalidStateError
	require.ErrorAs(t, err, &ise)
	got, _, _ := repo.GetEntry(context.Background(), entry.ID)
	require.Equal(t, StatusReversed, got.Status)
}

func TestReverseDraftFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	entry, _, err := svc.Create(context.Background(), balancedInput(false))
	require.NoError(t, err)

	_, _, err = svc.Reverse(context.Background(), entry.ID, uuid.New())
	var ise *shared.InvalidStateError
	require.ErrorAs(t, err, &ise)
}
