package subsystems

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fundament-gl/fundament/internal/ledger/journals"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

type stubMappings struct {
	codes map[string]uuid.UUID
}

func (s stubMappings) List(context.Context, string) ([]Mapping, error) { return nil, nil }

func (s stubMappings) Upsert(_ context.Context, m Mapping) (Mapping, error) { return m, nil }

func (s stubMappings) ResolveCodes(_ context.Context, _ string, codes []string) (map[string]uuid.UUID, error) {
	out := map[string]uuid.UUID{}
	for _, c := range codes {
		if id, ok := s.codes[c]; ok {
			out[c] = id
		}
	}
	return out, nil
}

type recordingLedger struct {
	created []journals.CreateInput
	entries map[string]journals.Entry
}

func newRecordingLedger() *recordingLedger {
	return &recordingLedger{entries: map[string]journals.Entry{}}
}

func (l *recordingLedger) Create(_ context.Context, in journals.CreateInput) (journals.Entry, []journals.Line, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return journals.Entry{}, nil, err
	}
	l.created = append(l.created, in)
	e := journals.Entry{
		ID:          uuid.New(),
		EntryNumber: int64(len(l.created)),
		Source:      in.Source,
		SourceRef:   in.SourceRef,
		Status:      journals.StatusPosted,
	}
	l.entries[in.Source+":"+in.SourceRef] = e
	return e, nil, nil
}

func (l *recordingLedger) FindBySourceRef(_ context.Context, source, ref string) (journals.Entry, []journals.Line, error) {
	if e, ok := l.entries[source+":"+ref]; ok {
		return e, nil, nil
	}
	return journals.Entry{}, nil, &shared.NotFoundError{Entity: "journal_entry", ID: source + ":" + ref}
}

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testBatch(cash, revenue string) (ImportBatch, stubMappings) {
	cashID, revenueID := uuid.New(), uuid.New()
	mappings := stubMappings{codes: map[string]uuid.UUID{"CASH": cashID, "REV": revenueID}}
	batch := ImportBatch{
		Source:       "donorhub",
		BatchRef:     "2026-03-batch-7",
		SubsidiaryID: uuid.New(),
		EntryDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Memo:         "DonorHub March sync",
		Postings: []Posting{
			{AccountCode: "CASH", Debit: amt(cash)},
			{AccountCode: "REV", Credit: amt(revenue)},
		},
	}
	return batch, mappings
}

func TestImportAggregatesByAccount(t *testing.T) {
	batch, mappings := testBatch("100.00", "250.00")
	// Several postings against the same code collapse into one line.
	batch.Postings = append(batch.Postings, Posting{AccountCode: "CASH", Debit: amt("150.00")})

	ledger := newRecordingLedger()
	svc := NewService(mappings, ledger, ledger)

	entry, created, err := svc.Import(context.Background(), batch, uuid.New())
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, journals.StatusPosted, entry.Status)

	require.Len(t, ledger.created, 1)
	in := ledger.created[0]
	require.True(t, in.AutoPost)
	require.Equal(t, "donorhub", in.Source)
	require.Equal(t, "2026-03-batch-7", in.SourceRef)
	require.Len(t, in.Lines, 2)

	var debits, credits decimal.Decimal
	for _, l := range in.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	require.Equal(t, "250.00", debits.StringFixed(2))
	require.Equal(t, "250.00", credits.StringFixed(2))
}

func TestImportIdempotent(t *testing.T) {
	batch, mappings := testBatch("100.00", "100.00")
	ledger := newRecordingLedger()
	svc := NewService(mappings, ledger, ledger)

	first, created, err := svc.Import(context.Background(), batch, uuid.New())
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Import(context.Background(), batch, uuid.New())
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, ledger.created, 1)
}

// raceLedger simulates a concurrent import winning between the idempotency
// lookup and the insert: the first lookup misses, the insert trips the
// unique index, and the re-fetch finds the winner's entry.
type raceLedger struct {
	existing journals.Entry
	lookups  int
}

func (l *raceLedger) FindBySourceRef(_ context.Context, source, ref string) (journals.Entry, []journals.Line, error) {
	l.lookups++
	if l.lookups == 1 {
		return journals.Entry{}, nil, &shared.NotFoundError{Entity: "journal_entry", ID: source + ":" + ref}
	}
	return l.existing, nil, nil
}

func (l *raceLedger) Create(context.Context, journals.CreateInput) (journals.Entry, []journals.Line, error) {
	return journals.Entry{}, nil, &shared.ValidationError{Field: "source_reference", Reason: "already imported"}
}

func TestImportConcurrentDuplicateReturnsWinner(t *testing.T) {
	batch, mappings := testBatch("100.00", "100.00")
	winner := journals.Entry{ID: uuid.New(), EntryNumber: 7, Source: batch.Source, SourceRef: batch.BatchRef, Status: journals.StatusPosted}
	ledger := &raceLedger{existing: winner}
	svc := NewService(mappings, ledger, ledger)

	entry, created, err := svc.Import(context.Background(), batch, uuid.New())
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, winner.ID, entry.ID)
	require.Equal(t, 2, ledger.lookups)
}

func TestImportUnmappedCode(t *testing.T) {
	batch, mappings := testBatch("100.00", "100.00")
	batch.Postings = append(batch.Postings, Posting{AccountCode: "MYSTERY", Debit: amt("1.00")})

	ledger := newRecordingLedger()
	svc := NewService(mappings, ledger, ledger)

	_, _, err := svc.Import(context.Background(), batch, uuid.New())
	require.True(t, shared.IsValidation(err))
	require.Empty(t, ledger.created)
}

func TestImportRejectsManualSource(t *testing.T) {
	batch, mappings := testBatch("100.00", "100.00")
	batch.Source = journals.SourceManual

	ledger := newRecordingLedger()
	svc := NewService(mappings, ledger, ledger)

	_, _, err := svc.Import(context.Background(), batch, uuid.New())
	require.True(t, shared.IsValidation(err))
}
