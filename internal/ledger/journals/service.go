package journals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fundament-gl/fundament/internal/audit"
	"github.com/fundament-gl/fundament/internal/ledger/periods"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// PeriodResolver maps an entry date to an eligible fiscal period.
type PeriodResolver interface {
	ResolveForDate(ctx context.Context, date time.Time) (periods.FiscalPeriod, error)
}

// CacheInvalidator is notified after any write that changes posted data,
// so cached report projections can be discarded.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// NopInvalidator ignores invalidations.
type NopInvalidator struct{}

func (NopInvalidator) Bump(context.Context) error { return nil }

// Service owns the journal-entry state machine.
type Service struct {
	repo    Repository
	dir     Directory
	periods PeriodResolver
	audit   audit.Recorder
	cache   CacheInvalidator
	now     func() time.Time
}

// NewService constructs the journal service.
func NewService(repo Repository, dir Directory, resolver PeriodResolver, recorder audit.Recorder, cache CacheInvalidator) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if cache == nil {
		cache = NopInvalidator{}
	}
	return &Service{repo: repo, dir: dir, periods: resolver, audit: recorder, cache: cache, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns an entry with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Entry, []Line, error) {
	return s.repo.GetEntry(ctx, id)
}

// List returns entry headers matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.ListEntries(ctx, filter)
}

// Create validates and persists a new entry. All validation runs before any
// write; either the whole entry and its lines commit or nothing does. With
// AutoPost the entry is born posted.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, []Line, error) {
	in.Normalize()
	if err := s.dir.SubsidiaryExists(ctx, in.SubsidiaryID); err != nil {
		return Entry{}, nil, err
	}
	if len(in.Lines) < 2 {
		return Entry{}, nil, &shared.ValidationError{Field: "lines", Reason: "at least 2 lines required"}
	}
	for _, l := range in.Lines {
		if err := s.dir.AccountExists(ctx, l.AccountID); err != nil {
			return Entry{}, nil, err
		}
		if l.FundID != nil {
			if err := s.dir.FundExists(ctx, *l.FundID); err != nil {
				return Entry{}, nil, err
			}
		}
		if l.DepartmentID != nil {
			if err := s.dir.DepartmentExists(ctx, *l.DepartmentID); err != nil {
				return Entry{}, nil, err
			}
		}
	}
	if err := in.Validate(); err != nil {
		return Entry{}, nil, err
	}
	period, err := s.periods.ResolveForDate(ctx, in.EntryDate)
	if err != nil {
		return Entry{}, nil, err
	}

	now := s.now()
	entry := Entry{
		ID:             uuid.New(),
		SubsidiaryID:   in.SubsidiaryID,
		FiscalPeriodID: period.ID,
		EntryDate:      in.EntryDate,
		Memo:           in.Memo,
		Source:         in.Source,
		SourceRef:      in.SourceRef,
		Status:         StatusDraft,
		CreatedBy:      in.ActorID,
	}
	if in.AutoPost {
		entry.Status = StatusPosted
		entry.PostedBy = &in.ActorID
		entry.PostedAt = &now
	}
	lines := make([]Line, 0, len(in.Lines))
	for i, l := range in.Lines {
		lines = append(lines, Line{
			ID:           uuid.New(),
			EntryID:      entry.ID,
			LineNumber:   i + 1,
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Memo:         l.Memo,
			DepartmentID: l.DepartmentID,
			FundID:       l.FundID,
			CostCenter:   l.CostCenter,
			Quantity:     l.Quantity,
			Currency:     l.Currency,
			ExchangeRate: l.ExchangeRate,
		})
	}

	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		number, err := tx.NextEntryNumber(ctx)
		if err != nil {
			return err
		}
		entry.EntryNumber = number
		entry, err = tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		return tx.InsertLines(ctx, lines)
	})
	if err != nil {
		return Entry{}, nil, err
	}

	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  in.ActorID,
		Action:   "gl.entry.create",
		Entity:   "journal_entry",
		EntityID: entry.ID.String(),
		Meta:     map[string]any{"entry_number": entry.EntryNumber, "status": string(entry.Status), "period": period.Code},
	})
	if entry.Status == StatusPosted {
		_ = s.cache.Bump(ctx)
	}
	return entry, lines, nil
}

// Post transitions a draft entry to posted. Under concurrent calls on the
// same entry exactly one wins; losers get InvalidStateError.
func (s *Service) Post(ctx context.Context, id uuid.UUID, actor uuid.UUID) (Entry, error) {
	now := s.now()
	var entry Entry
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		cur, _, err := tx.GetEntryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status != StatusDraft {
			return &shared.InvalidStateError{Entity: "journal_entry", ID: id.String(), Current: string(cur.Status), Want: string(StatusDraft)}
		}
		ok, err := tx.TransitionStatus(ctx, id, StatusDraft, StatusPosted, actor, now)
		if err != nil {
			return err
		}
		if !ok {
			return &shared.InvalidStateError{Entity: "journal_entry", ID: id.String(), Current: string(cur.Status), Want: string(StatusDraft)}
		}
		cur.Status = StatusPosted
		cur.PostedBy = &actor
		cur.PostedAt = &now
		entry = cur
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  actor,
		Action:   "gl.entry.post",
		Entity:   "journal_entry",
		EntityID: entry.ID.String(),
		Meta:     map[string]any{"entry_number": entry.EntryNumber},
	})
	_ = s.cache.Bump(ctx)
	return entry, nil
}

// Reverse flips a posted entry to reversed and creates a mirrored posted
// entry in the same subsidiary and period, dated on the original's date so
// the pair nets to zero in the period it affected. Both writes share one
// transaction.
func (s *Service) Reverse(ctx context.Context, id uuid.UUID, actor uuid.UUID) (Entry, Entry, error) {
	now := s.now()
	var original, reversal Entry
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		orig, origLines, err := tx.GetEntryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if orig.Status != StatusPosted {
			return &shared.InvalidStateError{Entity: "journal_entry", ID: id.String(), Current: string(orig.Status), Want: string(StatusPosted)}
		}

		number, err := tx.NextEntryNumber(ctx)
		if err != nil {
			return err
		}
		rev := Entry{
			ID:             uuid.New(),
			EntryNumber:    number,
			SubsidiaryID:   orig.SubsidiaryID,
			FiscalPeriodID: orig.FiscalPeriodID,
			EntryDate:      orig.EntryDate,
			Memo:           fmt.Sprintf("Reversal of JE #%d: %s", orig.EntryNumber, orig.Memo),
			Source:         orig.Source,
			SourceRef:      "reversal:" + orig.ID.String(),
			Status:         StatusPosted,
			PostedBy:       &actor,
			PostedAt:       &now,
			CreatedBy:      actor,
		}
		revLines := make([]Line, 0, len(origLines))
		for _, l := range origLines {
			revLines = append(revLines, Line{
				ID:           uuid.New(),
				EntryID:      rev.ID,
				LineNumber:   l.LineNumber,
				AccountID:    l.AccountID,
				Debit:        l.Credit,
				Credit:       l.Debit,
				Memo:         "Reversal: " + l.Memo,
				DepartmentID: l.DepartmentID,
				FundID:       l.FundID,
				CostCenter:   l.CostCenter,
				Quantity:     l.Quantity,
				Currency:     l.Currency,
				ExchangeRate: l.ExchangeRate,
			})
		}
		rev, err = tx.InsertEntry(ctx, rev)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, revLines); err != nil {
			return err
		}
		ok, err := tx.TransitionStatus(ctx, orig.ID, StatusPosted, StatusReversed, actor, now)
		if err != nil {
			return err
		}
		if !ok {
			return &shared.InvalidStateError{Entity: "journal_entry", ID: id.String(), Current: string(orig.Status), Want: string(StatusPosted)}
		}
		if err := tx.SetReversedBy(ctx, orig.ID, rev.ID); err != nil {
			return err
		}
		orig.Status = StatusReversed
		orig.ReversedByID = &rev.ID
		original, reversal = orig, rev
		return nil
	})
	if err != nil {
		return Entry{}, Entry{}, err
	}
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  actor,
		Action:   "gl.entry.reverse",
		Entity:   "journal_entry",
		EntityID: original.ID.String(),
		Meta:     map[string]any{"entry_number": original.EntryNumber, "reversal_id": reversal.ID.String(), "reversal_number": reversal.EntryNumber},
	})
	_ = s.cache.Bump(ctx)
	return original, reversal, nil
}
