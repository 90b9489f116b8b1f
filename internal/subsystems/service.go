package subsystems

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/ledger/journals"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// EntryCreator persists journal entries; satisfied by the journal service.
type EntryCreator interface {
	Create(ctx context.Context, in journals.CreateInput) (journals.Entry, []journals.Line, error)
}

// EntryFinder looks up entries by import reference; satisfied by the
// journal repository.
type EntryFinder interface {
	FindBySourceRef(ctx context.Context, source, ref string) (journals.Entry, []journals.Line, error)
}

// Service turns subsystem posting batches into posted summary journal
// entries. The subsystem's HTTP client, login, and pagination live outside;
// callers hand over already-fetched postings.
type Service struct {
	mappings MappingRepository
	creator  EntryCreator
	finder   EntryFinder
}

// NewService constructs the import service.
func NewService(mappings MappingRepository, creator EntryCreator, finder EntryFinder) *Service {
	return &Service{mappings: mappings, creator: creator, finder: finder}
}

// ListMappings returns the code mappings for one subsystem.
func (s *Service) ListMappings(ctx context.Context, source string) ([]Mapping, error) {
	return s.mappings.List(ctx, source)
}

// PutMapping creates or updates one code mapping.
func (s *Service) PutMapping(ctx context.Context, source, externalCode string, accountID uuid.UUID) (Mapping, error) {
	if strings.TrimSpace(source) == "" {
		return Mapping{}, &shared.ValidationError{Field: "source", Reason: "required"}
	}
	if strings.TrimSpace(externalCode) == "" {
		return Mapping{}, &shared.ValidationError{Field: "external_code", Reason: "required"}
	}
	return s.mappings.Upsert(ctx, Mapping{ID: uuid.New(), Source: source, ExternalCode: externalCode, AccountID: accountID})
}

// Import aggregates a batch into one balanced summary entry and posts it.
// It reports whether a new entry was created; a repeated batch reference
// returns the previously created entry unchanged.
func (s *Service) Import(ctx context.Context, batch ImportBatch, actorID uuid.UUID) (journals.Entry, bool, error) {
	if strings.TrimSpace(batch.Source) == "" || batch.Source == journals.SourceManual {
		return journals.Entry{}, false, &shared.ValidationError{Field: "source", Reason: "must name the subsystem"}
	}
	if strings.TrimSpace(batch.BatchRef) == "" {
		return journals.Entry{}, false, &shared.ValidationError{Field: "batch_ref", Reason: "required"}
	}
	if len(batch.Postings) == 0 {
		return journals.Entry{}, false, &shared.ValidationError{Field: "postings", Reason: "required"}
	}

	if existing, _, err := s.finder.FindBySourceRef(ctx, batch.Source, batch.BatchRef); err == nil {
		return existing, false, nil
	} else if !shared.IsNotFound(err) {
		return journals.Entry{}, false, err
	}

	codes := make([]string, 0, len(batch.Postings))
	seen := map[string]bool{}
	for _, p := range batch.Postings {
		if !seen[p.AccountCode] {
			seen[p.AccountCode] = true
			codes = append(codes, p.AccountCode)
		}
	}
	mapped, err := s.mappings.ResolveCodes(ctx, batch.Source, codes)
	if err != nil {
		return journals.Entry{}, false, err
	}

	// Aggregate per ledger account so a thousand-posting batch lands as a
	// compact summary entry.
	type bucket struct {
		debit  decimal.Decimal
		credit decimal.Decimal
	}
	buckets := map[uuid.UUID]*bucket{}
	for _, p := range batch.Postings {
		accountID, ok := mapped[p.AccountCode]
		if !ok {
			return journals.Entry{}, false, &shared.ValidationError{Field: "postings", Reason: "no account mapping for code " + p.AccountCode}
		}
		b, ok := buckets[accountID]
		if !ok {
			b = &bucket{}
			buckets[accountID] = b
		}
		b.debit = b.debit.Add(p.Debit)
		b.credit = b.credit.Add(p.Credit)
	}

	accountIDs := make([]uuid.UUID, 0, len(buckets))
	for id := range buckets {
		accountIDs = append(accountIDs, id)
	}
	sort.Slice(accountIDs, func(i, j int) bool {
		return accountIDs[i].String() < accountIDs[j].String()
	})

	in := journals.CreateInput{
		SubsidiaryID: batch.SubsidiaryID,
		EntryDate:    batch.EntryDate,
		Memo:         batch.Memo,
		Source:       batch.Source,
		SourceRef:    batch.BatchRef,
		AutoPost:     true,
		ActorID:      actorID,
	}
	for _, id := range accountIDs {
		b := buckets[id]
		net := b.debit.Sub(b.credit)
		line := journals.LineInput{AccountID: id, Memo: "Import " + batch.Source + " " + batch.BatchRef}
		if net.IsNegative() {
			line.Credit = net.Neg()
		} else {
			line.Debit = net
		}
		in.Lines = append(in.Lines, line)
	}

	entry, _, err := s.creator.Create(ctx, in)
	if err != nil {
		// Two imports of the same batch can race past the lookup above;
		// the unique index on (source, source_reference) decides, and the
		// loser returns the winner's entry.
		var verr *shared.ValidationError
		if errors.As(err, &verr) && verr.Field == "source_reference" {
			if existing, _, ferr := s.finder.FindBySourceRef(ctx, batch.Source, batch.BatchRef); ferr == nil {
				return existing, false, nil
			}
		}
		return journals.Entry{}, false, err
	}
	return entry, true, nil
}
