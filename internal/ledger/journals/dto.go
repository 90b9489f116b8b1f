package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// LineInput is one requested journal line, amounts as submitted by the
// caller before rounding.
type LineInput struct {
	AccountID    uuid.UUID
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Memo         string
	DepartmentID *uuid.UUID
	FundID       *uuid.UUID
	CostCenter   string
	Quantity     decimal.Decimal
	Currency     string
	ExchangeRate decimal.Decimal
}

// CreateInput is a requested journal entry.
type CreateInput struct {
	SubsidiaryID uuid.UUID
	EntryDate    time.Time
	Memo         string
	Source       string
	SourceRef    string
	Lines        []LineInput
	AutoPost     bool
	ActorID      uuid.UUID
}

// Normalize rounds every monetary amount to 2 fractional digits and fills
// defaults. Balance checks always run against the rounded amounts that will
// be stored, never the raw input.
func (in *CreateInput) Normalize() {
	if in.Source == "" {
		in.Source = SourceManual
	}
	in.EntryDate = in.EntryDate.Truncate(24 * time.Hour)
	for i := range in.Lines {
		l := &in.Lines[i]
		l.Debit = l.Debit.Round(2)
		l.Credit = l.Credit.Round(2)
		if l.Currency == "" {
			l.Currency = "USD"
		}
		if l.ExchangeRate.IsZero() {
			l.ExchangeRate = decimal.NewFromInt(1)
		}
	}
}

// Validate enforces the structural invariants every entry must satisfy
// before any write: at least two lines, each line one-sided or fully zero,
// no negatives, debits and credits balanced within tolerance, and at least
// one line with a non-zero amount.
func (in *CreateInput) Validate() error {
	if len(in.Lines) < 2 {
		return &shared.ValidationError{Field: "lines", Reason: "at least 2 lines required"}
	}
	substance := false
	for i, l := range in.Lines {
		n := i + 1
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return &shared.ValidationError{Field: "amount", Line: n, Reason: "amounts must not be negative"}
		}
		if l.Debit.IsPositive() && l.Credit.IsPositive() {
			return &shared.ValidationError{Field: "amount", Line: n, Reason: "a line may carry a debit or a credit, not both"}
		}
		if l.Debit.IsPositive() || l.Credit.IsPositive() {
			substance = true
		}
	}
	if !substance {
		return &shared.ValidationError{Field: "lines", Reason: "entry has no non-zero amounts"}
	}
	debits, credits := totalsOf(in.Lines)
	if !shared.Balanced(debits, credits) {
		return &shared.ValidationError{
			Field:  "lines",
			Reason: "debits " + debits.StringFixed(2) + " do not balance credits " + credits.StringFixed(2),
		}
	}
	return nil
}

func totalsOf(lines []LineInput) (debits, credits decimal.Decimal) {
	for _, l := range lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}
