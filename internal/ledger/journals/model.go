package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the journal-entry state machine: draft -> posted -> reversed.
// No other transitions exist. Reversed is terminal for the entry id; the
// reversal entry created alongside it is itself posted and independently
// reversible.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPosted   Status = "posted"
	StatusReversed Status = "reversed"
)

// SourceManual marks entries keyed in by a person. Subsystem imports carry
// their own source identifier instead.
const SourceManual = "manual"

// Entry is a journal-entry header. Once posted, line contents are immutable;
// amendments happen via a reversing entry.
type Entry struct {
	ID             uuid.UUID
	EntryNumber    int64
	SubsidiaryID   uuid.UUID
	FiscalPeriodID uuid.UUID
	EntryDate      time.Time
	Memo           string
	Source         string
	SourceRef      string
	Status         Status
	PostedBy       *uuid.UUID
	PostedAt       *time.Time
	ReversedByID   *uuid.UUID
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Line is one debit or credit leg of an entry. Exactly one of the two
// amounts is positive, or both are zero.
type Line struct {
	ID           uuid.UUID
	EntryID      uuid.UUID
	LineNumber   int
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

// Totals sums debits and credits across lines.
func Totals(lines []Line) (debits, credits decimal.Decimal) {
	for _, l := range lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}
