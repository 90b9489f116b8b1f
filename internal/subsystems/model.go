package subsystems

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Posting is one aggregated line handed over by an external subsystem,
// keyed by that subsystem's own account code.
type Posting struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Memo        string
}

// ImportBatch is one subsystem hand-off. BatchRef makes the import
// idempotent: re-submitting the same source+ref returns the entry created
// the first time.
type ImportBatch struct {
	Source       string
	BatchRef     string
	SubsidiaryID uuid.UUID
	EntryDate    time.Time
	Memo         string
	Postings     []Posting
}

// Mapping ties a subsystem account code to a ledger account.
type Mapping struct {
	ID           uuid.UUID
	Source       string
	ExternalCode string
	AccountID    uuid.UUID
	CreatedAt    time.Time
}
