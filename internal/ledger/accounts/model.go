package accounts

import (
	"time"

	"github.com/google/uuid"
)

// AccountType enumerates chart-of-accounts categories.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeRevenue   AccountType = "revenue"
	TypeExpense   AccountType = "expense"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

// NormalBalance is the side on which an account naturally increases.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "debit"
	NormalCredit NormalBalance = "credit"
)

// Valid reports whether b is a known balance side.
func (b NormalBalance) Valid() bool {
	return b == NormalDebit || b == NormalCredit
}

// Account models a chart-of-accounts node. Type and normal balance are
// immutable after creation; only naming, description, fund tag, and the
// active flag may change. Deactivation never invalidates existing lines.
type Account struct {
	ID            uuid.UUID
	Number        string
	Name          string
	Type          AccountType
	NormalBalance NormalBalance
	ParentID      *uuid.UUID
	FundID        *uuid.UUID
	Description   string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
