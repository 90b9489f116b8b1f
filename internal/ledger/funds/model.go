package funds

import (
	"time"

	"github.com/google/uuid"
)

// FundType enumerates nonprofit restriction classes.
type FundType string

const (
	TypeUnrestricted          FundType = "unrestricted"
	TypeTemporarilyRestricted FundType = "temporarily_restricted"
	TypePermanentlyRestricted FundType = "permanently_restricted"
)

// Valid reports whether t is a known fund type.
func (t FundType) Valid() bool {
	switch t {
	case TypeUnrestricted, TypeTemporarilyRestricted, TypePermanentlyRestricted:
		return true
	}
	return false
}

// Fund tags journal lines for restricted-fund accounting. It is a grouping
// key only; it carries no ledger effect of its own.
type Fund struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Type        FundType
	Description string
	IsActive    bool
	CreatedAt   time.Time
}
