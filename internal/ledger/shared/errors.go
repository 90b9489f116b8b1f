package shared

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports input that can be corrected and resubmitted.
// Line is 1-based when the problem is scoped to a journal line, 0 otherwise.
type ValidationError struct {
	Field  string
	Line   int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ledger: line %d: %s: %s", e.Line, e.Field, e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("ledger: %s: %s", e.Field, e.Reason)
	}
	return "ledger: " + e.Reason
}

// NotFoundError reports a reference that does not resolve to an existing row.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ledger: %s %s not found", e.Entity, e.ID)
}

// InvalidStateError reports an illegal state transition. Idempotent callers
// may treat it as "already done".
type InvalidStateError struct {
	Entity  string
	ID      string
	Current string
	Want    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("ledger: %s %s is %s, want %s", e.Entity, e.ID, e.Current, e.Want)
}

// PeriodClosedError reports a date that falls inside a closed fiscal period.
// The period exists; it is just not postable.
type PeriodClosedError struct {
	PeriodCode string
	Date       time.Time
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("ledger: period %s is closed for date %s", e.PeriodCode, e.Date.Format("2006-01-02"))
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
