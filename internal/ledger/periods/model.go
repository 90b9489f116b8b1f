package periods

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the fiscal-period state machine. Close moves open or adjusting
// to closed; reopen moves closed back to adjusting only. Adjusting accepts
// postings exactly like open but flags late entries for audit review.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAdjusting Status = "adjusting"
	StatusClosed    Status = "closed"
)

// Postable reports whether new entries may be dated inside the period.
func (s Status) Postable() bool {
	return s == StatusOpen || s == StatusAdjusting
}

// FiscalYear spans a contiguous range of fiscal periods.
type FiscalYear struct {
	ID        uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

// FiscalPeriod is one non-overlapping slice of a fiscal year. Exactly one
// period covers any calendar date within the year's range.
type FiscalPeriod struct {
	ID           uuid.UUID
	FiscalYearID uuid.UUID
	Code         string
	StartDate    time.Time
	EndDate      time.Time
	Status       Status
	CreatedAt    time.Time
}

// Covers reports whether d falls within [StartDate, EndDate].
func (p FiscalPeriod) Covers(d time.Time) bool {
	d = d.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// GenerateMonthlyPeriods builds the twelve calendar-month periods of a
// fiscal year, coded "YYYY-MM", all starting out open.
func GenerateMonthlyPeriods(yearID uuid.UUID, year int) []FiscalPeriod {
	out := make([]FiscalPeriod, 0, 12)
	for m := time.January; m <= time.December; m++ {
		start := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		out = append(out, FiscalPeriod{
			ID:           uuid.New(),
			FiscalYearID: yearID,
			Code:         fmt.Sprintf("%04d-%02d", year, int(m)),
			StartDate:    start,
			EndDate:      end,
			Status:       StatusOpen,
		})
	}
	return out
}
