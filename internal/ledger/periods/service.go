package periods

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fundament-gl/fundament/internal/audit"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Service owns fiscal-calendar operations.
type Service struct {
	repo  Repository
	audit audit.Recorder
	now   func() time.Time
}

// NewService constructs the calendar service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{repo: repo, audit: recorder, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateYear sets up a calendar year with twelve monthly periods in bulk.
func (s *Service) CreateYear(ctx context.Context, year int, actorID uuid.UUID) (FiscalYear, []FiscalPeriod, error) {
	if year < 1900 || year > 2200 {
		return FiscalYear{}, nil, &shared.ValidationError{Field: "year", Reason: "out of range"}
	}
	fy := FiscalYear{
		ID:        uuid.New(),
		Name:      fmt.Sprintf("FY %d", year),
		StartDate: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	ps := GenerateMonthlyPeriods(fy.ID, year)
	fy, err := s.repo.InsertYear(ctx, fy, ps)
	if err != nil {
		return FiscalYear{}, nil, err
	}
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  actorID,
		Action:   "gl.fiscal_year.create",
		Entity:   "fiscal_year",
		EntityID: fy.ID.String(),
		Meta:     map[string]any{"name": fy.Name, "periods": len(ps)},
	})
	return fy, ps, nil
}

// ListPeriods returns the periods of a fiscal year in date order.
func (s *Service) ListPeriods(ctx context.Context, yearID uuid.UUID) ([]FiscalPeriod, error) {
	return s.repo.ListPeriods(ctx, yearID)
}

// Get returns a single period by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (FiscalPeriod, error) {
	return s.repo.GetPeriod(ctx, id)
}

// GetByCode resolves a "YYYY-MM" period code.
func (s *Service) GetByCode(ctx context.Context, code string) (FiscalPeriod, error) {
	return s.repo.GetPeriodByCode(ctx, code)
}

// ResolveForDate finds the period covering date and verifies it accepts new
// entries. A covering period in closed status yields PeriodClosedError; no
// covering period at all yields NotFoundError.
func (s *Service) ResolveForDate(ctx context.Context, date time.Time) (FiscalPeriod, error) {
	p, err := s.repo.FindCovering(ctx, date)
	if err != nil {
		return FiscalPeriod{}, err
	}
	if !p.Status.Postable() {
		return FiscalPeriod{}, &shared.PeriodClosedError{PeriodCode: p.Code, Date: date}
	}
	return p, nil
}

// Close transitions a period from open or adjusting to closed.
func (s *Service) Close(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (FiscalPeriod, error) {
	p, err := s.repo.GetPeriod(ctx, id)
	if err != nil {
		return FiscalPeriod{}, err
	}
	ok, err := s.repo.TransitionStatus(ctx, id, []Status{StatusOpen, StatusAdjusting}, StatusClosed)
	if err != nil {
		return FiscalPeriod{}, err
	}
	if !ok {
		return FiscalPeriod{}, &shared.InvalidStateError{Entity: "fiscal_period", ID: id.String(), Current: string(p.Status), Want: "open or adjusting"}
	}
	p.Status = StatusClosed
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  actorID,
		Action:   "gl.period.close",
		Entity:   "fiscal_period",
		EntityID: p.ID.String(),
		Meta:     map[string]any{"code": p.Code},
	})
	return p, nil
}

// Reopen transitions a closed period to adjusting. Reopened periods never
// go back to plain open; late entries stay distinguishable for review.
func (s *Service) Reopen(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (FiscalPeriod, error) {
	p, err := s.repo.GetPeriod(ctx, id)
	if err != nil {
		return FiscalPeriod{}, err
	}
	ok, err := s.repo.TransitionStatus(ctx, id, []Status{StatusClosed}, StatusAdjusting)
	if err != nil {
		return FiscalPeriod{}, err
	}
	if !ok {
		return FiscalPeriod{}, &shared.InvalidStateError{Entity: "fiscal_period", ID: id.String(), Current: string(p.Status), Want: "closed"}
	}
	p.Status = StatusAdjusting
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  actorID,
		Action:   "gl.period.reopen",
		Entity:   "fiscal_period",
		EntityID: p.ID.String(),
		Meta:     map[string]any{"code": p.Code},
	})
	return p, nil
}
