package reports

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/fundament-gl/fundament/internal/ledger/accounts"
	"github.com/fundament-gl/fundament/internal/ledger/funds"
	"github.com/fundament-gl/fundament/internal/ledger/periods"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// PeriodLookup resolves period codes against the fiscal calendar. Reports
// accept any existing period, closed included; closure only gates writes.
type PeriodLookup interface {
	GetByCode(ctx context.Context, code string) (periods.FiscalPeriod, error)
}

// FundLister supplies the active funds for the fund-balance report.
type FundLister interface {
	ListActive(ctx context.Context) ([]funds.Fund, error)
}

var periodCodePattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Service computes the four financial reports. All of them are pure read
// projections over posted lines; concurrent identical requests collapse to
// one load via singleflight, and results sit behind the versioned cache.
type Service struct {
	repo     Repository
	lookup   PeriodLookup
	funds    FundLister
	cache    *Cache
	inflight singleflight.Group
}

// NewService constructs the report service. cache may be nil.
func NewService(repo Repository, lookup PeriodLookup, lister FundLister, cache *Cache) *Service {
	return &Service{repo: repo, lookup: lookup, funds: lister, cache: cache}
}

func (s *Service) resolve(ctx context.Context, code string) (periods.FiscalPeriod, error) {
	if !periodCodePattern.MatchString(code) {
		return periods.FiscalPeriod{}, &shared.ValidationError{Field: "period_code", Reason: "want YYYY-MM"}
	}
	return s.lookup.GetByCode(ctx, code)
}

func keyPart(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

// TrialBalance sums posted debits and credits per account for one period.
func (s *Service) TrialBalance(ctx context.Context, periodCode string, subsidiaryID *uuid.UUID) (TrialBalance, error) {
	period, err := s.resolve(ctx, periodCode)
	if err != nil {
		return TrialBalance{}, err
	}
	key, err := s.cache.BuildKey(ctx, "gl", "tb", period.Code, keyPart(subsidiaryID))
	if err != nil {
		return TrialBalance{}, err
	}
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		var out TrialBalance
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			rows, err := s.repo.PeriodActivity(ctx, period.ID, ActivityFilter{SubsidiaryID: subsidiaryID})
			if err != nil {
				return nil, err
			}
			return BuildTrialBalance(period.Code, rows), nil
		})
		return out, err
	})
	if err != nil {
		return TrialBalance{}, err
	}
	return v.(TrialBalance), nil
}

// StatementOfActivities reports revenue and expenses for one period.
func (s *Service) StatementOfActivities(ctx context.Context, periodCode string, subsidiaryID, fundID *uuid.UUID) (StatementOfActivities, error) {
	period, err := s.resolve(ctx, periodCode)
	if err != nil {
		return StatementOfActivities{}, err
	}
	key, err := s.cache.BuildKey(ctx, "gl", "soa", period.Code, keyPart(subsidiaryID), keyPart(fundID))
	if err != nil {
		return StatementOfActivities{}, err
	}
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		var out StatementOfActivities
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			rows, err := s.repo.PeriodActivity(ctx, period.ID, ActivityFilter{
				SubsidiaryID: subsidiaryID,
				FundID:       fundID,
				Types:        []accounts.AccountType{accounts.TypeRevenue, accounts.TypeExpense},
			})
			if err != nil {
				return nil, err
			}
			return BuildStatementOfActivities(period.Code, rows), nil
		})
		return out, err
	})
	if err != nil {
		return StatementOfActivities{}, err
	}
	return v.(StatementOfActivities), nil
}

// StatementOfFinancialPosition reports cumulative balances as of the end of
// a period.
func (s *Service) StatementOfFinancialPosition(ctx context.Context, asOfPeriodCode string, subsidiaryID *uuid.UUID) (StatementOfFinancialPosition, error) {
	period, err := s.resolve(ctx, asOfPeriodCode)
	if err != nil {
		return StatementOfFinancialPosition{}, err
	}
	key, err := s.cache.BuildKey(ctx, "gl", "sofp", period.Code, keyPart(subsidiaryID))
	if err != nil {
		return StatementOfFinancialPosition{}, err
	}
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		var out StatementOfFinancialPosition
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			rows, err := s.repo.CumulativeActivity(ctx, period.EndDate, ActivityFilter{SubsidiaryID: subsidiaryID})
			if err != nil {
				return nil, err
			}
			return BuildStatementOfFinancialPosition(period.Code, rows), nil
		})
		return out, err
	})
	if err != nil {
		return StatementOfFinancialPosition{}, err
	}
	return v.(StatementOfFinancialPosition), nil
}

// FundBalances reports each active fund's cumulative net as of the end of a
// period.
func (s *Service) FundBalances(ctx context.Context, periodCode string) (FundBalances, error) {
	period, err := s.resolve(ctx, periodCode)
	if err != nil {
		return FundBalances{}, err
	}
	key, err := s.cache.BuildKey(ctx, "gl", "fundbal", period.Code)
	if err != nil {
		return FundBalances{}, err
	}
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		var out FundBalances
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			all, err := s.funds.ListActive(ctx)
			if err != nil {
				return nil, err
			}
			activity, err := s.repo.FundActivity(ctx, period.EndDate)
			if err != nil {
				return nil, err
			}
			return BuildFundBalances(period.Code, all, activity), nil
		})
		return out, err
	})
	if err != nil {
		return FundBalances{}, err
	}
	return v.(FundBalances), nil
}
