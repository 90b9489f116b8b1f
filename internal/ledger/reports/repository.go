package reports

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/ledger/accounts"
)

// ActivityFilter narrows activity aggregation.
type ActivityFilter struct {
	SubsidiaryID *uuid.UUID
	FundID       *uuid.UUID
	Types        []accounts.AccountType
}

// Repository aggregates posted journal lines for the report builders. It is
// strictly read-only; each query runs as one statement so its totals come
// from one snapshot.
type Repository interface {
	// PeriodActivity sums posted debits/credits per account within a single
	// fiscal period.
	PeriodActivity(ctx context.Context, periodID uuid.UUID, filter ActivityFilter) ([]AccountActivity, error)
	// CumulativeActivity sums posted debits/credits per account over every
	// period ending on or before endDate.
	CumulativeActivity(ctx context.Context, endDate time.Time, filter ActivityFilter) ([]AccountActivity, error)
	// FundActivity sums posted credit-minus-debit per fund over every period
	// ending on or before endDate.
	FundActivity(ctx context.Context, endDate time.Time) ([]FundActivity, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed report repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const activitySelect = `SELECT a.id, a.account_number, a.name, a.account_type, a.normal_balance,
COALESCE(SUM(l.debit_amount),0), COALESCE(SUM(l.credit_amount),0)
FROM journal_lines l
JOIN journal_entries e ON e.id = l.journal_entry_id
JOIN accounts a ON a.id = l.account_id`

const activityGroup = ` GROUP BY a.id, a.account_number, a.name, a.account_type, a.normal_balance ORDER BY a.account_number`

func (r *repository) PeriodActivity(ctx context.Context, periodID uuid.UUID, filter ActivityFilter) ([]AccountActivity, error) {
	query := activitySelect + ` WHERE e.status='posted' AND e.fiscal_period_id=$1`
	args := []any{periodID}
	query, args = applyFilter(query, args, filter)
	return r.queryActivity(ctx, query+activityGroup, args)
}

func (r *repository) CumulativeActivity(ctx context.Context, endDate time.Time, filter ActivityFilter) ([]AccountActivity, error) {
	query := activitySelect + `
JOIN fiscal_periods p ON p.id = e.fiscal_period_id
WHERE e.status='posted' AND p.end_date<=$1`
	args := []any{endDate}
	query, args = applyFilter(query, args, filter)
	return r.queryActivity(ctx, query+activityGroup, args)
}

func applyFilter(query string, args []any, filter ActivityFilter) (string, []any) {
	if filter.SubsidiaryID != nil {
		args = append(args, *filter.SubsidiaryID)
		query += ` AND e.subsidiary_id=$` + strconv.Itoa(len(args))
	}
	if filter.FundID != nil {
		args = append(args, *filter.FundID)
		query += ` AND l.fund_id=$` + strconv.Itoa(len(args))
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		args = append(args, types)
		query += ` AND a.account_type=ANY($` + strconv.Itoa(len(args)) + `)`
	}
	return query, args
}

func (r *repository) queryActivity(ctx context.Context, query string, args []any) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountActivity
	for rows.Next() {
		var a AccountActivity
		if err := rows.Scan(&a.AccountID, &a.AccountNumber, &a.AccountName, &a.Type, &a.NormalBalance, &a.Debit, &a.Credit); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) FundActivity(ctx context.Context, endDate time.Time) ([]FundActivity, error) {
	rows, err := r.db.Query(ctx, `SELECT l.fund_id, COALESCE(SUM(l.credit_amount - l.debit_amount),0)
FROM journal_lines l
JOIN journal_entries e ON e.id = l.journal_entry_id
JOIN fiscal_periods p ON p.id = e.fiscal_period_id
WHERE e.status='posted' AND p.end_date<=$1 AND l.fund_id IS NOT NULL
GROUP BY l.fund_id`, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FundActivity
	for rows.Next() {
		var f FundActivity
		if err := rows.Scan(&f.FundID, &f.Net); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
