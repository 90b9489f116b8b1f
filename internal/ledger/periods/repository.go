package periods

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Repository encapsulates DB operations for the fiscal calendar.
type Repository interface {
	InsertYear(ctx context.Context, year FiscalYear, periods []FiscalPeriod) (FiscalYear, error)
	ListPeriods(ctx context.Context, yearID uuid.UUID) ([]FiscalPeriod, error)
	GetPeriod(ctx context.Context, id uuid.UUID) (FiscalPeriod, error)
	GetPeriodByCode(ctx context.Context, code string) (FiscalPeriod, error)
	FindCovering(ctx context.Context, date time.Time) (FiscalPeriod, error)
	// TransitionStatus flips a period's status only when the current status
	// matches one of from. It reports whether a row changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed calendar repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, fiscal_year_id, code, start_date, end_date, status, created_at`

func (r *repository) InsertYear(ctx context.Context, year FiscalYear, periods []FiscalPeriod) (FiscalYear, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return FiscalYear{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `INSERT INTO fiscal_years (id, name, start_date, end_date)
VALUES ($1,$2,$3,$4) RETURNING created_at`, year.ID, year.Name, year.StartDate, year.EndDate).Scan(&year.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return FiscalYear{}, &shared.ValidationError{Field: "name", Reason: "fiscal year already exists"}
		}
		return FiscalYear{}, err
	}
	for _, p := range periods {
		_, err := tx.Exec(ctx, `INSERT INTO fiscal_periods (id, fiscal_year_id, code, start_date, end_date, status)
VALUES ($1,$2,$3,$4,$5,$6)`, p.ID, p.FiscalYearID, p.Code, p.StartDate, p.EndDate, p.Status)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return FiscalYear{}, &shared.ValidationError{Field: "code", Reason: "period " + p.Code + " already exists"}
			}
			return FiscalYear{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return FiscalYear{}, err
	}
	return year, nil
}

func (r *repository) ListPeriods(ctx context.Context, yearID uuid.UUID) ([]FiscalPeriod, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE fiscal_year_id=$1 ORDER BY start_date`, yearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FiscalPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) GetPeriod(ctx context.Context, id uuid.UUID) (FiscalPeriod, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FiscalPeriod{}, &shared.NotFoundError{Entity: "fiscal_period", ID: id.String()}
		}
		return FiscalPeriod{}, err
	}
	return p, nil
}

func (r *repository) GetPeriodByCode(ctx context.Context, code string) (FiscalPeriod, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE code=$1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FiscalPeriod{}, &shared.NotFoundError{Entity: "fiscal_period", ID: code}
		}
		return FiscalPeriod{}, err
	}
	return p, nil
}

func (r *repository) FindCovering(ctx context.Context, date time.Time) (FiscalPeriod, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE start_date<=$1 AND end_date>=$1 ORDER BY start_date LIMIT 1`, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FiscalPeriod{}, &shared.NotFoundError{Entity: "fiscal_period", ID: date.Format("2006-01-02")}
		}
		return FiscalPeriod{}, err
	}
	return p, nil
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE fiscal_periods SET status=$3 WHERE id=$1 AND status=ANY($2)`, id, statusStrings(from), to)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func statusStrings(ss []Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func scanPeriod(row pgx.Row) (FiscalPeriod, error) {
	var p FiscalPeriod
	err := row.Scan(&p.ID, &p.FiscalYearID, &p.Code, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt)
	return p, err
}
