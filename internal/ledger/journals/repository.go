package journals

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// ListFilter narrows entry listings.
type ListFilter struct {
	SubsidiaryID *uuid.UUID
	PeriodCode   string
	Status       Status
	Source       string
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}

// Repository encapsulates read access and transaction boundaries for
// journal entries.
type Repository interface {
	GetEntry(ctx context.Context, id uuid.UUID) (Entry, []Line, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]Entry, error)
	FindBySourceRef(ctx context.Context, source, ref string) (Entry, []Line, error)
	// WithTx runs fn inside one repeatable-read transaction; either every
	// write in fn commits or none do.
	WithTx(ctx context.Context, fn func(TxRepository) error) error
}

// TxRepository exposes the writes available inside a transaction.
type TxRepository interface {
	NextEntryNumber(ctx context.Context) (int64, error)
	InsertEntry(ctx context.Context, e Entry) (Entry, error)
	InsertLines(ctx context.Context, lines []Line) error
	GetEntryForUpdate(ctx context.Context, id uuid.UUID) (Entry, []Line, error)
	// TransitionStatus is the compare-and-set protecting the state machine:
	// it flips status only when the current value matches from, stamping
	// posted_by/posted_at when the target is posted. Reports whether a row
	// changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, actor uuid.UUID, at time.Time) (bool, error)
	SetReversedBy(ctx context.Context, originalID, reversalID uuid.UUID) error
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type queries struct {
	db querier
}

type repository struct {
	queries
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed journal repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{queries: queries{db: db}, pool: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const entryColumns = `id, entry_number, subsidiary_id, fiscal_period_id, entry_date, memo, source,
COALESCE(source_reference,''), status, posted_by, posted_at, reversed_by_je_id, created_by, created_at, updated_at`

const lineColumns = `id, journal_entry_id, line_number, account_id, debit_amount, credit_amount, memo,
department_id, fund_id, COALESCE(cost_center,''), quantity, currency, exchange_rate`

func (q *queries) GetEntry(ctx context.Context, id uuid.UUID) (Entry, []Line, error) {
	return q.getEntry(ctx, id, "")
}

func (q *queries) GetEntryForUpdate(ctx context.Context, id uuid.UUID) (Entry, []Line, error) {
	return q.getEntry(ctx, id, " FOR UPDATE")
}

func (q *queries) getEntry(ctx context.Context, id uuid.UUID, suffix string) (Entry, []Line, error) {
	e, err := scanEntry(q.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, nil, &shared.NotFoundError{Entity: "journal_entry", ID: id.String()}
		}
		return Entry{}, nil, err
	}
	lines, err := q.linesFor(ctx, id)
	if err != nil {
		return Entry{}, nil, err
	}
	return e, lines, nil
}

func (q *queries) linesFor(ctx context.Context, entryID uuid.UUID) ([]Line, error) {
	rows, err := q.db.Query(ctx, `SELECT `+lineColumns+` FROM journal_lines WHERE journal_entry_id=$1 ORDER BY line_number`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Line
	for rows.Next() {
		var l Line
		err := rows.Scan(&l.ID, &l.EntryID, &l.LineNumber, &l.AccountID, &l.Debit, &l.Credit, &l.Memo,
			&l.DepartmentID, &l.FundID, &l.CostCenter, &l.Quantity, &l.Currency, &l.ExchangeRate)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (q *queries) ListEntries(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`
	args := []any{}
	if filter.SubsidiaryID != nil {
		args = append(args, *filter.SubsidiaryID)
		query += ` AND subsidiary_id=$` + strconv.Itoa(len(args))
	}
	if filter.PeriodCode != "" {
		args = append(args, filter.PeriodCode)
		query += ` AND fiscal_period_id=(SELECT id FROM fiscal_periods WHERE code=$` + strconv.Itoa(len(args)) + `)`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status=$` + strconv.Itoa(len(args))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		query += ` AND source=$` + strconv.Itoa(len(args))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += ` AND entry_date>=$` + strconv.Itoa(len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += ` AND entry_date<=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY entry_number DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *queries) FindBySourceRef(ctx context.Context, source, ref string) (Entry, []Line, error) {
	e, err := scanEntry(q.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE source=$1 AND source_reference=$2`, source, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, nil, &shared.NotFoundError{Entity: "journal_entry", ID: source + ":" + ref}
		}
		return Entry{}, nil, err
	}
	lines, err := q.linesFor(ctx, e.ID)
	if err != nil {
		return Entry{}, nil, err
	}
	return e, lines, nil
}

// NextEntryNumber draws from a global sequence, so concurrent creates never
// collide. Gaps from rolled-back transactions are acceptable.
func (q *queries) NextEntryNumber(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT nextval('journal_entry_number_seq')`).Scan(&n)
	return n, err
}

func (q *queries) InsertEntry(ctx context.Context, e Entry) (Entry, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO journal_entries
(id, entry_number, subsidiary_id, fiscal_period_id, entry_date, memo, source, source_reference, status, posted_by, posted_at, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),$9,$10,$11,$12)
RETURNING created_at, updated_at`,
		e.ID, e.EntryNumber, e.SubsidiaryID, e.FiscalPeriodID, e.EntryDate, e.Memo, e.Source, e.SourceRef,
		e.Status, e.PostedBy, e.PostedAt, e.CreatedBy).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Entry{}, &shared.ValidationError{Field: "source_reference", Reason: "already imported"}
		}
		return Entry{}, err
	}
	return e, nil
}

func (q *queries) InsertLines(ctx context.Context, lines []Line) error {
	for _, l := range lines {
		_, err := q.db.Exec(ctx, `INSERT INTO journal_lines
(id, journal_entry_id, line_number, account_id, debit_amount, credit_amount, memo, department_id, fund_id, cost_center, quantity, currency, exchange_rate)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),$11,$12,$13)`,
			l.ID, l.EntryID, l.LineNumber, l.AccountID, l.Debit, l.Credit, l.Memo,
			l.DepartmentID, l.FundID, l.CostCenter, l.Quantity, l.Currency, l.ExchangeRate)
		if err != nil {
			return err
		}
	}
	return nil
}

func (q *queries) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, actor uuid.UUID, at time.Time) (bool, error) {
	var cmd pgconn.CommandTag
	var err error
	if to == StatusPosted {
		cmd, err = q.db.Exec(ctx, `UPDATE journal_entries SET status=$3, posted_by=$4, posted_at=$5, updated_at=$5 WHERE id=$1 AND status=$2`,
			id, from, to, actor, at)
	} else {
		cmd, err = q.db.Exec(ctx, `UPDATE journal_entries SET status=$3, updated_at=$4 WHERE id=$1 AND status=$2`,
			id, from, to, at)
	}
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (q *queries) SetReversedBy(ctx context.Context, originalID, reversalID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `UPDATE journal_entries SET reversed_by_je_id=$2 WHERE id=$1`, originalID, reversalID)
	return err
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.EntryNumber, &e.SubsidiaryID, &e.FiscalPeriodID, &e.EntryDate, &e.Memo, &e.Source,
		&e.SourceRef, &e.Status, &e.PostedBy, &e.PostedAt, &e.ReversedByID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
