package accounts

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// ListFilter narrows account listings.
type ListFilter struct {
	Type     AccountType
	IsActive *bool
}

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Account, error)
	Get(ctx context.Context, id uuid.UUID) (Account, error)
	Insert(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed account repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, account_number, name, account_type, normal_balance, parent_id, fund_id, description, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	args := []any{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND account_type=$` + strconv.Itoa(len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += ` AND is_active=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY account_number`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, &shared.NotFoundError{Entity: "account", ID: id.String()}
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (id, account_number, name, account_type, normal_balance, parent_id, fund_id, description, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true) RETURNING created_at, updated_at`,
		a.ID, a.Number, a.Name, a.Type, a.NormalBalance, a.ParentID, a.FundID, a.Description)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, &shared.ValidationError{Field: "account_number", Reason: "already in use"}
		}
		return Account{}, err
	}
	a.IsActive = true
	return a, nil
}

func (r *repository) Update(ctx context.Context, a Account) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET name=$2, description=$3, fund_id=$4, is_active=$5, updated_at=NOW() WHERE id=$1`,
		a.ID, a.Name, a.Description, a.FundID, a.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &shared.NotFoundError{Entity: "account", ID: a.ID.String()}
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Number, &a.Name, &a.Type, &a.NormalBalance, &a.ParentID, &a.FundID, &a.Description, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
