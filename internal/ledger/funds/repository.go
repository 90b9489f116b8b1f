package funds

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Repository encapsulates DB operations for funds.
type Repository interface {
	ListActive(ctx context.Context) ([]Fund, error)
	Get(ctx context.Context, id uuid.UUID) (Fund, error)
	Insert(ctx context.Context, f Fund) (Fund, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed fund repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]Fund, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, fund_type, description, is_active, created_at FROM funds WHERE is_active ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Fund
	for rows.Next() {
		var f Fund
		if err := rows.Scan(&f.ID, &f.Code, &f.Name, &f.Type, &f.Description, &f.IsActive, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Fund, error) {
	var f Fund
	err := r.db.QueryRow(ctx, `SELECT id, code, name, fund_type, description, is_active, created_at FROM funds WHERE id=$1`, id).
		Scan(&f.ID, &f.Code, &f.Name, &f.Type, &f.Description, &f.IsActive, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Fund{}, &shared.NotFoundError{Entity: "fund", ID: id.String()}
		}
		return Fund{}, err
	}
	return f, nil
}

func (r *repository) Insert(ctx context.Context, f Fund) (Fund, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO funds (id, code, name, fund_type, description, is_active)
VALUES ($1,$2,$3,$4,$5,true) RETURNING created_at`, f.ID, f.Code, f.Name, f.Type, f.Description).Scan(&f.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Fund{}, &shared.ValidationError{Field: "code", Reason: "already in use"}
		}
		return Fund{}, err
	}
	f.IsActive = true
	return f, nil
}
