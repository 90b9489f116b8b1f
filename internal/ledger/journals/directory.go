package journals

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Directory answers "does this reference resolve" questions during entry
// validation. Active status is deliberately not checked here; deactivation
// never retroactively invalidates references.
type Directory interface {
	SubsidiaryExists(ctx context.Context, id uuid.UUID) error
	AccountExists(ctx context.Context, id uuid.UUID) error
	FundExists(ctx context.Context, id uuid.UUID) error
	DepartmentExists(ctx context.Context, id uuid.UUID) error
}

type pgDirectory struct {
	db *pgxpool.Pool
}

// NewDirectory constructs the pgx-backed reference directory.
func NewDirectory(db *pgxpool.Pool) Directory {
	return &pgDirectory{db: db}
}

func (d *pgDirectory) SubsidiaryExists(ctx context.Context, id uuid.UUID) error {
	return d.exists(ctx, `SELECT EXISTS(SELECT 1 FROM subsidiaries WHERE id=$1)`, "subsidiary", id)
}

func (d *pgDirectory) AccountExists(ctx context.Context, id uuid.UUID) error {
	return d.exists(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id=$1)`, "account", id)
}

func (d *pgDirectory) FundExists(ctx context.Context, id uuid.UUID) error {
	return d.exists(ctx, `SELECT EXISTS(SELECT 1 FROM funds WHERE id=$1)`, "fund", id)
}

func (d *pgDirectory) DepartmentExists(ctx context.Context, id uuid.UUID) error {
	return d.exists(ctx, `SELECT EXISTS(SELECT 1 FROM departments WHERE id=$1)`, "department", id)
}

func (d *pgDirectory) exists(ctx context.Context, query, entity string, id uuid.UUID) error {
	var ok bool
	if err := d.db.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return &shared.NotFoundError{Entity: entity, ID: id.String()}
	}
	return nil
}
