package subsystems

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// MappingRepository encapsulates DB operations for account-code mappings.
type MappingRepository interface {
	List(ctx context.Context, source string) ([]Mapping, error)
	Upsert(ctx context.Context, m Mapping) (Mapping, error)
	// ResolveCodes maps subsystem account codes to ledger account ids.
	// Codes absent from the result simply have no mapping.
	ResolveCodes(ctx context.Context, source string, codes []string) (map[string]uuid.UUID, error)
}

type mappingRepository struct {
	db *pgxpool.Pool
}

// NewMappingRepository constructs the pgx-backed mapping repository.
func NewMappingRepository(db *pgxpool.Pool) MappingRepository {
	return &mappingRepository{db: db}
}

func (r *mappingRepository) List(ctx context.Context, source string) ([]Mapping, error) {
	rows, err := r.db.Query(ctx, `SELECT id, source, external_code, account_id, created_at
FROM subsystem_account_mappings WHERE source=$1 ORDER BY external_code`, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ID, &m.Source, &m.ExternalCode, &m.AccountID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *mappingRepository) Upsert(ctx context.Context, m Mapping) (Mapping, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO subsystem_account_mappings (id, source, external_code, account_id)
VALUES ($1,$2,$3,$4)
ON CONFLICT (source, external_code) DO UPDATE SET account_id=EXCLUDED.account_id
RETURNING id, created_at`, m.ID, m.Source, m.ExternalCode, m.AccountID).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Mapping{}, &shared.NotFoundError{Entity: "account", ID: m.AccountID.String()}
		}
		return Mapping{}, err
	}
	return m, nil
}

func (r *mappingRepository) ResolveCodes(ctx context.Context, source string, codes []string) (map[string]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT external_code, account_id FROM subsystem_account_mappings
WHERE source=$1 AND external_code=ANY($2)`, source, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]uuid.UUID, len(codes))
	for rows.Next() {
		var code string
		var id uuid.UUID
		if err := rows.Scan(&code, &id); err != nil {
			return nil, err
		}
		out[code] = id
	}
	return out, rows.Err()
}
