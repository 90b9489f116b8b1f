package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository writes audit events to Postgres and applies retention.
type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRepository constructs a Postgres-backed audit recorder.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (r *Repository) WithNow(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Record inserts a single audit event.
func (r *Repository) Record(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = r.now()
	}
	if event.Category == "" {
		event.Category = CategoryMutation
	}
	meta, err := json.Marshal(event.Meta)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO audit_log (id, at, category, actor_id, action, entity, entity_id, meta)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		event.ID, event.At, event.Category, nullUUID(event.ActorID), event.Action, event.Entity, event.EntityID, meta)
	return err
}

// PurgeExpired removes events whose retention window has passed.
// Mutation events are never purged. Returns the number of rows deleted.
func (r *Repository) PurgeExpired(ctx context.Context) (int64, error) {
	now := r.now()
	var total int64
	for _, cat := range []Category{CategoryReadAccess, CategorySystem} {
		cutoff, ok := CutoffFor(cat, now)
		if !ok {
			continue
		}
		cmd, err := r.pool.Exec(ctx, `DELETE FROM audit_log WHERE category=$1 AND at < $2`, cat, cutoff)
		if err != nil {
			return total, err
		}
		total += cmd.RowsAffected()
	}
	return total, nil
}

func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
