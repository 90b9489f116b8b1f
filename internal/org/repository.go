package org

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Repository encapsulates DB operations for subsidiaries and departments.
type Repository interface {
	ListSubsidiaries(ctx context.Context) ([]Subsidiary, error)
	GetSubsidiary(ctx context.Context, id uuid.UUID) (Subsidiary, error)
	InsertSubsidiary(ctx context.Context, s Subsidiary) (Subsidiary, error)

	ListDepartments(ctx context.Context, subsidiaryID uuid.UUID) ([]Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (Department, error)
	InsertDepartment(ctx context.Context, d Department) (Department, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed org repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListSubsidiaries(ctx context.Context) ([]Subsidiary, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, currency, parent_id, is_active, created_at FROM subsidiaries WHERE is_active ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subsidiary
	for rows.Next() {
		var s Subsidiary
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Currency, &s.ParentID, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) GetSubsidiary(ctx context.Context, id uuid.UUID) (Subsidiary, error) {
	var s Subsidiary
	err := r.db.QueryRow(ctx, `SELECT id, code, name, currency, parent_id, is_active, created_at FROM subsidiaries WHERE id=$1`, id).
		Scan(&s.ID, &s.Code, &s.Name, &s.Currency, &s.ParentID, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subsidiary{}, &shared.NotFoundError{Entity: "subsidiary", ID: id.String()}
		}
		return Subsidiary{}, err
	}
	return s, nil
}

func (r *repository) InsertSubsidiary(ctx context.Context, s Subsidiary) (Subsidiary, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO subsidiaries (id, code, name, currency, parent_id, is_active)
VALUES ($1,$2,$3,$4,$5,true) RETURNING created_at`, s.ID, s.Code, s.Name, s.Currency, s.ParentID).Scan(&s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Subsidiary{}, &shared.ValidationError{Field: "code", Reason: "already in use"}
		}
		return Subsidiary{}, err
	}
	s.IsActive = true
	return s, nil
}

func (r *repository) ListDepartments(ctx context.Context, subsidiaryID uuid.UUID) ([]Department, error) {
	rows, err := r.db.Query(ctx, `SELECT id, subsidiary_id, code, name, is_active, created_at FROM departments WHERE subsidiary_id=$1 AND is_active ORDER BY code`, subsidiaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.SubsidiaryID, &d.Code, &d.Name, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) GetDepartment(ctx context.Context, id uuid.UUID) (Department, error) {
	var d Department
	err := r.db.QueryRow(ctx, `SELECT id, subsidiary_id, code, name, is_active, created_at FROM departments WHERE id=$1`, id).
		Scan(&d.ID, &d.SubsidiaryID, &d.Code, &d.Name, &d.IsActive, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, &shared.NotFoundError{Entity: "department", ID: id.String()}
		}
		return Department{}, err
	}
	return d, nil
}

func (r *repository) InsertDepartment(ctx context.Context, d Department) (Department, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO departments (id, subsidiary_id, code, name, is_active)
VALUES ($1,$2,$3,$4,true) RETURNING created_at`, d.ID, d.SubsidiaryID, d.Code, d.Name).Scan(&d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Department{}, &shared.ValidationError{Field: "code", Reason: "already in use for subsidiary"}
		}
		return Department{}, err
	}
	d.IsActive = true
	return d, nil
}
