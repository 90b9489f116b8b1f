package org

import (
	"time"

	"github.com/google/uuid"
)

// Subsidiary is a legal entity holding its own ledger. Every journal entry
// belongs to exactly one subsidiary.
type Subsidiary struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Currency  string
	ParentID  *uuid.UUID
	IsActive  bool
	CreatedAt time.Time
}

// Department is an optional analysis dimension on journal lines.
type Department struct {
	ID           uuid.UUID
	SubsidiaryID uuid.UUID
	Code         string
	Name         string
	IsActive     bool
	CreatedAt    time.Time
}
