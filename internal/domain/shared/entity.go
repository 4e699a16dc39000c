package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and audit header of every stored record.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh id and stamps both timestamps with now.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// GetID returns the record id.
func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// Touch records a modification.
func (e *BaseEntity) Touch() { e.UpdatedAt = time.Now() }
