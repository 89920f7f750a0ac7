package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and audit header of every ledger row
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh id with CreatedAt == UpdatedAt
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) touch() {
	e.UpdatedAt = time.Now()
}
