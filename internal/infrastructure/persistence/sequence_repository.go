package persistence

import (
	"context"
	"fmt"
	"time"

	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository allocates per-day document sequences from document_sequences.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next bumps the counter of (scope, day) and returns the new value.
// The upsert leaves the row locked until the surrounding transaction ends,
// so concurrent callers are serialized per scope and day.
func (r *GormSequenceRepository) Next(ctx context.Context, scope string, day time.Time) (int64, error) {
	key := shared.DayKey(day)
	now := time.Now()

	row := models.DocumentSequenceModel{
		Scope:     scope,
		Day:       key,
		LastValue: 1,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_value": gorm.Expr("document_sequences.last_value + 1"),
			"updated_at": now,
		}),
	}).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("bump %s sequence: %w", scope, err)
	}

	var current models.DocumentSequenceModel
	if err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("scope = ? AND day = ?", scope, key).
		Take(&current).Error; err != nil {
		return 0, fmt.Errorf("read %s sequence: %w", scope, translateError(err))
	}
	return current.LastValue, nil
}

var _ appshared.SequenceRepository = (*GormSequenceRepository)(nil)
