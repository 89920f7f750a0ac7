package persistence

import (
	"errors"

	"github.com/shopman/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate holds a row lock until the surrounding transaction ends.
// SQLite ignores the clause; its writes are serialized by the database lock.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// translateError maps gorm errors onto domain errors.
// Duplicate keys are only recognised when the database runs with TranslateError.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}
