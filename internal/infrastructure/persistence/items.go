package persistence

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncItems makes the stored child rows of an aggregate match items:
// rows whose id is missing from ids are deleted, the rest are upserted.
func syncItems[M any](tx *gorm.DB, parentColumn string, parentID uuid.UUID, ids []uuid.UUID, items []M) error {
	var model M
	query := tx.Where(parentColumn+" = ?", parentID)
	if len(ids) > 0 {
		query = query.Where("id NOT IN ?", ids)
	}
	if err := query.Delete(&model).Error; err != nil {
		return err
	}
	for i := range items {
		if err := tx.Save(&items[i]).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}

// orderedItems preloads child rows oldest first
func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// claimedRow is one line of a per-item quantity aggregate
type claimedRow struct {
	ItemID   uuid.UUID
	Quantity int64
}

func claimedMap(rows []claimedRow) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		out[r.ItemID] = int(r.Quantity)
	}
	return out
}
