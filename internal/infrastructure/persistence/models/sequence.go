package models

import "time"

// DocumentSequenceModel is the per-day counter behind human-readable document numbers.
type DocumentSequenceModel struct {
	Scope     string    `gorm:"type:varchar(50);primaryKey"`
	Day       string    `gorm:"type:varchar(10);primaryKey"`
	LastValue int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
