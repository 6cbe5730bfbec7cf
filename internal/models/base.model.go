package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseUUIDModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime"       json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"       json:"updatedAt"`
}

// IDs are time-ordered v7 UUIDs, generated application-side so the same
// models work against postgres and the sqlite test driver.
func (b *BaseUUIDModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	return nil
}

type BaseModel struct {
	ID        int       `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime"                    json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"                    json:"updatedAt"`
}
