package models

import (
	"time"

	"github.com/google/uuid"
)

// CutoffSetting is the single global date boundary below which wash entries
// are immutable for non-privileged actors. One row; extensions move the
// boundary forward and append a CutoffAudit record.
type CutoffSetting struct {
	BaseModel
	CutoffDate time.Time `gorm:"type:date;not null" json:"cutoffDate"`
	UpdatedBy  uuid.UUID `gorm:"type:uuid;not null" json:"updatedBy"`
}

type CutoffAudit struct {
	BaseUUIDModel
	OldDate *time.Time `gorm:"type:date"          json:"oldDate,omitempty"`
	NewDate time.Time  `gorm:"type:date;not null" json:"newDate"`
	ActorID uuid.UUID  `gorm:"type:uuid;not null" json:"actorId"`
	Reason  *string    `gorm:"type:text"          json:"reason,omitempty"`
}
