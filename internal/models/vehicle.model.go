package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleType struct {
	BaseUUIDModel
	Name string `gorm:"type:text;not null;uniqueIndex" json:"name"`
}

// Vehicle is catalog data. The wash ledger reads it and updates the
// last-seen fields as a best-effort side effect of entry creation; catalog
// management itself lives outside this service.
type Vehicle struct {
	BaseUUIDModel
	Number             string       `gorm:"type:text;not null;uniqueIndex" json:"number"`
	TypeID             uuid.UUID    `gorm:"type:uuid;not null"             json:"typeId"`
	Type               VehicleType  `gorm:"foreignKey:TypeID"              json:"type"`
	HomeLocationID     uuid.UUID    `gorm:"type:uuid;not null;index"       json:"homeLocationId"`
	HomeLocation       Location     `gorm:"foreignKey:HomeLocationID"      json:"homeLocation"`
	ClientID           *uuid.UUID   `gorm:"type:uuid"                      json:"clientId,omitempty"`
	Client             *Client      `gorm:"foreignKey:ClientID"            json:"client,omitempty"`
	IsActive           bool         `gorm:"type:bool;default:true"         json:"isActive"`
	LastSeenLocationID *uuid.UUID   `gorm:"type:uuid"                      json:"lastSeenLocationId,omitempty"`
	LastSeenDate       *time.Time   `gorm:"type:date"                      json:"lastSeenDate,omitempty"`
}

// Vehicle numbers are stored normalized so the unique index catches
// case-variant duplicates.
func (v *Vehicle) BeforeSave(tx *gorm.DB) error {
	v.Number = NormalizeVehicleNumber(v.Number)
	return nil
}

func NormalizeVehicleNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}
