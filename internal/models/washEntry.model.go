package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WashEntry records one vehicle serviced at one location on one calendar
// day. At most one non-deleted entry may exist per (vehicle, service date);
// the partial unique index on (vehicle_id, service_date) WHERE deleted_at IS
// NULL is the authoritative guard, see cmd/migration.
//
// Deletion is always soft. A deleted entry stays addressable by id so undo
// and approval-denial reversal can restore it.
type WashEntry struct {
	BaseUUIDModel
	VehicleID      uuid.UUID           `gorm:"type:uuid;not null;index:idx_wash_entries_vehicle_date" json:"vehicleId"`
	Vehicle        Vehicle             `gorm:"foreignKey:VehicleID"                                   json:"vehicle"`
	ServiceDate    time.Time           `gorm:"type:date;not null;index:idx_wash_entries_vehicle_date" json:"serviceDate"`
	LocationID     uuid.UUID           `gorm:"type:uuid;not null;index"                               json:"locationId"`
	Location       Location            `gorm:"foreignKey:LocationID"                                  json:"location"`
	EmployeeID     uuid.UUID           `gorm:"type:uuid;not null;index"                               json:"employeeId"`
	Employee       User                `gorm:"foreignKey:EmployeeID"                                  json:"employee"`
	RateOverride   decimal.NullDecimal `gorm:"type:numeric(10,2)"                                     json:"rateOverride"`
	Comment        string              `gorm:"type:text"                                              json:"comment"`
	DeletedAt      *time.Time          `gorm:"type:timestamp;index"                                   json:"deletedAt,omitempty"`
	DeletedBy      *uuid.UUID          `gorm:"type:uuid"                                              json:"deletedBy,omitempty"`
	DeletionReason *string             `gorm:"type:text"                                              json:"deletionReason,omitempty"`
}

// IsDeleted reports whether the entry has been soft-deleted.
func (e *WashEntry) IsDeleted() bool {
	return e.DeletedAt != nil
}

// OwnedBy reports whether the given employee created this entry.
func (e *WashEntry) OwnedBy(employeeID uuid.UUID) bool {
	return e.EmployeeID == employeeID
}

// EntryStatus filters ledger queries.
type EntryStatus string

const (
	EntryStatusActive  EntryStatus = "active"
	EntryStatusDeleted EntryStatus = "deleted"
	EntryStatusAll     EntryStatus = "all"
)
