package models

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusDenied   ApprovalStatus = "denied"
)

// ApprovalRequest routes a retroactive wash-entry removal to the
// requester's manager. Status is write-once: pending resolves to approved
// or denied exactly once and never reopens.
type ApprovalRequest struct {
	BaseUUIDModel
	EntryID    uuid.UUID      `gorm:"type:uuid;not null;index"            json:"entryId"`
	Entry      WashEntry      `gorm:"foreignKey:EntryID"                  json:"entry"`
	EmployeeID uuid.UUID      `gorm:"type:uuid;not null;index"            json:"employeeId"`
	Employee   User           `gorm:"foreignKey:EmployeeID"               json:"employee"`
	ManagerID  uuid.UUID      `gorm:"type:uuid;not null;index"            json:"managerId"`
	Manager    User           `gorm:"foreignKey:ManagerID"                json:"manager"`
	Reason     string         `gorm:"type:text;not null"                  json:"reason"`
	Status     ApprovalStatus `gorm:"type:text;not null;default:pending;index" json:"status"`
	ReviewedBy *uuid.UUID     `gorm:"type:uuid"                           json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time     `gorm:"type:timestamp"                      json:"reviewedAt,omitempty"`
}

// IsResolved reports whether the request reached a terminal status.
func (r *ApprovalRequest) IsResolved() bool {
	return r.Status == ApprovalStatusApproved || r.Status == ApprovalStatusDenied
}
