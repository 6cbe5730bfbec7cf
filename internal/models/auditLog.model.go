package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditActionInsert AuditAction = "INSERT"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// AuditLog is the append-only trail behind every ledger and approval
// mutation. Rows are written after the primary write commits and are never
// updated or deleted by this service.
type AuditLog struct {
	BaseUUIDModel
	TableName string         `gorm:"type:text;not null;index:idx_audit_logs_table_record" json:"tableName"`
	RecordID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_logs_table_record" json:"recordId"`
	Action    AuditAction    `gorm:"type:text;not null"                                   json:"action"`
	OldData   datatypes.JSON `gorm:"type:jsonb"                                           json:"oldData,omitempty"`
	NewData   datatypes.JSON `gorm:"type:jsonb"                                           json:"newData,omitempty"`
	ActorID   uuid.UUID      `gorm:"type:uuid;not null;index"                             json:"actorId"`
}
