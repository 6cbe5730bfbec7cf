package repositories

import (
	"context"

	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditQuery filters trail reads for the admin surface.
type AuditQuery struct {
	TableName string
	RecordID  *uuid.UUID
	ActorID   *uuid.UUID
	Limit     int
}

// AuditRepository is append-only. Rows record what every ledger and
// approval mutation changed; nothing in this service updates or deletes
// them.
type AuditRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, tx *gorm.DB, query AuditQuery) ([]*AuditLog, error)
}

type auditRepository struct {
	log logger.Logger
}

func NewAuditRepository(db database.DB) AuditRepository {
	return &auditRepository{
		log: logger.New("auditRepository"),
	}
}

func (r *auditRepository) Append(ctx context.Context, tx *gorm.DB, entry *AuditLog) error {
	log := r.log.Function("Append")

	if err := gorm.G[AuditLog](tx).Create(ctx, entry); err != nil {
		return log.Err(
			"failed to append audit log",
			err,
			"tableName", entry.TableName,
			"recordID", entry.RecordID,
			"action", entry.Action,
		)
	}

	return nil
}

func (r *auditRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	query AuditQuery,
) ([]*AuditLog, error) {
	log := r.log.Function("List")

	stmt := tx.WithContext(ctx).Model(&AuditLog{})

	if query.TableName != "" {
		stmt = stmt.Where("table_name = ?", query.TableName)
	}
	if query.RecordID != nil {
		stmt = stmt.Where("record_id = ?", *query.RecordID)
	}
	if query.ActorID != nil {
		stmt = stmt.Where("actor_id = ?", *query.ActorID)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	var entries []*AuditLog
	if err := stmt.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, log.Err("failed to list audit logs", err)
	}

	return entries, nil
}
