package services

import (
	"context"
	"encoding/json"

	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/internal/repositories"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditService records what each mutation changed. Recording is best
// effort: it writes on the main connection rather than the caller's
// transaction, and a failed write is logged and swallowed so the mutation
// it describes still lands.
type AuditService struct {
	db    database.DB
	audit repositories.AuditRepository
	log   logger.Logger
}

func NewAuditService(db database.DB, audit repositories.AuditRepository) *AuditService {
	return &AuditService{
		db:    db,
		audit: audit,
		log:   logger.New("AuditService"),
	}
}

// Record appends one trail row. oldData and newData snapshot the record
// before and after the mutation; either may be nil.
func (s *AuditService) Record(
	ctx context.Context,
	tableName string,
	recordID uuid.UUID,
	action AuditAction,
	actorID uuid.UUID,
	oldData, newData any,
) {
	log := s.log.Function("Record")

	entry := &AuditLog{
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		ActorID:   actorID,
	}

	var err error
	if entry.OldData, err = marshalSnapshot(oldData); err != nil {
		log.Warn("failed to marshal audit old data", "tableName", tableName, "recordID", recordID, "error", err)
	}
	if entry.NewData, err = marshalSnapshot(newData); err != nil {
		log.Warn("failed to marshal audit new data", "tableName", tableName, "recordID", recordID, "error", err)
	}

	if err := s.audit.Append(ctx, s.db.SQLWithContext(ctx), entry); err != nil {
		log.Warn("audit append failed, continuing", "tableName", tableName, "recordID", recordID, "error", err)
	}
}

func marshalSnapshot(data any) (datatypes.JSON, error) {
	if data == nil {
		return nil, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(raw), nil
}
