package adminController

import (
	"context"

	"fleetwash/config"
	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/internal/repositories"
	"fleetwash/internal/roles"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
)

type AuditTrailRequest struct {
	TableName string     `json:"tableName,omitempty"`
	RecordID  *uuid.UUID `json:"recordId,omitempty"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
	Limit     int        `json:"limit,omitempty"`
}

type AdminControllerInterface interface {
	GetAuditTrail(ctx context.Context, user *User, request *AuditTrailRequest) ([]*AuditLog, error)
}

type AdminController struct {
	auditRepo repositories.AuditRepository
	db        database.DB
	Config    config.Config
}

func New(
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) AdminControllerInterface {
	return &AdminController{
		auditRepo: repos.Audit,
		db:        db,
		Config:    config,
	}
}

func (c *AdminController) GetAuditTrail(
	ctx context.Context,
	user *User,
	request *AuditTrailRequest,
) ([]*AuditLog, error) {
	log := logger.NewWithContext(ctx, "adminController").Function("GetAuditTrail")

	if !roles.HasRoleOrHigher(user.Role, roles.Admin) {
		return nil, log.ErrorWithType(apperrors.ErrPermission, "admin role required")
	}

	return c.auditRepo.List(ctx, c.db.SQL, repositories.AuditQuery{
		TableName: request.TableName,
		RecordID:  request.RecordID,
		ActorID:   request.ActorID,
		Limit:     request.Limit,
	})
}
