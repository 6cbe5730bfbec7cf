package approvalsController

import (
	"context"

	"fleetwash/config"
	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"
	"fleetwash/internal/events"
	. "fleetwash/internal/models"
	"fleetwash/internal/repositories"
	"fleetwash/internal/roles"
	"fleetwash/internal/services"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResolveRequest struct {
	Approve bool `json:"approve"`
}

type ApprovalsControllerInterface interface {
	Resolve(ctx context.Context, user *User, requestID uuid.UUID, request *ResolveRequest) (*ApprovalRequest, error)
	ListForManager(ctx context.Context, user *User, status ApprovalStatus) ([]*ApprovalRequest, error)
	ListForEmployee(ctx context.Context, user *User) ([]*ApprovalRequest, error)
}

type ApprovalsController struct {
	approvalRepo       repositories.ApprovalRepository
	entryRepo          repositories.EntryRepository
	transactionService *services.TransactionService
	auditService       *services.AuditService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) ApprovalsControllerInterface {
	return &ApprovalsController{
		approvalRepo:       repos.Approval,
		entryRepo:          repos.Entry,
		transactionService: services.Transaction,
		auditService:       services.Audit,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
	}
}

// Resolve records the manager's verdict. Approval executes the removal the
// employee asked for; denial leaves the ledger untouched. Both the status
// transition and the ledger write land in one transaction so a crash cannot
// strand an approved request with its entry still active.
func (c *ApprovalsController) Resolve(
	ctx context.Context,
	user *User,
	requestID uuid.UUID,
	request *ResolveRequest,
) (*ApprovalRequest, error) {
	log := logger.NewWithContext(ctx, "approvalsController").Function("Resolve")

	if requestID == uuid.Nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "requestId is required")
	}

	approval, err := c.approvalRepo.GetByID(ctx, c.db.SQL, requestID)
	if err != nil {
		return nil, err
	}

	if err := c.authorizeReviewer(log, user, approval); err != nil {
		return nil, err
	}

	status := ApprovalStatusDenied
	if request.Approve {
		status = ApprovalStatusApproved
	}

	before := *approval
	var resolved *ApprovalRequest
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		resolved, err = c.approvalRepo.Resolve(ctx, tx, requestID, status, user.ID)
		if err != nil {
			return err
		}

		if status == ApprovalStatusApproved {
			reason := approval.Reason
			if _, err := c.entryRepo.SoftDelete(ctx, tx, approval.EntryID, approval.EmployeeID, &reason); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	c.auditService.Record(ctx, "approval_requests", approval.ID, AuditActionUpdate, user.ID, &before, resolved)
	if err := c.eventBus.PublishApprovalEvent(
		events.APPROVAL_RESOLVED,
		approval.ID,
		approval.EmployeeID,
		string(status),
	); err != nil {
		log.Warn("failed to publish approval event", "requestID", approval.ID, "error", err)
	}

	log.Info("Approval request resolved", "requestID", approval.ID, "status", status)

	return resolved, nil
}

// authorizeReviewer admits the assigned manager, or any admin stepping in
// for them. The requesting employee can never rule on their own request.
func (c *ApprovalsController) authorizeReviewer(
	log logger.Logger,
	user *User,
	approval *ApprovalRequest,
) error {
	if user.ID == approval.EmployeeID {
		return log.ErrorWithType(
			apperrors.ErrPermission,
			"cannot resolve your own request",
			"requestID", approval.ID,
		)
	}
	if user.ID == approval.ManagerID {
		return nil
	}
	if roles.HasRoleOrHigher(user.Role, roles.Admin) {
		return nil
	}

	return log.ErrorWithType(
		apperrors.ErrPermission,
		"request is assigned to another manager",
		"requestID", approval.ID,
		"managerID", approval.ManagerID,
	)
}

func (c *ApprovalsController) ListForManager(
	ctx context.Context,
	user *User,
	status ApprovalStatus,
) ([]*ApprovalRequest, error) {
	log := logger.NewWithContext(ctx, "approvalsController").Function("ListForManager")

	if !roles.HasRoleOrHigher(user.Role, roles.Manager) {
		return nil, log.ErrorWithType(apperrors.ErrPermission, "manager role required")
	}

	return c.approvalRepo.ListByManager(ctx, c.db.SQL, user.ID, status)
}

func (c *ApprovalsController) ListForEmployee(
	ctx context.Context,
	user *User,
) ([]*ApprovalRequest, error) {
	return c.approvalRepo.ListByEmployee(ctx, c.db.SQL, user.ID)
}
