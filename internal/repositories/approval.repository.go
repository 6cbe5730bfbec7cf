package repositories

import (
	"context"
	"errors"
	"time"

	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalRepository stores escalated removal requests. The partial unique
// index on (entry_id) WHERE status = 'pending' caps each entry at one open
// request; Resolve is guarded on status = 'pending' so a request resolves
// exactly once even under racing reviewers.
type ApprovalRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *ApprovalRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) (*ApprovalRequest, error)
	Resolve(ctx context.Context, tx *gorm.DB, requestID uuid.UUID, status ApprovalStatus, reviewerID uuid.UUID) (*ApprovalRequest, error)
	ListByManager(ctx context.Context, tx *gorm.DB, managerID uuid.UUID, status ApprovalStatus) ([]*ApprovalRequest, error)
	ListByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) ([]*ApprovalRequest, error)
	ListStalePending(ctx context.Context, tx *gorm.DB, olderThan time.Time) ([]*ApprovalRequest, error)
}

type approvalRepository struct {
	log logger.Logger
}

func NewApprovalRepository(db database.DB) ApprovalRepository {
	return &approvalRepository{
		log: logger.New("approvalRepository"),
	}
}

func (r *approvalRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	request *ApprovalRequest,
) error {
	log := r.log.Function("Create")

	err := gorm.G[ApprovalRequest](tx).Create(ctx, request)
	if err != nil {
		if translated := translateUniqueViolation(err); errors.Is(translated, apperrors.ErrConflict) {
			return log.ErrorWithType(
				apperrors.ErrConflict,
				"a pending request already exists for this entry",
				"entryID", request.EntryID,
			)
		}
		return log.Err(
			"failed to create approval request",
			err,
			"entryID", request.EntryID,
			"employeeID", request.EmployeeID,
		)
	}

	return nil
}

func (r *approvalRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	requestID uuid.UUID,
) (*ApprovalRequest, error) {
	log := r.log.Function("GetByID")

	request, err := gorm.G[*ApprovalRequest](tx).
		Where("id = ?", requestID).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(apperrors.ErrNotFound, "approval request not found", "requestID", requestID)
		}
		return nil, log.Err("failed to get approval request", err, "requestID", requestID)
	}

	return request, nil
}

// Resolve transitions pending to approved or denied. The WHERE guard on
// status makes the transition write-once; a second resolution attempt
// affects zero rows and surfaces InvalidState.
func (r *approvalRepository) Resolve(
	ctx context.Context,
	tx *gorm.DB,
	requestID uuid.UUID,
	status ApprovalStatus,
	reviewerID uuid.UUID,
) (*ApprovalRequest, error) {
	log := r.log.Function("Resolve")

	if status != ApprovalStatusApproved && status != ApprovalStatusDenied {
		return nil, log.ErrorWithType(
			apperrors.ErrValidation,
			"resolution status must be approved or denied",
			"status", status,
		)
	}

	now := time.Now().UTC()
	result := tx.WithContext(ctx).Model(&ApprovalRequest{}).
		Where("id = ? AND status = ?", requestID, ApprovalStatusPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return nil, log.Err("failed to resolve approval request", result.Error, "requestID", requestID)
	}
	if result.RowsAffected == 0 {
		request, err := r.GetByID(ctx, tx, requestID)
		if err != nil {
			return nil, err
		}
		return nil, log.ErrorWithType(
			apperrors.ErrInvalidState,
			"approval request already resolved",
			"requestID", requestID,
			"status", request.Status,
		)
	}

	return r.GetByID(ctx, tx, requestID)
}

func (r *approvalRepository) ListByManager(
	ctx context.Context,
	tx *gorm.DB,
	managerID uuid.UUID,
	status ApprovalStatus,
) ([]*ApprovalRequest, error) {
	log := r.log.Function("ListByManager")

	stmt := gorm.G[*ApprovalRequest](tx).
		Preload("Entry.Vehicle", nil).
		Preload("Employee", nil).
		Where("manager_id = ?", managerID)

	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	requests, err := stmt.Order("created_at DESC").Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list approval requests", err, "managerID", managerID)
	}

	return requests, nil
}

// ListStalePending returns requests still pending past the given creation
// time, oldest first, for the reminder job.
func (r *approvalRepository) ListStalePending(
	ctx context.Context,
	tx *gorm.DB,
	olderThan time.Time,
) ([]*ApprovalRequest, error) {
	log := r.log.Function("ListStalePending")

	requests, err := gorm.G[*ApprovalRequest](tx).
		Where("status = ? AND created_at < ?", ApprovalStatusPending, olderThan).
		Order("created_at ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list stale pending requests", err)
	}

	return requests, nil
}

func (r *approvalRepository) ListByEmployee(
	ctx context.Context,
	tx *gorm.DB,
	employeeID uuid.UUID,
) ([]*ApprovalRequest, error) {
	log := r.log.Function("ListByEmployee")

	requests, err := gorm.G[*ApprovalRequest](tx).
		Preload("Entry.Vehicle", nil).
		Preload("Manager", nil).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list approval requests", err, "employeeID", employeeID)
	}

	return requests, nil
}
