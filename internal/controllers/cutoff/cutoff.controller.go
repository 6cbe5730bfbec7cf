package cutoffController

import (
	"context"
	"time"

	"fleetwash/config"
	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"
	"fleetwash/internal/events"
	. "fleetwash/internal/models"
	"fleetwash/internal/repositories"
	"fleetwash/internal/roles"
	"fleetwash/internal/services"
	"fleetwash/internal/utils"
	"fleetwash/pkg/logger"

	"gorm.io/gorm"
)

const MaxExtensionDays = 90

type UpdateCutoffRequest struct {
	// ExtendDays moves the current boundary forward; NewDate sets it
	// outright. Exactly one must be provided.
	ExtendDays *int    `json:"extendDays,omitempty"`
	NewDate    *string `json:"newDate,omitempty"`
	Reason     *string `json:"reason,omitempty"`
}

type CutoffResponse struct {
	CutoffDate *string `json:"cutoffDate"`
}

type CutoffControllerInterface interface {
	GetCurrent(ctx context.Context, user *User) (*CutoffResponse, error)
	Update(ctx context.Context, user *User, request *UpdateCutoffRequest) (*CutoffResponse, error)
	History(ctx context.Context, user *User, limit int) ([]*CutoffAudit, error)
}

type CutoffController struct {
	cutoffRepo         repositories.CutoffRepository
	transactionService *services.TransactionService
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
) CutoffControllerInterface {
	return &CutoffController{
		cutoffRepo:         repos.Cutoff,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
	}
}

func (c *CutoffController) GetCurrent(ctx context.Context, user *User) (*CutoffResponse, error) {
	setting, err := c.cutoffRepo.Get(ctx, c.db.SQL)
	if err != nil {
		return nil, err
	}

	response := &CutoffResponse{}
	if setting != nil {
		formatted := utils.FormatServiceDate(setting.CutoffDate)
		response.CutoffDate = &formatted
	}

	return response, nil
}

// Update moves the cutoff boundary. Manager or above only; the setting and
// its history row commit together.
func (c *CutoffController) Update(
	ctx context.Context,
	user *User,
	request *UpdateCutoffRequest,
) (*CutoffResponse, error) {
	log := logger.NewWithContext(ctx, "cutoffController").Function("Update")

	if !roles.HasRoleOrHigher(user.Role, roles.Manager) {
		return nil, log.ErrorWithType(apperrors.ErrPermission, "manager role required")
	}

	newDate, err := c.resolveNewDate(ctx, log, request)
	if err != nil {
		return nil, err
	}

	var saved *CutoffSetting
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		saved, err = c.cutoffRepo.Save(ctx, tx, newDate, user.ID, request.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	// CutoffAudit is the dedicated history table; Save already appended the
	// row inside the transaction.
	formatted := utils.FormatServiceDate(saved.CutoffDate)
	if err := c.eventBus.PublishCutoffChanged(formatted, user.ID); err != nil {
		log.Warn("failed to publish cutoff event", "error", err)
	}

	log.Info("Cutoff boundary updated", "cutoffDate", formatted)

	return &CutoffResponse{CutoffDate: &formatted}, nil
}

func (c *CutoffController) resolveNewDate(
	ctx context.Context,
	log logger.Logger,
	request *UpdateCutoffRequest,
) (time.Time, error) {
	if (request.ExtendDays == nil) == (request.NewDate == nil) {
		return time.Time{}, log.ErrorWithType(
			apperrors.ErrValidation,
			"exactly one of extendDays or newDate is required",
		)
	}

	if request.NewDate != nil {
		newDate, err := utils.ParseServiceDate(*request.NewDate)
		if err != nil {
			return time.Time{}, log.ErrorWithType(apperrors.ErrValidation, "invalid newDate", "error", err)
		}
		return newDate, nil
	}

	days := *request.ExtendDays
	if days <= 0 || days > MaxExtensionDays {
		return time.Time{}, log.ErrorWithType(
			apperrors.ErrValidation,
			"extendDays out of range",
			"extendDays", days,
			"max", MaxExtensionDays,
		)
	}

	current, err := c.cutoffRepo.Get(ctx, c.db.SQL)
	if err != nil {
		return time.Time{}, err
	}
	if current == nil {
		return time.Time{}, log.ErrorWithType(
			apperrors.ErrInvalidState,
			"no cutoff is configured to extend",
		)
	}

	return current.CutoffDate.AddDate(0, 0, days), nil
}

func (c *CutoffController) History(
	ctx context.Context,
	user *User,
	limit int,
) ([]*CutoffAudit, error) {
	log := logger.NewWithContext(ctx, "cutoffController").Function("History")

	if !roles.HasRoleOrHigher(user.Role, roles.Manager) {
		return nil, log.ErrorWithType(apperrors.ErrPermission, "manager role required")
	}

	if limit <= 0 || limit > 100 {
		limit = 25
	}

	return c.cutoffRepo.History(ctx, c.db.SQL, limit)
}
