package entriesController

import (
	"context"
	"time"

	"fleetwash/config"
	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"
	"fleetwash/internal/events"
	. "fleetwash/internal/models"
	"fleetwash/internal/policy"
	"fleetwash/internal/repositories"
	"fleetwash/internal/services"
	"fleetwash/internal/utils"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const MaxCommentLength = 1000

type CreateEntryRequest struct {
	VehicleID    uuid.UUID           `json:"vehicleId"`
	LocationID   uuid.UUID           `json:"locationId"`
	ServiceDate  string              `json:"serviceDate"`
	RateOverride decimal.NullDecimal `json:"rateOverride"`
	Comment      string              `json:"comment,omitempty"`
}

type RemoveEntryRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RemoveEntryResult reports what the removal attempt produced: the removed
// entry when it executed directly, or the approval request when it escalated.
type RemoveEntryResult struct {
	Entry   *WashEntry       `json:"entry,omitempty"`
	Request *ApprovalRequest `json:"request,omitempty"`
}

// Escalated reports whether the removal went to a manager instead of
// executing.
func (r *RemoveEntryResult) Escalated() bool {
	return r.Request != nil
}

type QueryEntriesRequest struct {
	From        string      `json:"from,omitempty"`
	To          string      `json:"to,omitempty"`
	LocationIDs []uuid.UUID `json:"locationIds,omitempty"`
	VehicleID   *uuid.UUID  `json:"vehicleId,omitempty"`
	Status      EntryStatus `json:"status,omitempty"`
}

// DayBoard is everything a client needs to render one location's tile grid
// for one day: the vehicle catalog, the active entries, and whether the day
// sits behind the cutoff for the requesting user.
type DayBoard struct {
	LocationID  uuid.UUID    `json:"locationId"`
	ServiceDate string       `json:"serviceDate"`
	Vehicles    []*Vehicle   `json:"vehicles"`
	Entries     []*WashEntry `json:"entries"`
	Locked      bool         `json:"locked"`
	// UndoWindowSeconds is how long clients keep the undo control visible
	// after an action. Undo eligibility itself lasts until the slot is
	// overwritten or the board refreshes.
	UndoWindowSeconds int `json:"undoWindowSeconds"`
}

type EntriesControllerInterface interface {
	CreateEntry(ctx context.Context, user *User, request *CreateEntryRequest) (*WashEntry, error)
	RemoveEntry(ctx context.Context, user *User, entryID uuid.UUID, request *RemoveEntryRequest) (*RemoveEntryResult, error)
	RestoreEntry(ctx context.Context, user *User, entryID uuid.UUID) (*WashEntry, error)
	GetDayBoard(ctx context.Context, user *User, locationID uuid.UUID, date string) (*DayBoard, error)
	QueryEntries(ctx context.Context, user *User, request *QueryEntriesRequest) ([]*WashEntry, error)
}

type EntriesController struct {
	entryRepo          repositories.EntryRepository
	vehicleRepo        repositories.VehicleRepository
	userRepo           repositories.UserRepository
	approvalRepo       repositories.ApprovalRepository
	cutoffRepo         repositories.CutoffRepository
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
) EntriesControllerInterface {
	return &EntriesController{
		entryRepo:          repos.Entry,
		vehicleRepo:        repos.Vehicle,
		userRepo:           repos.User,
		approvalRepo:       repos.Approval,
		cutoffRepo:         repos.Cutoff,
		transactionService: services.Transaction,
		auditService:       services.Audit,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
	}
}

// CreateEntry records a wash. The decision runs through the policy package
// first; the ledger's unique index is the backstop for anything two racing
// requests slip past it.
func (c *EntriesController) CreateEntry(
	ctx context.Context,
	user *User,
	request *CreateEntryRequest,
) (*WashEntry, error) {
	log := logger.NewWithContext(ctx, "entriesController").Function("CreateEntry")

	if request.VehicleID == uuid.Nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "vehicleId is required")
	}
	if request.LocationID == uuid.Nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "locationId is required")
	}
	if len(request.Comment) > MaxCommentLength {
		return nil, log.ErrorWithType(
			apperrors.ErrValidation,
			"comment exceeds maximum length",
			"length", len(request.Comment),
			"max", MaxCommentLength,
		)
	}

	serviceDate, err := utils.ParseServiceDate(request.ServiceDate)
	if err != nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "invalid serviceDate", "error", err)
	}
	if serviceDate.After(utils.Today()) {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "serviceDate cannot be in the future")
	}

	vehicle, err := c.vehicleRepo.GetByID(ctx, c.db.SQL, request.VehicleID)
	if err != nil {
		return nil, err
	}

	decision, err := c.decide(ctx, policy.ActionAdd, user, vehicle.ID, serviceDate, nil)
	if err != nil {
		return nil, err
	}
	if err := c.rejectUnlessAllowed(log, decision); err != nil {
		return nil, err
	}

	entry := &WashEntry{
		VehicleID:    vehicle.ID,
		ServiceDate:  serviceDate,
		LocationID:   request.LocationID,
		EmployeeID:   user.ID,
		RateOverride: request.RateOverride,
		Comment:      request.Comment,
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.entryRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	// Side effects ride behind the committed write and never undo it.
	if err := c.vehicleRepo.UpdateLastSeen(ctx, c.db.SQL, vehicle.ID, request.LocationID, serviceDate); err != nil {
		log.Warn("failed to update vehicle last seen", "vehicleID", vehicle.ID, "error", err)
	}
	c.auditService.Record(ctx, "wash_entries", entry.ID, AuditActionInsert, user.ID, nil, entry)
	c.publishEntryEvent(log, events.ENTRY_CREATED, entry)

	log.Info("Wash entry created", "entryID", entry.ID, "vehicleID", vehicle.ID, "serviceDate", request.ServiceDate)

	return entry, nil
}

// RemoveEntry executes a same-day removal directly and escalates a
// retroactive one to the employee's manager.
func (c *EntriesController) RemoveEntry(
	ctx context.Context,
	user *User,
	entryID uuid.UUID,
	request *RemoveEntryRequest,
) (*RemoveEntryResult, error) {
	log := logger.NewWithContext(ctx, "entriesController").Function("RemoveEntry")

	if entryID == uuid.Nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "entryId is required")
	}

	entry, err := c.entryRepo.GetByID(ctx, c.db.SQL, entryID)
	if err != nil {
		return nil, err
	}

	decision, err := c.decide(ctx, policy.ActionRemove, user, entry.VehicleID, entry.ServiceDate, entry)
	if err != nil {
		return nil, err
	}

	if decision.Outcome == policy.OutcomeRequiresApproval {
		return c.escalateRemoval(ctx, user, entry, request.Reason)
	}

	if err := c.rejectUnlessAllowed(log, decision); err != nil {
		return nil, err
	}

	before := *entry
	var removed *WashEntry
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var reason *string
		if request.Reason != "" {
			reason = &request.Reason
		}
		removed, err = c.entryRepo.SoftDelete(ctx, tx, entryID, user.ID, reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.auditService.Record(ctx, "wash_entries", entry.ID, AuditActionDelete, user.ID, &before, removed)
	c.publishEntryEvent(log, events.ENTRY_REMOVED, removed)

	log.Info("Wash entry removed", "entryID", entry.ID)

	return &RemoveEntryResult{Entry: removed}, nil
}

// escalateRemoval files an approval request instead of touching the ledger.
// The entry stays active until the manager rules on it.
func (c *EntriesController) escalateRemoval(
	ctx context.Context,
	user *User,
	entry *WashEntry,
	reason string,
) (*RemoveEntryResult, error) {
	log := logger.NewWithContext(ctx, "entriesController").Function("escalateRemoval")

	if reason == "" {
		return nil, log.ErrorWithType(
			apperrors.ErrValidation,
			"a reason is required to remove an entry from a previous day",
			"entryID", entry.ID,
		)
	}

	manager, err := c.userRepo.GetManager(ctx, c.db.SQL, user)
	if err != nil {
		return nil, err
	}

	approval := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: user.ID,
		ManagerID:  manager.ID,
		Reason:     reason,
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.approvalRepo.Create(ctx, tx, approval)
	})
	if err != nil {
		return nil, err
	}

	c.auditService.Record(ctx, "approval_requests", approval.ID, AuditActionInsert, user.ID, nil, approval)
	if err := c.eventBus.PublishApprovalEvent(
		events.APPROVAL_SUBMITTED,
		approval.ID,
		manager.ID,
		string(ApprovalStatusPending),
	); err != nil {
		log.Warn("failed to publish approval event", "requestID", approval.ID, "error", err)
	}

	log.Info("Removal escalated to manager", "entryID", entry.ID, "requestID", approval.ID, "managerID", manager.ID)

	return &RemoveEntryResult{Request: approval}, nil
}

// RestoreEntry reverses a removal, the server side of undo. Only the
// employee who removed the entry may restore it, and the day must still be
// open for them.
func (c *EntriesController) RestoreEntry(
	ctx context.Context,
	user *User,
	entryID uuid.UUID,
) (*WashEntry, error) {
	log := logger.NewWithContext(ctx, "entriesController").Function("RestoreEntry")

	if entryID == uuid.Nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "entryId is required")
	}

	entry, err := c.entryRepo.GetByID(ctx, c.db.SQL, entryID)
	if err != nil {
		return nil, err
	}

	if !entry.IsDeleted() {
		return nil, log.ErrorWithType(apperrors.ErrInvalidState, "entry is not deleted", "entryID", entryID)
	}
	if entry.DeletedBy == nil || *entry.DeletedBy != user.ID {
		return nil, log.ErrorWithType(
			apperrors.ErrPermission,
			"entry was removed by another user",
			"entryID", entryID,
		)
	}

	cutoff, err := c.currentCutoff(ctx)
	if err != nil {
		return nil, err
	}
	if policy.IsLocked(entry.ServiceDate, cutoff, user.Role) {
		return nil, log.ErrorWithType(apperrors.ErrTemporalPolicy, policy.ReasonPeriodClosed, "entryID", entryID)
	}

	before := *entry
	var restored *WashEntry
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		restored, err = c.entryRepo.Restore(ctx, tx, entryID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.auditService.Record(ctx, "wash_entries", entry.ID, AuditActionUpdate, user.ID, &before, restored)
	c.publishEntryEvent(log, events.ENTRY_RESTORED, restored)

	log.Info("Wash entry restored", "entryID", entry.ID)

	return restored, nil
}

func (c *EntriesController) GetDayBoard(
	ctx context.Context,
	user *User,
	locationID uuid.UUID,
	date string,
) (*DayBoard, error) {
	log := logger.NewWithContext(ctx, "entriesController").Function("GetDayBoard")

	if locationID == uuid.Nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "locationId is required")
	}

	serviceDate, err := utils.ParseServiceDate(date)
	if err != nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "invalid date", "error", err)
	}

	vehicles, err := c.vehicleRepo.GetByLocation(ctx, c.db.SQL, locationID)
	if err != nil {
		return nil, err
	}

	entries, err := c.entryRepo.GetDayEntries(ctx, c.db.SQL, locationID, serviceDate)
	if err != nil {
		return nil, err
	}

	cutoff, err := c.currentCutoff(ctx)
	if err != nil {
		return nil, err
	}

	return &DayBoard{
		LocationID:        locationID,
		ServiceDate:       utils.FormatServiceDate(serviceDate),
		Vehicles:          vehicles,
		Entries:           entries,
		Locked:            policy.IsLocked(serviceDate, cutoff, user.Role),
		UndoWindowSeconds: c.Config.UndoWindowSeconds,
	}, nil
}

func (c *EntriesController) QueryEntries(
	ctx context.Context,
	user *User,
	request *QueryEntriesRequest,
) ([]*WashEntry, error) {
	log := logger.NewWithContext(ctx, "entriesController").Function("QueryEntries")

	query := repositories.EntryQuery{
		LocationIDs: request.LocationIDs,
		VehicleID:   request.VehicleID,
		Status:      request.Status,
	}

	if request.From != "" {
		from, err := utils.ParseServiceDate(request.From)
		if err != nil {
			return nil, log.ErrorWithType(apperrors.ErrValidation, "invalid from date", "error", err)
		}
		query.From = from
	}
	if request.To != "" {
		to, err := utils.ParseServiceDate(request.To)
		if err != nil {
			return nil, log.ErrorWithType(apperrors.ErrValidation, "invalid to date", "error", err)
		}
		query.To = to
	}

	return c.entryRepo.Query(ctx, c.db.SQL, query)
}

// decide assembles the policy input for one (vehicle, date) slot. The
// committed tile state comes from the ledger when the caller did not
// already hold the entry.
func (c *EntriesController) decide(
	ctx context.Context,
	action policy.Action,
	user *User,
	vehicleID uuid.UUID,
	serviceDate time.Time,
	entry *WashEntry,
) (policy.Decision, error) {
	if entry == nil {
		active, err := c.entryRepo.GetActive(ctx, c.db.SQL, vehicleID, serviceDate)
		if err != nil {
			return policy.Decision{}, err
		}
		entry = active
	}

	tile := policy.TileCommitted{}
	if entry != nil && !entry.IsDeleted() {
		tile = policy.TileCommitted{
			Washed:  true,
			OwnerID: entry.EmployeeID,
			EntryID: entry.ID,
		}
	}

	cutoff, err := c.currentCutoff(ctx)
	if err != nil {
		return policy.Decision{}, err
	}

	return policy.Decide(policy.DecideInput{
		Action: action,
		Tile:   tile,
		Actor:  policy.Actor{ID: user.ID, Role: user.Role},
		Date:   serviceDate,
		Cutoff: cutoff,
		Today:  utils.Today(),
	}), nil
}

func (c *EntriesController) currentCutoff(ctx context.Context) (*time.Time, error) {
	setting, err := c.cutoffRepo.Get(ctx, c.db.SQL)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return &setting.CutoffDate, nil
}

// rejectUnlessAllowed maps a policy denial to the error family the
// transport layer translates to a status code.
func (c *EntriesController) rejectUnlessAllowed(log logger.Logger, decision policy.Decision) error {
	if decision.Outcome == policy.OutcomeAllowed {
		return nil
	}

	switch decision.Reason {
	case policy.ReasonOwnedByOther:
		return log.ErrorWithType(apperrors.ErrPermission, decision.Reason)
	case policy.ReasonPeriodClosed:
		return log.ErrorWithType(apperrors.ErrTemporalPolicy, decision.Reason)
	case policy.ReasonAlreadyRecorded:
		return log.ErrorWithType(apperrors.ErrConflict, decision.Reason)
	case policy.ReasonNothingRecorded:
		return log.ErrorWithType(apperrors.ErrNotFound, decision.Reason)
	default:
		return log.ErrorWithType(apperrors.ErrInvalidState, "mutation rejected", "outcome", decision.Outcome)
	}
}

func (c *EntriesController) publishEntryEvent(log logger.Logger, eventType events.MessageType, entry *WashEntry) {
	err := c.eventBus.PublishEntryEvent(
		eventType,
		entry.ID,
		entry.VehicleID,
		entry.LocationID,
		utils.FormatServiceDate(entry.ServiceDate),
	)
	if err != nil {
		log.Warn("failed to publish entry event", "entryID", entry.ID, "error", err)
	}
}
