package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/internal/utils"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DAY_ENTRIES_CACHE_PREFIX = "day_entries"
	DAY_ENTRIES_CACHE_EXPIRY = 10 * time.Minute
)

// EntryQuery filters ledger reads. Status defaults to active.
type EntryQuery struct {
	From        time.Time
	To          time.Time
	LocationIDs []uuid.UUID
	VehicleID   *uuid.UUID
	Status      EntryStatus
}

// EntryRepository is the authoritative wash-entry ledger. It is mechanism,
// not policy: ownership is the only rule it enforces itself (soft delete),
// everything else belongs to the policy package. The partial unique index
// on (vehicle_id, service_date) WHERE deleted_at IS NULL backs the
// one-active-entry invariant under concurrent creates.
type EntryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *WashEntry) error
	GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*WashEntry, error)
	GetActive(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID, date time.Time) (*WashEntry, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, entryID, actorID uuid.UUID, reason *string) (*WashEntry, error)
	Restore(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*WashEntry, error)
	GetDayEntries(ctx context.Context, tx *gorm.DB, locationID uuid.UUID, date time.Time) ([]*WashEntry, error)
	Query(ctx context.Context, tx *gorm.DB, query EntryQuery) ([]*WashEntry, error)
	ClearDayCache(ctx context.Context, locationID uuid.UUID, date time.Time)
}

type entryRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewEntryRepository(db database.DB) EntryRepository {
	return &entryRepository{
		cache: db.Cache.Catalog,
		log:   logger.New("entryRepository"),
	}
}

func (r *entryRepository) Create(ctx context.Context, tx *gorm.DB, entry *WashEntry) error {
	log := r.log.Function("Create")

	entry.ServiceDate = utils.DateOnly(entry.ServiceDate)

	err := gorm.G[WashEntry](tx).Create(ctx, entry)
	if err != nil {
		if translated := translateUniqueViolation(err); errors.Is(translated, apperrors.ErrConflict) {
			return log.ErrorWithType(
				apperrors.ErrConflict,
				"active entry already exists",
				"vehicleID", entry.VehicleID,
				"serviceDate", entry.ServiceDate,
			)
		}
		return log.Err(
			"failed to create wash entry",
			err,
			"vehicleID", entry.VehicleID,
			"serviceDate", entry.ServiceDate,
		)
	}

	r.ClearDayCache(ctx, entry.LocationID, entry.ServiceDate)

	return nil
}

func (r *entryRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	entryID uuid.UUID,
) (*WashEntry, error) {
	log := r.log.Function("GetByID")

	entry, err := gorm.G[*WashEntry](tx).
		Where("id = ?", entryID).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(apperrors.ErrNotFound, "entry not found", "entryID", entryID)
		}
		return nil, log.Err("failed to get entry", err, "entryID", entryID)
	}

	return entry, nil
}

func (r *entryRepository) GetActive(
	ctx context.Context,
	tx *gorm.DB,
	vehicleID uuid.UUID,
	date time.Time,
) (*WashEntry, error) {
	log := r.log.Function("GetActive")

	entry, err := gorm.G[*WashEntry](tx).
		Where("vehicle_id = ? AND service_date = ? AND deleted_at IS NULL", vehicleID, utils.DateOnly(date)).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get active entry", err, "vehicleID", vehicleID)
	}

	return entry, nil
}

// SoftDelete marks the entry deleted. Only the owning employee may delete;
// the same-day rule is the policy package's job, not the ledger's. The
// update is guarded on deleted_at IS NULL so concurrent deletes lose cleanly.
func (r *entryRepository) SoftDelete(
	ctx context.Context,
	tx *gorm.DB,
	entryID, actorID uuid.UUID,
	reason *string,
) (*WashEntry, error) {
	log := r.log.Function("SoftDelete")

	entry, err := r.GetByID(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	if !entry.OwnedBy(actorID) {
		return nil, log.ErrorWithType(
			apperrors.ErrPermission,
			"entry owned by another employee",
			"entryID", entryID,
			"ownerID", entry.EmployeeID,
			"actorID", actorID,
		)
	}

	if entry.IsDeleted() {
		return nil, log.ErrorWithType(apperrors.ErrNotFound, "entry already deleted", "entryID", entryID)
	}

	now := time.Now().UTC()
	result := tx.Model(&WashEntry{}).
		Where("id = ? AND deleted_at IS NULL", entryID).
		Updates(map[string]any{
			"deleted_at":      now,
			"deleted_by":      actorID,
			"deletion_reason": reason,
		})
	if result.Error != nil {
		return nil, log.Err("failed to soft delete entry", result.Error, "entryID", entryID)
	}
	if result.RowsAffected == 0 {
		return nil, log.ErrorWithType(apperrors.ErrNotFound, "entry already deleted", "entryID", entryID)
	}

	entry.DeletedAt = &now
	entry.DeletedBy = &actorID
	entry.DeletionReason = reason

	r.ClearDayCache(ctx, entry.LocationID, entry.ServiceDate)

	return entry, nil
}

// Restore clears the soft-delete fields, used for undo and for reversing an
// approval denial. The partial unique index rejects the restore if another
// active entry has since been created for the same (vehicle, date).
func (r *entryRepository) Restore(
	ctx context.Context,
	tx *gorm.DB,
	entryID uuid.UUID,
) (*WashEntry, error) {
	log := r.log.Function("Restore")

	entry, err := r.GetByID(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	if !entry.IsDeleted() {
		return nil, log.ErrorWithType(
			apperrors.ErrInvalidState,
			"entry is not deleted",
			"entryID", entryID,
		)
	}

	result := tx.Model(&WashEntry{}).
		Where("id = ?", entryID).
		Updates(map[string]any{
			"deleted_at":      nil,
			"deleted_by":      nil,
			"deletion_reason": nil,
		})
	if result.Error != nil {
		if translated := translateUniqueViolation(result.Error); errors.Is(translated, apperrors.ErrConflict) {
			return nil, log.ErrorWithType(
				apperrors.ErrConflict,
				"another active entry exists for vehicle and date",
				"entryID", entryID,
			)
		}
		return nil, log.Err("failed to restore entry", result.Error, "entryID", entryID)
	}

	entry.DeletedAt = nil
	entry.DeletedBy = nil
	entry.DeletionReason = nil

	r.ClearDayCache(ctx, entry.LocationID, entry.ServiceDate)

	return entry, nil
}

// GetDayEntries returns the active entries for one location and one day,
// the read behind the tile grid. Results are cached until the next ledger
// mutation touching that (location, day).
func (r *entryRepository) GetDayEntries(
	ctx context.Context,
	tx *gorm.DB,
	locationID uuid.UUID,
	date time.Time,
) ([]*WashEntry, error) {
	log := r.log.Function("GetDayEntries")

	cacheKey := r.dayCacheKey(locationID, date)

	if r.cache != nil {
		var cached []*WashEntry
		found, err := database.NewCacheBuilder(r.cache, cacheKey).
			WithContext(ctx).
			WithHash(DAY_ENTRIES_CACHE_PREFIX).
			Get(&cached)
		if err != nil {
			log.Warn("failed to get day entries from cache", "key", cacheKey, "error", err)
		}

		if found {
			return cached, nil
		}
	}

	entries, err := gorm.G[*WashEntry](tx).
		Where("location_id = ? AND service_date = ? AND deleted_at IS NULL", locationID, utils.DateOnly(date)).
		Order("created_at ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get day entries", err, "locationID", locationID)
	}

	if r.cache != nil {
		err = database.NewCacheBuilder(r.cache, cacheKey).
			WithContext(ctx).
			WithHash(DAY_ENTRIES_CACHE_PREFIX).
			WithStruct(entries).
			WithTTL(DAY_ENTRIES_CACHE_EXPIRY).
			Set()
		if err != nil {
			log.Warn("failed to set day entries in cache", "key", cacheKey, "error", err)
		}
	}

	return entries, nil
}

func (r *entryRepository) Query(
	ctx context.Context,
	tx *gorm.DB,
	query EntryQuery,
) ([]*WashEntry, error) {
	log := r.log.Function("Query")

	stmt := tx.WithContext(ctx).Model(&WashEntry{})

	if !query.From.IsZero() {
		stmt = stmt.Where("service_date >= ?", utils.DateOnly(query.From))
	}
	if !query.To.IsZero() {
		stmt = stmt.Where("service_date <= ?", utils.DateOnly(query.To))
	}
	if len(query.LocationIDs) > 0 {
		stmt = stmt.Where("location_id IN ?", query.LocationIDs)
	}
	if query.VehicleID != nil {
		stmt = stmt.Where("vehicle_id = ?", *query.VehicleID)
	}

	switch query.Status {
	case EntryStatusDeleted:
		stmt = stmt.Where("deleted_at IS NOT NULL")
	case EntryStatusAll:
		// no filter
	default:
		stmt = stmt.Where("deleted_at IS NULL")
	}

	var entries []*WashEntry
	if err := stmt.Order("service_date ASC, created_at ASC").Find(&entries).Error; err != nil {
		return nil, log.Err("failed to query entries", err)
	}

	return entries, nil
}

func (r *entryRepository) ClearDayCache(ctx context.Context, locationID uuid.UUID, date time.Time) {
	if r.cache == nil {
		return
	}

	err := database.NewCacheBuilder(r.cache, r.dayCacheKey(locationID, date)).
		WithContext(ctx).
		WithHash(DAY_ENTRIES_CACHE_PREFIX).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear day entries cache", "locationID", locationID, "error", err)
	}
}

func (r *entryRepository) dayCacheKey(locationID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s:%s", locationID, utils.FormatServiceDate(utils.DateOnly(date)))
}
