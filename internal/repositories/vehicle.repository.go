package repositories

import (
	"context"
	"errors"
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
	VEHICLE_CACHE_PREFIX = "vehicles"
	VEHICLE_CACHE_EXPIRY = 24 * time.Hour
)

// VehicleRepository is the read-only catalog surface consumed by the wash
// ledger, plus the single best-effort write the ledger performs: updating a
// vehicle's last-seen location and date after an entry is created.
type VehicleRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) (*Vehicle, error)
	GetByNumber(ctx context.Context, tx *gorm.DB, number string) (*Vehicle, error)
	GetByLocation(ctx context.Context, tx *gorm.DB, locationID uuid.UUID) ([]*Vehicle, error)
	UpdateLastSeen(ctx context.Context, tx *gorm.DB, vehicleID, locationID uuid.UUID, date time.Time) error
}

type vehicleRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewVehicleRepository(db database.DB) VehicleRepository {
	return &vehicleRepository{
		cache: db.Cache.Catalog,
		log:   logger.New("vehicleRepository"),
	}
}

func (r *vehicleRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	vehicleID uuid.UUID,
) (*Vehicle, error) {
	log := r.log.Function("GetByID")

	vehicle, err := gorm.G[*Vehicle](tx).
		Where("id = ?", vehicleID).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(apperrors.ErrNotFound, "vehicle not found", "vehicleID", vehicleID)
		}
		return nil, log.Err("failed to get vehicle", err, "vehicleID", vehicleID)
	}

	return vehicle, nil
}

func (r *vehicleRepository) GetByNumber(
	ctx context.Context,
	tx *gorm.DB,
	number string,
) (*Vehicle, error) {
	log := r.log.Function("GetByNumber")

	normalized := NormalizeVehicleNumber(number)

	vehicle, err := gorm.G[*Vehicle](tx).
		Where("number = ?", normalized).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(apperrors.ErrNotFound, "vehicle not found", "number", normalized)
		}
		return nil, log.Err("failed to get vehicle by number", err, "number", normalized)
	}

	return vehicle, nil
}

// GetByLocation returns active vehicles homed at a location, cached until
// the next last-seen update touching it.
func (r *vehicleRepository) GetByLocation(
	ctx context.Context,
	tx *gorm.DB,
	locationID uuid.UUID,
) ([]*Vehicle, error) {
	log := r.log.Function("GetByLocation")

	if r.cache != nil {
		var cached []*Vehicle
		found, err := database.NewCacheBuilder(r.cache, locationID).
			WithContext(ctx).
			WithHash(VEHICLE_CACHE_PREFIX).
			Get(&cached)
		if err != nil {
			log.Warn("failed to get vehicles from cache", "locationID", locationID, "error", err)
		}

		if found {
			return cached, nil
		}
	}

	vehicles, err := gorm.G[*Vehicle](tx).
		Preload("Type", nil).
		Preload("Client", nil).
		Where("home_location_id = ? AND is_active = ?", locationID, true).
		Order("number ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get vehicles by location", err, "locationID", locationID)
	}

	if r.cache != nil {
		err = database.NewCacheBuilder(r.cache, locationID).
			WithContext(ctx).
			WithHash(VEHICLE_CACHE_PREFIX).
			WithStruct(vehicles).
			WithTTL(VEHICLE_CACHE_EXPIRY).
			Set()
		if err != nil {
			log.Warn("failed to set vehicles in cache", "locationID", locationID, "error", err)
		}
	}

	return vehicles, nil
}

// UpdateLastSeen is best-effort and not transactional with the entry
// insert; callers log and continue on failure.
func (r *vehicleRepository) UpdateLastSeen(
	ctx context.Context,
	tx *gorm.DB,
	vehicleID, locationID uuid.UUID,
	date time.Time,
) error {
	log := r.log.Function("UpdateLastSeen")

	result := tx.WithContext(ctx).Model(&Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(map[string]any{
			"last_seen_location_id": locationID,
			"last_seen_date":        utils.DateOnly(date),
		})
	if result.Error != nil {
		return log.Err("failed to update vehicle last seen", result.Error, "vehicleID", vehicleID)
	}
	if result.RowsAffected == 0 {
		return log.ErrorWithType(apperrors.ErrNotFound, "vehicle not found", "vehicleID", vehicleID)
	}

	r.clearLocationCache(ctx, locationID)

	return nil
}

func (r *vehicleRepository) clearLocationCache(ctx context.Context, locationID uuid.UUID) {
	if r.cache == nil {
		return
	}

	err := database.NewCacheBuilder(r.cache, locationID).
		WithContext(ctx).
		WithHash(VEHICLE_CACHE_PREFIX).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear vehicle cache", "locationID", locationID, "error", err)
	}
}
