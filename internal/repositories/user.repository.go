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

const (
	USER_CACHE_PREFIX = "user:"
	USER_CACHE_EXPIRY = 24 * time.Hour
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*User, error)
	GetManager(ctx context.Context, tx *gorm.DB, user *User) (*User, error)
	Update(ctx context.Context, tx *gorm.DB, user *User) error
}

type userRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		cache: db.Cache.Session,
		log:   logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) (*User, error) {
	log := r.log.Function("GetByID")

	if r.cache != nil {
		var cached User
		found, err := database.NewCacheBuilder(r.cache, USER_CACHE_PREFIX+userID.String()).
			WithContext(ctx).
			Get(&cached)
		if err != nil {
			log.Warn("failed to get user from cache", "userID", userID, "error", err)
		}
		if found {
			return &cached, nil
		}
	}

	user, err := gorm.G[*User](tx).
		Where("id = ?", userID).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(apperrors.ErrNotFound, "user not found", "userID", userID)
		}
		return nil, log.Err("failed to get user", err, "userID", userID)
	}

	if r.cache != nil {
		err := database.NewCacheBuilder(r.cache, USER_CACHE_PREFIX+userID.String()).
			WithContext(ctx).
			WithStruct(user).
			WithTTL(USER_CACHE_EXPIRY).
			Set()
		if err != nil {
			log.Warn("failed to add user to cache", "userID", userID, "error", err)
		}
	}

	return user, nil
}

// GetManager resolves the user's assigned manager for the approval
// workflow. NoManagerAssigned surfaces when there is nobody to route to.
func (r *userRepository) GetManager(
	ctx context.Context,
	tx *gorm.DB,
	user *User,
) (*User, error) {
	log := r.log.Function("GetManager")

	if !user.HasManager() {
		return nil, log.ErrorWithType(
			apperrors.ErrNoManagerAssigned,
			"user has no manager assigned",
			"userID", user.ID,
		)
	}

	manager, err := r.GetByID(ctx, tx, *user.ManagerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, log.ErrorWithType(
				apperrors.ErrNoManagerAssigned,
				"assigned manager does not exist",
				"userID", user.ID,
				"managerID", *user.ManagerID,
			)
		}
		return nil, err
	}

	return manager, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Update")

	if err := tx.WithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	r.clearUserCache(ctx, user.ID)

	return nil
}

func (r *userRepository) clearUserCache(ctx context.Context, userID uuid.UUID) {
	if r.cache == nil {
		return
	}

	err := database.NewCacheBuilder(r.cache, USER_CACHE_PREFIX+userID.String()).
		WithContext(ctx).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear user cache", "userID", userID, "error", err)
	}
}
