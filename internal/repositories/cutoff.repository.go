package repositories

import (
	"context"
	"errors"
	"time"

	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/internal/utils"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CutoffRepository persists the single global cutoff boundary and its
// change history. The setting may be absent, in which case no period is
// closed.
type CutoffRepository interface {
	Get(ctx context.Context, tx *gorm.DB) (*CutoffSetting, error)
	Save(ctx context.Context, tx *gorm.DB, newDate time.Time, actorID uuid.UUID, reason *string) (*CutoffSetting, error)
	History(ctx context.Context, tx *gorm.DB, limit int) ([]*CutoffAudit, error)
}

type cutoffRepository struct {
	log logger.Logger
}

func NewCutoffRepository(db database.DB) CutoffRepository {
	return &cutoffRepository{
		log: logger.New("cutoffRepository"),
	}
}

func (r *cutoffRepository) Get(ctx context.Context, tx *gorm.DB) (*CutoffSetting, error) {
	log := r.log.Function("Get")

	setting, err := gorm.G[*CutoffSetting](tx).
		Order("id ASC").
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get cutoff setting", err)
	}

	return setting, nil
}

// Save upserts the boundary and appends a history row with the old and new
// values. Callers run it inside a transaction so the two writes land
// together.
func (r *cutoffRepository) Save(
	ctx context.Context,
	tx *gorm.DB,
	newDate time.Time,
	actorID uuid.UUID,
	reason *string,
) (*CutoffSetting, error) {
	log := r.log.Function("Save")

	newDate = utils.DateOnly(newDate)

	current, err := r.Get(ctx, tx)
	if err != nil {
		return nil, err
	}

	var oldDate *time.Time
	if current == nil {
		current = &CutoffSetting{CutoffDate: newDate, UpdatedBy: actorID}
		if err := gorm.G[CutoffSetting](tx).Create(ctx, current); err != nil {
			return nil, log.Err("failed to create cutoff setting", err)
		}
	} else {
		previous := current.CutoffDate
		oldDate = &previous

		result := tx.WithContext(ctx).Model(&CutoffSetting{}).
			Where("id = ?", current.ID).
			Updates(map[string]any{
				"cutoff_date": newDate,
				"updated_by":  actorID,
			})
		if result.Error != nil {
			return nil, log.Err("failed to update cutoff setting", result.Error)
		}

		current.CutoffDate = newDate
		current.UpdatedBy = actorID
	}

	audit := &CutoffAudit{
		OldDate: oldDate,
		NewDate: newDate,
		ActorID: actorID,
		Reason:  reason,
	}
	if err := gorm.G[CutoffAudit](tx).Create(ctx, audit); err != nil {
		return nil, log.Err("failed to append cutoff history", err)
	}

	return current, nil
}

func (r *cutoffRepository) History(
	ctx context.Context,
	tx *gorm.DB,
	limit int,
) ([]*CutoffAudit, error) {
	log := r.log.Function("History")

	entries, err := gorm.G[*CutoffAudit](tx).
		Order("created_at DESC").
		Limit(limit).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get cutoff history", err)
	}

	return entries, nil
}
