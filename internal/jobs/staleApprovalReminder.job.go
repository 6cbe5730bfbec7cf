package jobs

import (
	"context"
	"time"

	"fleetwash/internal/database"
	"fleetwash/internal/events"
	. "fleetwash/internal/models"
	"fleetwash/internal/repositories"
	"fleetwash/internal/services"
	"fleetwash/pkg/logger"
)

// StaleApprovalThreshold is how long a request may sit pending before the
// assigned manager gets nudged again.
const StaleApprovalThreshold = 48 * time.Hour

type StaleApprovalReminderJob struct {
	approvalRepo repositories.ApprovalRepository
	eventBus     *events.EventBus
	db           database.DB
	log          logger.Logger
	schedule     services.Schedule
}

func NewStaleApprovalReminderJob(
	approvalRepo repositories.ApprovalRepository,
	eventBus *events.EventBus,
	db database.DB,
	schedule services.Schedule,
) *StaleApprovalReminderJob {
	return &StaleApprovalReminderJob{
		approvalRepo: approvalRepo,
		eventBus:     eventBus,
		db:           db,
		log:          logger.New("staleApprovalReminderJob"),
		schedule:     schedule,
	}
}

func (j *StaleApprovalReminderJob) Name() string {
	return "StaleApprovalReminder"
}

// Execute re-notifies managers about requests that have sat pending past
// the threshold. Reminders are repeated each run on purpose; a pending
// request blocks the employee until someone rules on it.
func (j *StaleApprovalReminderJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	cutoff := time.Now().UTC().Add(-StaleApprovalThreshold)
	stale, err := j.approvalRepo.ListStalePending(ctx, j.db.SQLWithContext(ctx), cutoff)
	if err != nil {
		return log.Err("failed to list stale approval requests", err)
	}

	if len(stale) == 0 {
		return nil
	}

	log.Info("Sending stale approval reminders", "count", len(stale))

	for _, request := range stale {
		err := j.eventBus.PublishApprovalEvent(
			events.APPROVAL_SUBMITTED,
			request.ID,
			request.ManagerID,
			string(ApprovalStatusPending),
		)
		if err != nil {
			log.Warn("failed to publish reminder", "requestID", request.ID, "error", err)
		}
	}

	return nil
}

func (j *StaleApprovalReminderJob) Schedule() services.Schedule {
	return j.schedule
}
