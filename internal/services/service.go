package services

import (
	"fleetwash/config"
	"fleetwash/internal/database"
	"fleetwash/internal/repositories"
)

type Service struct {
	Transaction *TransactionService
	Scheduler   *SchedulerService
	Audit       *AuditService
}

func New(db database.DB, config config.Config, repos repositories.Repository) Service {
	return Service{
		Transaction: NewTransactionService(db),
		Scheduler:   NewSchedulerService(),
		Audit:       NewAuditService(db, repos.Audit),
	}
}
