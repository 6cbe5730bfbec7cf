package jobs

import (
	"context"
	"fmt"
	"testing"

	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/internal/repositories"
	"fleetwash/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupJobDB(t *testing.T) database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ApprovalRequest{}))

	return database.DB{SQL: db}
}

func TestStaleApprovalReminderJob_Identity(t *testing.T) {
	job := NewStaleApprovalReminderJob(nil, nil, database.DB{}, services.Daily)

	assert.Equal(t, "StaleApprovalReminder", job.Name())
	assert.Equal(t, services.Daily, job.Schedule())
}

func TestStaleApprovalReminderJob_NoStaleRequests(t *testing.T) {
	db := setupJobDB(t)
	repo := repositories.NewApprovalRepository(db)

	// No pending requests at all; the job finishes without touching the bus
	job := NewStaleApprovalReminderJob(repo, nil, db, services.Daily)
	assert.NoError(t, job.Execute(context.Background()))
}
