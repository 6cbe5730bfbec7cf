package services

import (
	"context"
	"testing"

	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupAuditDB(t *testing.T) database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&AuditLog{}))

	return database.DB{SQL: gormDB}
}

func TestAuditService_Record(t *testing.T) {
	db := setupAuditDB(t)
	service := NewAuditService(db, repositories.NewAuditRepository(db))

	recordID := uuid.New()
	actorID := uuid.New()

	service.Record(
		context.Background(),
		"wash_entries",
		recordID,
		AuditActionInsert,
		actorID,
		nil,
		map[string]any{"vehicleId": recordID.String(), "washed": true},
	)

	var rows []AuditLog
	require.NoError(t, db.SQL.Find(&rows).Error)
	require.Len(t, rows, 1)

	assert.Equal(t, "wash_entries", rows[0].TableName)
	assert.Equal(t, recordID, rows[0].RecordID)
	assert.Equal(t, AuditActionInsert, rows[0].Action)
	assert.Equal(t, actorID, rows[0].ActorID)
	assert.Nil(t, rows[0].OldData)
	assert.JSONEq(
		t,
		`{"vehicleId":"`+recordID.String()+`","washed":true}`,
		string(rows[0].NewData),
	)
}

func TestAuditService_RecordSurvivesUnmarshalableSnapshot(t *testing.T) {
	db := setupAuditDB(t)
	service := NewAuditService(db, repositories.NewAuditRepository(db))

	// Channels cannot be marshaled; the snapshot is dropped but the trail
	// row still lands.
	service.Record(
		context.Background(),
		"wash_entries",
		uuid.New(),
		AuditActionDelete,
		uuid.New(),
		make(chan int),
		nil,
	)

	var count int64
	require.NoError(t, db.SQL.Model(&AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
