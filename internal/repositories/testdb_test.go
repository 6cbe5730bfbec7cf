package repositories

import (
	"fmt"
	"testing"
	"time"

	. "fleetwash/internal/models"
	"fleetwash/internal/roles"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database carrying the same
// uniqueness contracts the postgres migrations create.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&User{},
		&Location{},
		&Client{},
		&VehicleType{},
		&Vehicle{},
		&WashEntry{},
		&ApprovalRequest{},
		&CutoffSetting{},
		&CutoffAudit{},
		&AuditLog{},
	)
	require.NoError(t, err)

	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_wash_entries_vehicle_date_active ON wash_entries(vehicle_id, service_date) WHERE deleted_at IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_approval_requests_entry_pending ON approval_requests(entry_id) WHERE status = 'pending'",
	}
	for _, indexSQL := range indexes {
		require.NoError(t, db.Exec(indexSQL).Error)
	}

	return db
}

type testFixture struct {
	location Location
	vehicle  Vehicle
	owner    User
	other    User
	manager  User
}

func seedFixture(t *testing.T, db *gorm.DB) testFixture {
	t.Helper()

	location := Location{Name: "North Yard"}
	require.NoError(t, db.Create(&location).Error)

	vehicleType := VehicleType{Name: "tractor"}
	require.NoError(t, db.Create(&vehicleType).Error)

	vehicle := Vehicle{
		Number:         "T-101",
		TypeID:         vehicleType.ID,
		HomeLocationID: location.ID,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&vehicle).Error)

	manager := User{FirstName: "Morgan", LastName: "Reyes", Role: roles.Manager}
	require.NoError(t, db.Create(&manager).Error)

	owner := User{
		FirstName: "Erin",
		LastName:  "Soto",
		Role:      roles.Employee,
		ManagerID: &manager.ID,
	}
	require.NoError(t, db.Create(&owner).Error)

	other := User{FirstName: "Jamie", LastName: "Ward", Role: roles.Employee}
	require.NoError(t, db.Create(&other).Error)

	return testFixture{
		location: location,
		vehicle:  vehicle,
		owner:    owner,
		other:    other,
		manager:  manager,
	}
}

func newEntry(f testFixture, date time.Time, employeeID uuid.UUID) *WashEntry {
	return &WashEntry{
		VehicleID:   f.vehicle.ID,
		ServiceDate: date,
		LocationID:  f.location.ID,
		EmployeeID:  employeeID,
	}
}
