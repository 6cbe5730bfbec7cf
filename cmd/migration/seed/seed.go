package seed

import (
	"fleetwash/config"
	. "fleetwash/internal/models"
	"fleetwash/internal/roles"
	"fleetwash/pkg/logger"

	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	locations := []Location{
		{Name: "North Yard", City: "Des Moines", IsActive: true},
		{Name: "South Yard", City: "Kansas City", IsActive: true},
	}

	for i := range locations {
		var existing Location
		if err := db.First(&existing, "name = ?", locations[i].Name).Error; err == nil {
			locations[i] = existing
			continue
		}
		if err := db.Create(&locations[i]).Error; err != nil {
			return log.Err("failed to create location", err, "name", locations[i].Name)
		}
	}

	admin := User{
		FirstName:  "Site",
		LastName:   "Admin",
		Email:      stringPtr("admin@example.com"),
		Role:       roles.Admin,
		LocationID: &locations[0].ID,
		IsActive:   true,
	}
	if err := seedUser(db, &admin, log); err != nil {
		return err
	}

	manager := User{
		FirstName:  "Morgan",
		LastName:   "Reyes",
		Email:      stringPtr("manager@example.com"),
		Role:       roles.Manager,
		ManagerID:  &admin.ID,
		LocationID: &locations[0].ID,
		IsActive:   true,
	}
	if err := seedUser(db, &manager, log); err != nil {
		return err
	}

	employees := []User{
		{
			FirstName:  "Jamie",
			LastName:   "Okafor",
			Email:      stringPtr("jamie@example.com"),
			Role:       roles.Employee,
			ManagerID:  &manager.ID,
			LocationID: &locations[0].ID,
			IsActive:   true,
		},
		{
			FirstName:  "Riley",
			LastName:   "Chen",
			Email:      stringPtr("riley@example.com"),
			Role:       roles.Employee,
			ManagerID:  &manager.ID,
			LocationID: &locations[1].ID,
			IsActive:   true,
		},
	}
	for i := range employees {
		if err := seedUser(db, &employees[i], log); err != nil {
			return err
		}
	}

	var sedan VehicleType
	if err := db.First(&sedan, "name = ?", "Sedan").Error; err != nil {
		return log.Err("failed to look up vehicle type", err, "name", "Sedan")
	}
	var boxTruck VehicleType
	if err := db.First(&boxTruck, "name = ?", "Box Truck").Error; err != nil {
		return log.Err("failed to look up vehicle type", err, "name", "Box Truck")
	}

	vehicles := []Vehicle{
		{Number: "FW-1001", TypeID: sedan.ID, HomeLocationID: locations[0].ID, IsActive: true},
		{Number: "FW-1002", TypeID: sedan.ID, HomeLocationID: locations[0].ID, IsActive: true},
		{Number: "FW-2001", TypeID: boxTruck.ID, HomeLocationID: locations[1].ID, IsActive: true},
	}

	for i := range vehicles {
		var existing Vehicle
		if err := db.First(&existing, "number = ?", vehicles[i].Number).Error; err == nil {
			log.Info("Vehicle already exists", "number", vehicles[i].Number)
			continue
		}
		log.Info("Seeding vehicle", "number", vehicles[i].Number)
		if err := db.Create(&vehicles[i]).Error; err != nil {
			return log.Err("failed to create vehicle", err, "number", vehicles[i].Number)
		}
	}

	log.Info("Seed complete")
	return nil
}

func seedUser(db *gorm.DB, user *User, log logger.Logger) error {
	var existing User
	if err := db.First(&existing, "email = ?", user.Email).Error; err == nil {
		*user = existing
		log.Info("User already exists", "email", *user.Email)
		return nil
	}
	log.Info("Seeding user", "email", *user.Email)
	if err := db.Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "email", *user.Email)
	}
	return nil
}
