package initialize

import (
	"fleetwash/config"
	. "fleetwash/internal/models"
	"fleetwash/pkg/logger"

	"gorm.io/gorm"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeVehicleTypes(db, log); err != nil {
		return log.Err("failed to initialize vehicle types", err)
	}

	log.Info("Table initialization complete")
	return nil
}

func initializeVehicleTypes(db *gorm.DB, log logger.Logger) error {
	log.Info("Initializing vehicle type reference data")

	types := []VehicleType{
		{Name: "Sedan"},
		{Name: "SUV"},
		{Name: "Van"},
		{Name: "Box Truck"},
		{Name: "Semi Tractor"},
		{Name: "Trailer"},
	}

	for _, vehicleType := range types {
		var existing VehicleType
		if err := db.First(&existing, "name = ?", vehicleType.Name).Error; err == nil {
			log.Debug("Vehicle type already exists", "name", vehicleType.Name)
			continue
		}
		log.Info("Initializing vehicle type", "name", vehicleType.Name)
		if err := db.Create(&vehicleType).Error; err != nil {
			return log.Err("failed to create vehicle type", err, "name", vehicleType.Name)
		}
	}

	log.Info("Vehicle type reference data initialized", "count", len(types))
	return nil
}
