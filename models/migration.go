package models

import (
	"log"

	"github.com/dheeraj1717/fleet-manager/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Client{},
		&VehicleType{}, &Vehicle{},
		&Driver{},
		&FuelEntry{},
		&Job{},
		&Invoice{}, &Payment{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
