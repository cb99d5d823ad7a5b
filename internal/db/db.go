package db

import (
	"log"

	"github.com/RomanDaru/otazkomat/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to postgres and runs migrations.
func Open(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	log.Println("Database connection established")

	if err := AutoMigrate(gdb); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	return gdb, nil
}

// AutoMigrate is split out so tests can run it against an in-memory database.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Vote{},
	)
}
