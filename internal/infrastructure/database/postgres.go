package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"weshop/internal/domain/entity"
)

// Open connects to Postgres and runs auto-migrations for every entity the
// service touches. The unique index on conversations.order_id comes from the
// entity tags and backs the get-or-create discipline.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Shop{},
		&entity.Product{},
		&entity.Order{},
		&entity.Conversation{},
		&entity.Message{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
