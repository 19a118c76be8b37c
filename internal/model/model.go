package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Note":
		return db.AutoMigrate(Note{})

	case "Category":
		return db.AutoMigrate(Category{})

	case "Reminder":
		return db.AutoMigrate(Reminder{})
	}
	return nil
}
