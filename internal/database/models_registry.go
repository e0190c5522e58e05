package database

import "photogram/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Relation{},
		&models.Post{},
		&models.Comment{},
	}
}
