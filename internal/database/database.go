package database

import (
	"fmt"

	"dimop-backend/internal/database/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	LogLevel logger.LogLevel
}

// OpenRegistry opens the registry database holding the project table.
// AutoMigrate is additive only: gorm adds missing columns, never drops.
func OpenRegistry(path string, opts *Options) (*gorm.DB, error) {
	db, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Project{}); err != nil {
		return nil, fmt.Errorf("auto-migrate registry: %w", err)
	}
	return db, nil
}

// OpenProject opens one project's isolated database file and creates or
// additively upgrades the materials/components schema.
func OpenProject(path string, opts *Options) (*gorm.DB, error) {
	db, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Material{}, &models.Component{}); err != nil {
		return nil, fmt.Errorf("auto-migrate project store: %w", err)
	}
	return db, nil
}

func open(path string, opts *Options) (*gorm.DB, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Error
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// One writer per file; each store additionally serializes its own
	// operations with a mutex.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Close closes the underlying connection of a gorm handle
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
