package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rpupo63/portfolio-cms-backend/config"
	"github.com/rpupo63/portfolio-cms-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	db                 *gorm.DB
	projectRepo        *ProjectRepo
	projectFeatureRepo *ProjectFeatureRepo
	adminUserRepo      *AdminUserRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                 db,
		projectRepo:        NewProjectRepo(db),
		projectFeatureRepo: NewProjectFeatureRepo(db),
		adminUserRepo:      NewAdminUserRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ProjectFeatureRepo() *ProjectFeatureRepo {
	return d.projectFeatureRepo
}

func (d Database) AdminUserRepo() *AdminUserRepo {
	return d.adminUserRepo
}

// Open connects to the database selected by DB_TYPE
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !cfg.IsProduction(),
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	}

	switch cfg.DBType {
	case config.DBTypeSQLite:
		return OpenSQLite(cfg.DBPath, gormConfig)
	case config.DBTypePostgres:
		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.PostgresDSN,
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("error connecting to postgres: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}
}

// OpenSQLite opens (creating if needed) the database file at path. The pool is
// capped at one connection so writers queue in process instead of fighting
// over the file lock.
func OpenSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}
	if gormConfig == nil {
		gormConfig = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates or updates every table the service uses
func (d Database) Migrate() error {
	if err := d.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("error migrating schema: %w", err)
	}
	return nil
}

// Ping checks the connection is usable
func (d Database) Ping(ctx context.Context) error {
	var result int
	return d.db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error
}

// Close releases the underlying connection pool
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
