package database

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"microtwit/config"
	"microtwit/logging"
	"microtwit/models"
)

// Connect opens the configured relational store.
func Connect(cfg config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBDriver {
	case config.DriverPostgres:
		logger.WithField("driver", cfg.DBDriver).Info("Connecting to PostgreSQL database")
		dialector = postgres.Open(cfg.DatabaseURL)
	case config.DriverMySQL:
		logger.WithField("driver", cfg.DBDriver).Info("Connecting to MySQL database")
		dialector = mysql.Open(cfg.DatabaseURL)
	case config.DriverSQLite:
		logger.WithField("path", cfg.DatabaseURL).Info("Connecting to SQLite database")
		dialector = sqlite.Open(SQLiteDSN(cfg.DatabaseURL))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.GormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to connect to the database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connection successful")
	return db, nil
}

// SQLiteDSN turns on foreign key enforcement, which SQLite keeps off by
// default and which the cascade rules depend on.
func SQLiteDSN(path string) string {
	params := []string{"_foreign_keys=1", "_busy_timeout=5000"}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Migrate creates or updates the six tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
