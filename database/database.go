package database

import (
	"fmt"
	"time"

	"dapp_payroll/config"
	"dapp_payroll/models"
	"dapp_payroll/utils"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var retryDelay = 2 * time.Second

func dialector(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "", "sqlite":
		return sqlite.Open(cfg.DBPath), nil
	case "mysql":
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for the mysql driver")
		}
		return mysql.Open(cfg.DBDSN), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Open connects with a bounded number of retries and migrates the schema.
func Open(cfg config.Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	attempts := cfg.DBConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var db *gorm.DB
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(d, gormCfg)
		if err == nil {
			break
		}
		utils.Logger.Warn("Failed to connect to database, retrying",
			zap.Int("attempt", i+1), zap.Int("of", attempts), zap.Error(err))
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Employee{},
		&models.SalaryProfile{},
		&models.Attendance{},
		&models.KpiEvaluation{},
		&models.PayrollRecord{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
