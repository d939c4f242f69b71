package services

import (
	"path/filepath"
	"testing"
	"time"

	"dapp_payroll/database"
	"dapp_payroll/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh sqlite file per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedEmployee(t *testing.T, db *gorm.DB, wallet string) models.Employee {
	t.Helper()
	e := models.Employee{
		EmployeeDID:   uuid.New().String(),
		FullName:      "Nguyen Van A",
		WalletAddress: wallet,
		Department:    "Engineering",
		Status:        "active",
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func seedAttendance(t *testing.T, db *gorm.DB, did string, date time.Time, dayType string, hours *float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Attendance{
		ID:          uuid.New().String(),
		EmployeeDID: did,
		Date:        date,
		DayType:     dayType,
		TotalHours:  hours,
	}).Error)
}

func seedKpi(t *testing.T, db *gorm.DB, did, period string, score float64, status string) {
	t.Helper()
	require.NoError(t, db.Create(&models.KpiEvaluation{
		ID:          uuid.New().String(),
		EmployeeDID: did,
		KpiID:       uuid.New().String(),
		Period:      period,
		Score:       score,
		Status:      status,
	}).Error)
}

func hours(h float64) *float64 { return &h }
