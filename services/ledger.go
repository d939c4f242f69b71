package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dapp_payroll/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordHash is the Keccak-256 digest of the record's identifying and
// computed fields, in a fixed order.
func RecordHash(r models.PayrollRecord) string {
	parts := []string{
		r.EmployeeDID,
		r.Period,
		strconv.FormatInt(r.KpiScore, 10),
		strconv.FormatInt(r.WorkingDays, 10),
		strconv.FormatInt(r.OvertimeHours, 10),
		strconv.FormatInt(r.BaseSalaryActual, 10),
		strconv.FormatInt(r.KpiBonus, 10),
		strconv.FormatInt(r.Allowance, 10),
		strconv.FormatInt(r.OvertimeBonus, 10),
		strconv.FormatInt(r.GrossSalary, 10),
		strconv.FormatInt(r.TaxAmount, 10),
		strconv.FormatInt(r.NetSalary, 10),
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.Join(parts, "|")))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// Ledger is the local mirror of payroll records.
type Ledger struct {
	DB *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{DB: db}
}

var upsertColumns = []string{
	"kpi_score", "working_days", "overtime_hours",
	"base_salary_actual", "kpi_bonus", "allowance", "overtime_bonus",
	"gross_salary", "tax_amount", "net_salary",
	"status", "source", "chain_transaction_hash", "chain_payroll_id",
	"record_hash", "updated_at",
}

// Upsert writes the record keyed by (employee, period) and reloads it so the
// caller sees the persisted id.
func (l *Ledger) Upsert(ctx context.Context, rec *models.PayrollRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.RecordHash = RecordHash(*rec)

	return l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_did"}, {Name: "period"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).Create(rec).Error; err != nil {
			return fmt.Errorf("failed to upsert payroll record: %w", err)
		}
		var stored models.PayrollRecord
		if err := tx.Where("employee_did = ? AND period = ?", rec.EmployeeDID, rec.Period).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to reload payroll record: %w", err)
		}
		*rec = stored
		return nil
	})
}

func (l *Ledger) FindByPeriod(ctx context.Context, employeeDID, period string) (*models.PayrollRecord, error) {
	var rec models.PayrollRecord
	err := l.DB.WithContext(ctx).Where("employee_did = ? AND period = ?", employeeDID, period).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll record: %w", err)
	}
	return &rec, nil
}

// Find resolves either a local record id or an on-chain payroll id.
func (l *Ledger) Find(ctx context.Context, id string) (*models.PayrollRecord, error) {
	var rec models.PayrollRecord
	err := l.DB.WithContext(ctx).Where("id = ? OR chain_payroll_id = ?", id, id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll record: %w", err)
	}
	return &rec, nil
}

func (l *Ledger) ListByEmployee(ctx context.Context, employeeDID string) ([]models.PayrollRecord, error) {
	var recs []models.PayrollRecord
	if err := l.DB.WithContext(ctx).Where("employee_did = ?", employeeDID).Order("period DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	return recs, nil
}

func (l *Ledger) ListByPeriod(ctx context.Context, period string) ([]models.PayrollRecord, error) {
	var recs []models.PayrollRecord
	if err := l.DB.WithContext(ctx).Where("period = ?", period).Order("employee_did").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	return recs, nil
}

// MarkPaid only moves a Pending record.
func (l *Ledger) MarkPaid(ctx context.Context, rec *models.PayrollRecord, txHash string) error {
	res := l.DB.WithContext(ctx).Model(rec).
		Where("status = ?", models.PayrollStatusPending).
		Updates(map[string]interface{}{
			"status":                models.PayrollStatusPaid,
			"paid_transaction_hash": txHash,
			"paid_at":               time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark payroll paid: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyPaid
	}
	return l.DB.WithContext(ctx).First(rec, "id = ?", rec.ID).Error
}
