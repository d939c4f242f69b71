package services

import (
	"context"
	"errors"
	"fmt"

	"dapp_payroll/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileStore struct {
	DB *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{DB: db}
}

func (s *ProfileStore) Get(ctx context.Context, employeeDID string) (*models.SalaryProfile, error) {
	var p models.SalaryProfile
	err := s.DB.WithContext(ctx).First(&p, "employee_did = ?", employeeDID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load salary profile: %w", err)
	}
	return &p, nil
}

func (s *ProfileStore) Save(ctx context.Context, p *models.SalaryProfile) error {
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "employee_did"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"base_salary", "kpi_bonus_percent", "allowance", "tax_rate", "overtime_rate",
			"chain_synced", "chain_transaction_hash", "salary_updated_at", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("failed to save salary profile: %w", err)
	}
	return nil
}

// Employee looks up the registry entry payroll anchors to.
func (s *ProfileStore) Employee(ctx context.Context, employeeDID string) (*models.Employee, error) {
	var e models.Employee
	err := s.DB.WithContext(ctx).First(&e, "employee_did = ?", employeeDID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	return &e, nil
}
