package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"dapp_payroll/models"
	"dapp_payroll/utils"

	"go.uber.org/zap"
)

// PayrollSynchronizer computes payroll, anchors it on chain when possible and
// keeps the local ledger in step.
type PayrollSynchronizer struct {
	Profiles   *ProfileStore
	Ledger     *Ledger
	Aggregator *PeriodDataAggregator
	Chain      ChainGateway
	Locker     Locker
	Audit      AuditSink
}

// SalaryPreview has the same shape whether it came from the chain or the
// local formula.
type SalaryPreview struct {
	EmployeeDID string           `json:"employeeId"`
	Period      string           `json:"period"`
	Source      string           `json:"source"`
	Inputs      PeriodInputs     `json:"inputs"`
	PeriodData  PeriodData       `json:"periodData"`
	Components  SalaryComponents `json:"components"`
}

// SetSalary creates or overwrites a profile. With update set the profile must
// already exist.
func (s *PayrollSynchronizer) SetSalary(ctx context.Context, actorID string, p models.SalaryProfile, update bool) (*models.SalaryProfile, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}

	employee, err := s.Profiles.Employee(ctx, p.EmployeeDID)
	if err != nil {
		return nil, err
	}
	if _, err := ValidateWalletAddress(employee.WalletAddress); err != nil {
		return nil, err
	}

	before, err := s.Profiles.Get(ctx, p.EmployeeDID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	if update && before == nil {
		return nil, ErrProfileNotFound
	}

	var res TxResult
	if update {
		res, err = s.Chain.UpdateSalary(ctx, p)
	} else {
		res, err = s.Chain.SetSalary(ctx, p)
	}
	switch {
	case err == nil:
		p.ChainSynced = true
		p.ChainTransactionHash = &res.TransactionHash
	case IsFallbackEligible(err):
		utils.Logger.Warn("Salary saved without on-chain anchor",
			zap.String("employee_did", p.EmployeeDID), zap.Error(err))
		p.ChainSynced = false
		p.ChainTransactionHash = nil
	default:
		return nil, err
	}

	p.SalaryUpdatedAt = time.Now().UTC()
	if err := s.Profiles.Save(ctx, &p); err != nil {
		return nil, err
	}

	action := AuditSalarySet
	if update {
		action = AuditSalaryUpdated
	}
	s.Audit.Record(ctx, actorID, action, "salary_profile", p.EmployeeDID, before, p)
	return &p, nil
}

// CreateManual creates a payroll from caller supplied inputs.
func (s *PayrollSynchronizer) CreateManual(ctx context.Context, actorID, employeeDID, period string, in PeriodInputs) (*models.PayrollRecord, error) {
	if _, _, err := ParsePeriod(period); err != nil {
		return nil, err
	}
	return s.create(ctx, actorID, employeeDID, period, in)
}

// CreateFromRecords creates a payroll from stored attendance and KPI data.
func (s *PayrollSynchronizer) CreateFromRecords(ctx context.Context, actorID, employeeDID, period string) (*models.PayrollRecord, *PeriodData, error) {
	data, err := s.Aggregator.Aggregate(ctx, employeeDID, period)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.create(ctx, actorID, employeeDID, period, data.Inputs())
	if err != nil {
		return nil, nil, err
	}
	return rec, &data, nil
}

func (s *PayrollSynchronizer) create(ctx context.Context, actorID, employeeDID, period string, in PeriodInputs) (*models.PayrollRecord, error) {
	if employeeDID == "" {
		return nil, invalid("employeeId", "is required")
	}
	if err := ValidateInputs(in); err != nil {
		return nil, err
	}

	release, err := s.Locker.Acquire(ctx, payrollLockKey(employeeDID, period))
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.Ledger.FindByPeriod(ctx, employeeDID, period)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.PayrollStatusPaid {
		return nil, ErrAlreadyPaid
	}

	profile, err := s.Profiles.Get(ctx, employeeDID)
	if err != nil {
		return nil, err
	}
	c := ComputeSalary(*profile, in)

	rec := models.PayrollRecord{
		EmployeeDID:      employeeDID,
		Period:           period,
		KpiScore:         in.KpiScore,
		WorkingDays:      in.WorkingDays,
		OvertimeHours:    in.OvertimeHours,
		BaseSalaryActual: c.BaseSalaryActual,
		KpiBonus:         c.KpiBonus,
		Allowance:        c.Allowance,
		OvertimeBonus:    c.OvertimeBonus,
		GrossSalary:      c.GrossSalary,
		TaxAmount:        c.TaxAmount,
		NetSalary:        c.NetSalary,
		Status:           models.PayrollStatusPending,
		Source:           models.PayrollSourceLocal,
	}
	if existing != nil {
		rec.ID = existing.ID
		// an anchored payroll is never re-submitted; repeating the same
		// inputs returns the stored record
		if existing.ChainPayrollID != nil {
			if existing.RecordHash == RecordHash(rec) {
				return existing, nil
			}
			return nil, ErrAlreadyAnchored
		}
	}

	chainRes, err := s.Chain.CreatePayroll(ctx, employeeDID, period, in)
	switch {
	case err == nil:
		rec.Source = models.PayrollSourceChain
		rec.ChainTransactionHash = &chainRes.TransactionHash
		if chainRes.PayrollID != nil {
			id := chainRes.PayrollID.String()
			rec.ChainPayrollID = &id
		}
		if chainRes.NetSalary != nil && chainRes.NetSalary.Cmp(big.NewInt(c.NetSalary)) != 0 {
			utils.Logger.Warn("On-chain net salary differs from local formula",
				zap.String("employee_did", employeeDID),
				zap.String("period", period),
				zap.String("chain_net", chainRes.NetSalary.String()),
				zap.Int64("local_net", c.NetSalary))
		}
	case IsFallbackEligible(err):
		utils.Logger.Warn("Chain unavailable, payroll computed locally",
			zap.String("employee_did", employeeDID),
			zap.String("period", period),
			zap.Error(err))
	default:
		return nil, err
	}

	if err := s.Ledger.Upsert(ctx, &rec); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, actorID, AuditPayrollCreated, "payroll_record", rec.ID, existing, rec)
	return &rec, nil
}

// Preview computes from stored attendance and KPI data without persisting.
// Any chain failure falls back to the local formula.
func (s *PayrollSynchronizer) Preview(ctx context.Context, employeeDID, period string) (*SalaryPreview, error) {
	data, err := s.Aggregator.Aggregate(ctx, employeeDID, period)
	if err != nil {
		return nil, err
	}
	out := &SalaryPreview{EmployeeDID: employeeDID, Period: period, Inputs: data.Inputs(), PeriodData: data}
	if err := s.preview(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// PreviewManual is Preview for caller supplied inputs.
func (s *PayrollSynchronizer) PreviewManual(ctx context.Context, employeeDID string, in PeriodInputs) (*SalaryPreview, error) {
	if employeeDID == "" {
		return nil, invalid("employeeId", "is required")
	}
	out := &SalaryPreview{EmployeeDID: employeeDID, Inputs: in}
	if err := s.preview(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PayrollSynchronizer) preview(ctx context.Context, out *SalaryPreview) error {
	if err := ValidateInputs(out.Inputs); err != nil {
		return err
	}

	profile, profileErr := s.Profiles.Get(ctx, out.EmployeeDID)
	if profileErr != nil && !errors.Is(profileErr, ErrProfileNotFound) {
		return profileErr
	}
	var local SalaryComponents
	if profile != nil {
		local = ComputeSalary(*profile, out.Inputs)
	}

	chainComp, err := s.Chain.CalculateNetSalary(ctx, out.EmployeeDID, out.Inputs)
	if err == nil {
		chainComp.DailyBaseSalary = local.DailyBaseSalary
		chainComp.HourlyRate = local.HourlyRate
		if profile != nil && chainComp.NetSalary != local.NetSalary {
			utils.Logger.Warn("On-chain preview differs from local formula",
				zap.String("employee_did", out.EmployeeDID),
				zap.Int64("chain_net", chainComp.NetSalary),
				zap.Int64("local_net", local.NetSalary))
		}
		out.Source = models.PayrollSourceChain
		out.Components = chainComp
		return nil
	}

	if profile == nil {
		return profileErr
	}
	utils.Logger.Info("Using local salary preview", zap.String("employee_did", out.EmployeeDID), zap.Error(err))
	out.Source = models.PayrollSourceLocal
	out.Components = local
	return nil
}

// Transactions reads the employee's on-chain transaction log. There is no
// local fallback.
func (s *PayrollSynchronizer) Transactions(ctx context.Context, employeeDID string) ([]ChainTransaction, error) {
	if employeeDID == "" {
		return nil, invalid("employeeId", "is required")
	}
	return s.Chain.EmployeeTransactions(ctx, employeeDID)
}

// Pay moves a Pending record to Paid once the chain transfer succeeds. On
// failure the record is left untouched.
func (s *PayrollSynchronizer) Pay(ctx context.Context, actorID, id string) (*models.PayrollRecord, error) {
	rec, err := s.Ledger.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.Locker.Acquire(ctx, payrollLockKey(rec.EmployeeDID, rec.Period))
	if err != nil {
		return nil, err
	}
	defer release()

	// reload under the lease
	if rec, err = s.Ledger.Find(ctx, rec.ID); err != nil {
		return nil, err
	}
	if rec.Status == models.PayrollStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if rec.ChainPayrollID == nil || *rec.ChainPayrollID == "" {
		return nil, ErrNotAnchored
	}
	payrollID, ok := new(big.Int).SetString(*rec.ChainPayrollID, 10)
	if !ok {
		return nil, fmt.Errorf("stored chain payroll id %q is not a number", *rec.ChainPayrollID)
	}

	res, err := s.Chain.PayEmployee(ctx, payrollID)
	if err != nil {
		utils.Logger.Error("Payroll payment failed",
			zap.String("payroll_id", rec.ID),
			zap.String("chain_payroll_id", *rec.ChainPayrollID),
			zap.Error(err))
		return nil, err
	}

	before := *rec
	if err := s.Ledger.MarkPaid(ctx, rec, res.TransactionHash); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, actorID, AuditPayrollPaid, "payroll_record", rec.ID, before, rec)
	return rec, nil
}

// Deposit funds the contract. There is no local fallback.
func (s *PayrollSynchronizer) Deposit(ctx context.Context, actorID string, amount *big.Int) (TxResult, error) {
	if amount == nil || amount.Sign() <= 0 {
		return TxResult{}, invalid("amount", "must be a positive integer")
	}
	res, err := s.Chain.Deposit(ctx, amount)
	if err != nil {
		return TxResult{}, err
	}
	s.Audit.Record(ctx, actorID, AuditFundsDeposited, "contract", res.TransactionHash, nil,
		map[string]string{"amount": amount.String()})
	return res, nil
}
