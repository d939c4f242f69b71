package services

import (
	"math"

	"dapp_payroll/models"
)

const (
	StandardWorkingDays         = 22
	StandardWorkingHoursPerYear = 2080
	DefaultOvertimeRate         = 150

	// MaxMoneyAmount bounds base salary and allowance so every intermediate
	// product below stays inside int64.
	MaxMoneyAmount = int64(100_000_000_000_000)
	maxWorkingDays = 31
	maxOvertime    = 744
)

// PeriodInputs are the integer values handed to both the contract and the
// local formula.
type PeriodInputs struct {
	KpiScore      int64 `json:"kpiScore"`
	WorkingDays   int64 `json:"workingDays"`
	OvertimeHours int64 `json:"overtimeHours"`
}

type SalaryComponents struct {
	DailyBaseSalary  int64 `json:"dailyBaseSalary"`
	BaseSalaryActual int64 `json:"baseSalaryActual"`
	KpiBonus         int64 `json:"kpiBonus"`
	Allowance        int64 `json:"allowance"`
	HourlyRate       int64 `json:"hourlyRate"`
	OvertimeBonus    int64 `json:"overtimeBonus"`
	GrossSalary      int64 `json:"grossSalary"`
	TaxAmount        int64 `json:"taxAmount"`
	NetSalary        int64 `json:"netSalary"`
}

// RoundInput rounds a fractional KPI score or overtime figure the way it is
// sent to the contract.
func RoundInput(v float64) int64 {
	return int64(math.Round(v))
}

// ComputeSalary is the integer payroll formula. Division truncates at the same
// stages as the contract, so both paths agree to the unit.
func ComputeSalary(p models.SalaryProfile, in PeriodInputs) SalaryComponents {
	var c SalaryComponents

	c.DailyBaseSalary = p.BaseSalary / StandardWorkingDays
	c.BaseSalaryActual = c.DailyBaseSalary * in.WorkingDays
	c.KpiBonus = p.BaseSalary * p.KpiBonusPercent * in.KpiScore / 10000
	c.Allowance = p.Allowance
	c.HourlyRate = p.BaseSalary * 12 / StandardWorkingHoursPerYear
	c.OvertimeBonus = c.HourlyRate * in.OvertimeHours * p.OvertimeRate / 100
	c.GrossSalary = c.BaseSalaryActual + c.KpiBonus + c.Allowance + c.OvertimeBonus
	c.TaxAmount = c.GrossSalary * p.TaxRate / 100
	c.NetSalary = c.GrossSalary - c.TaxAmount

	return c
}

func ValidateProfile(p models.SalaryProfile) error {
	if p.EmployeeDID == "" {
		return invalid("employeeId", "is required")
	}
	if p.BaseSalary < 0 || p.BaseSalary > MaxMoneyAmount {
		return invalid("baseSalary", "must be between 0 and %d", MaxMoneyAmount)
	}
	if p.KpiBonusPercent < 0 || p.KpiBonusPercent > 100 {
		return invalid("kpiBonusPercent", "must be between 0 and 100")
	}
	if p.Allowance < 0 || p.Allowance > MaxMoneyAmount {
		return invalid("allowance", "must be between 0 and %d", MaxMoneyAmount)
	}
	if p.TaxRate < 0 || p.TaxRate > 100 {
		return invalid("taxRate", "must be between 0 and 100")
	}
	if p.OvertimeRate < 0 || p.OvertimeRate > 1000 {
		return invalid("overtimeRate", "must be between 0 and 1000")
	}
	return nil
}

func ValidateInputs(in PeriodInputs) error {
	if in.KpiScore < 0 || in.KpiScore > 100 {
		return invalid("kpiScore", "must be between 0 and 100")
	}
	if in.WorkingDays < 0 || in.WorkingDays > maxWorkingDays {
		return invalid("workingDays", "must be between 0 and %d", maxWorkingDays)
	}
	if in.OvertimeHours < 0 || in.OvertimeHours > maxOvertime {
		return invalid("overtimeHours", "must be between 0 and %d", maxOvertime)
	}
	return nil
}
