package services

import (
	"context"
	"fmt"
	"time"

	"dapp_payroll/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	periodLayout        = "2006-01"
	standardHoursPerDay = 8
)

// PeriodData is the aggregated attendance and KPI picture for one employee
// and one month.
type PeriodData struct {
	WorkingDays   int64           `json:"workingDays"`
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
	TotalHours    decimal.Decimal `json:"totalHours"`
	KpiScore      decimal.Decimal `json:"kpiScore"`
}

// Inputs rounds the fractional figures into the integers the formula takes.
func (d PeriodData) Inputs() PeriodInputs {
	return PeriodInputs{
		KpiScore:      d.KpiScore.Round(0).IntPart(),
		WorkingDays:   d.WorkingDays,
		OvertimeHours: d.OvertimeHours.Round(0).IntPart(),
	}
}

// ParsePeriod returns the half-open [start, end) range of a YYYY-MM period.
func ParsePeriod(period string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(periodLayout, period, time.UTC)
	if err != nil || len(period) != len(periodLayout) {
		return time.Time{}, time.Time{}, invalid("period", "%q must be formatted as YYYY-MM", period)
	}
	return start, start.AddDate(0, 1, 0), nil
}

type PeriodDataAggregator struct {
	DB *gorm.DB
}

func NewPeriodDataAggregator(db *gorm.DB) *PeriodDataAggregator {
	return &PeriodDataAggregator{DB: db}
}

var countedDayTypes = []string{models.DayTypeRegular, models.DayTypeWeekend, models.DayTypeHoliday}

func (a *PeriodDataAggregator) Aggregate(ctx context.Context, employeeDID, period string) (PeriodData, error) {
	start, end, err := ParsePeriod(period)
	if err != nil {
		return PeriodData{}, err
	}

	var days []models.Attendance
	if err := a.DB.WithContext(ctx).
		Where("employee_did = ? AND date >= ? AND date < ?", employeeDID, start, end).
		Where("day_type IN ?", countedDayTypes).
		Where("total_hours IS NOT NULL").
		Find(&days).Error; err != nil {
		return PeriodData{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	out := PeriodData{OvertimeHours: decimal.Zero, TotalHours: decimal.Zero, KpiScore: decimal.Zero}
	standard := decimal.NewFromInt(standardHoursPerDay)
	for _, d := range days {
		if d.TotalHours == nil {
			continue
		}
		hours := decimal.NewFromFloat(*d.TotalHours)
		out.WorkingDays++
		out.TotalHours = out.TotalHours.Add(hours)
		if hours.GreaterThan(standard) {
			out.OvertimeHours = out.OvertimeHours.Add(hours.Sub(standard))
		}
	}

	score, err := a.kpiScore(ctx, employeeDID, period)
	if err != nil {
		return PeriodData{}, err
	}
	out.KpiScore = score
	return out, nil
}

// kpiScore averages approved evaluations only, rounded to two decimals.
func (a *PeriodDataAggregator) kpiScore(ctx context.Context, employeeDID, period string) (decimal.Decimal, error) {
	var evals []models.KpiEvaluation
	if err := a.DB.WithContext(ctx).
		Where("employee_did = ? AND period = ? AND status = ?", employeeDID, period, models.KpiStatusApproved).
		Find(&evals).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to load KPI evaluations: %w", err)
	}
	if len(evals) == 0 {
		return decimal.Zero, nil
	}

	sum := decimal.Zero
	for _, e := range evals {
		sum = sum.Add(decimal.NewFromFloat(e.Score))
	}
	return sum.Div(decimal.NewFromInt(int64(len(evals)))).Round(2), nil
}
