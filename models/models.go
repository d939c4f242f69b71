package models

import (
	"time"
)

const (
	DayTypeRegular             = "regular"
	DayTypeWeekend             = "weekend"
	DayTypeHoliday             = "holiday"
	DayTypeAnnualLeave         = "annual_leave"
	DayTypeSickLeave           = "sick_leave"
	DayTypeUnauthorizedAbsence = "unauthorized_absence"
)

const (
	KpiStatusDraft     = "draft"
	KpiStatusSubmitted = "submitted"
	KpiStatusApproved  = "approved"
	KpiStatusClosed    = "closed"
)

const (
	PayrollStatusPending = "Pending"
	PayrollStatusPaid    = "Paid"
	PayrollStatusFailed  = "Failed"

	PayrollSourceChain = "chain"
	PayrollSourceLocal = "local"
)

// Employee is the slice of the employee registry payroll reads: the DID and
// the wallet salaries are anchored to.
type Employee struct {
	EmployeeDID   string    `gorm:"column:employee_did;primaryKey;size:36" json:"employee_did"`
	FullName      string    `json:"full_name"`
	WalletAddress string    `gorm:"size:42" json:"wallet_address"`
	Department    string    `json:"department"`
	Status        string    `gorm:"not null;default:'active'" json:"status"` // active, inactive, left_company
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SalaryProfile struct {
	EmployeeDID          string    `gorm:"column:employee_did;primaryKey;size:36" json:"employeeId"`
	BaseSalary           int64     `gorm:"not null" json:"baseSalary"`
	KpiBonusPercent      int64     `gorm:"not null" json:"kpiBonusPercent"`
	Allowance            int64     `gorm:"not null" json:"allowance"`
	TaxRate              int64     `gorm:"not null" json:"taxRate"`
	OvertimeRate         int64     `gorm:"not null;default:150" json:"overtimeRate"`
	ChainSynced          bool      `json:"chainSynced"`
	ChainTransactionHash *string   `gorm:"size:66" json:"chainTransactionHash,omitempty"`
	SalaryUpdatedAt      time.Time `json:"salaryUpdatedAt"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type Attendance struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	EmployeeDID string    `gorm:"column:employee_did;size:36;not null;uniqueIndex:idx_attendance_employee_date,priority:1" json:"employee_did"`
	Date        time.Time `gorm:"not null;uniqueIndex:idx_attendance_employee_date,priority:2" json:"date"`
	DayType     string    `gorm:"not null;default:'regular'" json:"day_type"`
	TotalHours  *float64  `json:"total_hours"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type KpiEvaluation struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	EmployeeDID string    `gorm:"column:employee_did;size:36;not null;index:idx_kpi_employee_period,priority:1" json:"employee_did"`
	KpiID       string    `gorm:"size:36;not null" json:"kpi_id"`
	Period      string    `gorm:"size:7;not null;index:idx_kpi_employee_period,priority:2" json:"period"`
	Score       float64   `gorm:"not null" json:"score"`
	Status      string    `gorm:"not null;default:'draft'" json:"status"` // draft, submitted, approved, closed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PayrollRecord mirrors one employee's payroll for one period. At most one
// row exists per (employee, period).
type PayrollRecord struct {
	ID                   string     `gorm:"primaryKey;size:36" json:"id"`
	EmployeeDID          string     `gorm:"column:employee_did;size:36;not null;uniqueIndex:idx_payroll_employee_period,priority:1" json:"employeeId"`
	Period               string     `gorm:"size:7;not null;uniqueIndex:idx_payroll_employee_period,priority:2;index" json:"period"`
	KpiScore             int64      `json:"kpiScore"`
	WorkingDays          int64      `json:"workingDays"`
	OvertimeHours        int64      `json:"overtimeHours"`
	BaseSalaryActual     int64      `json:"baseSalaryActual"`
	KpiBonus             int64      `json:"kpiBonus"`
	Allowance            int64      `json:"allowance"`
	OvertimeBonus        int64      `json:"overtimeBonus"`
	GrossSalary          int64      `json:"grossSalary"`
	TaxAmount            int64      `json:"taxAmount"`
	NetSalary            int64      `json:"netSalary"`
	Status               string     `gorm:"not null;default:'Pending'" json:"status"`
	Source               string     `gorm:"not null" json:"source"`
	ChainTransactionHash *string    `gorm:"size:66" json:"chainTransactionHash"`
	ChainPayrollID       *string    `gorm:"size:78;index" json:"chainPayrollId"`
	PaidTransactionHash  *string    `gorm:"size:66" json:"paidTransactionHash,omitempty"`
	PaidAt               *time.Time `json:"paidAt,omitempty"`
	RecordHash           string     `gorm:"size:66" json:"recordHash"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type AuditLog struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ActorID    string    `gorm:"size:36" json:"actor_id"`
	Action     string    `gorm:"not null;index" json:"action"`
	EntityType string    `gorm:"not null" json:"entity_type"`
	EntityID   string    `gorm:"not null;index" json:"entity_id"`
	BeforeJSON string    `gorm:"type:text" json:"before,omitempty"`
	AfterJSON  string    `gorm:"type:text" json:"after,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
