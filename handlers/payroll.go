package handlers

import (
	"errors"
	"fmt"

	"dapp_payroll/middleware"
	"dapp_payroll/models"
	"dapp_payroll/services"
	"dapp_payroll/types"

	"github.com/gofiber/fiber/v2"
)

type CreatePayrollManualRequest struct {
	EmployeeID    string   `json:"employeeId"`
	Period        string   `json:"period"`
	KpiScore      *float64 `json:"kpiScore"`
	WorkingDays   *int64   `json:"workingDays"`
	OvertimeHours *float64 `json:"overtimeHours"`
}

type PayrollWithDBRequest struct {
	EmployeeID string `json:"employeeId"`
	Period     string `json:"period"`
}

func (r PayrollWithDBRequest) validate() error {
	if r.EmployeeID == "" {
		return errors.New("employeeId is required")
	}
	if r.Period == "" {
		return errors.New("period is required")
	}
	return nil
}

// canView lets employees read only their own payroll data.
func canView(c *fiber.Ctx, employeeDID string) bool {
	role, _ := c.Locals("role").(string)
	if role == middleware.RoleHRAdmin || role == middleware.RoleSuperAdmin {
		return true
	}
	return employeeDID == middleware.ActorID(c)
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(types.APIResponse{
		Success: false,
		Message: types.ErrForbidden,
	})
}

func payrollMessage(rec *models.PayrollRecord) string {
	if rec.Source == models.PayrollSourceLocal {
		return "Payroll created locally (blockchain unavailable)"
	}
	return "Payroll created successfully"
}

// inputs applies the manual defaults: 22 working days, no overtime.
func (r CreatePayrollManualRequest) inputs() services.PeriodInputs {
	in := services.PeriodInputs{
		KpiScore:    services.RoundInput(*r.KpiScore),
		WorkingDays: services.StandardWorkingDays,
	}
	if r.WorkingDays != nil {
		in.WorkingDays = *r.WorkingDays
	}
	if r.OvertimeHours != nil {
		in.OvertimeHours = services.RoundInput(*r.OvertimeHours)
	}
	return in
}

func CreatePayrollManual(c *fiber.Ctx) error {
	var req CreatePayrollManualRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.EmployeeID == "" || req.Period == "" || req.KpiScore == nil {
		return badRequest(c, "employeeId, period and kpiScore are required")
	}
	in := req.inputs()

	rec, err := Payroll.CreateManual(c.UserContext(), middleware.ActorID(c), req.EmployeeID, req.Period, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(types.APIResponse{
		Success: true,
		Message: payrollMessage(rec),
		Data:    rec,
	})
}

func CreatePayrollWithDB(c *fiber.Ctx) error {
	var req PayrollWithDBRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	rec, data, err := Payroll.CreateFromRecords(c.UserContext(), middleware.ActorID(c), req.EmployeeID, req.Period)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(types.APIResponse{
		Success: true,
		Message: payrollMessage(rec),
		Data: fiber.Map{
			"record":     rec,
			"periodData": data,
		},
	})
}

func CalculatePreviewDB(c *fiber.Ctx) error {
	var req PayrollWithDBRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if !canView(c, req.EmployeeID) {
		return forbidden(c)
	}

	preview, err := Payroll.Preview(c.UserContext(), req.EmployeeID, req.Period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Data:    preview,
	})
}

// CalculateSalary previews caller supplied inputs.
func CalculateSalary(c *fiber.Ctx) error {
	var req CreatePayrollManualRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.EmployeeID == "" || req.KpiScore == nil {
		return badRequest(c, "employeeId and kpiScore are required")
	}
	if !canView(c, req.EmployeeID) {
		return forbidden(c)
	}

	preview, err := Payroll.PreviewManual(c.UserContext(), req.EmployeeID, req.inputs())
	if err != nil {
		return respondError(c, err)
	}
	preview.Period = req.Period
	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Salary calculated successfully",
		Data:    preview,
	})
}

func GetEmployeeTransactions(c *fiber.Ctx) error {
	did := c.Params("employeeId")
	if !canView(c, did) {
		return forbidden(c)
	}
	txs, err := Payroll.Transactions(c.UserContext(), did)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Data:    txs,
	})
}

func PayEmployee(c *fiber.Ctx) error {
	rec, err := Payroll.Pay(c.UserContext(), middleware.ActorID(c), c.Params("payrollId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Employee paid successfully",
		Data:    rec,
	})
}

func GetEmployeePayrolls(c *fiber.Ctx) error {
	did := c.Params("employeeId")
	if !canView(c, did) {
		return forbidden(c)
	}
	recs, err := Payroll.Ledger.ListByEmployee(c.UserContext(), did)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Data:    recs,
	})
}

func GetPeriodPayrolls(c *fiber.Ctx) error {
	period := c.Params("period")
	if _, _, err := services.ParsePeriod(period); err != nil {
		return respondError(c, err)
	}
	recs, err := Payroll.Ledger.ListByPeriod(c.UserContext(), period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Data:    recs,
	})
}

func findVisibleRecord(c *fiber.Ctx) (*models.PayrollRecord, error) {
	rec, err := Payroll.Ledger.Find(c.UserContext(), c.Params("payrollId"))
	if err != nil {
		return nil, err
	}
	if !canView(c, rec.EmployeeDID) {
		return nil, fiber.NewError(fiber.StatusForbidden, types.ErrForbidden)
	}
	return rec, nil
}

func GetPayrollRecord(c *fiber.Ctx) error {
	rec, err := findVisibleRecord(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Data:    rec,
	})
}

func DownloadPayslip(c *fiber.Ctx) error {
	rec, err := findVisibleRecord(c)
	if err != nil {
		return respondError(c, err)
	}

	employee, err := Payroll.Profiles.Employee(c.UserContext(), rec.EmployeeDID)
	if err != nil && !errors.Is(err, services.ErrEmployeeNotFound) {
		return respondError(c, err)
	}

	pdf, err := services.RenderPayslip(*rec, employee)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="payslip-%s-%s.pdf"`, rec.Period, rec.EmployeeDID))
	return c.Send(pdf)
}
