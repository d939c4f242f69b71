package handlers

import (
	"dapp_payroll/middleware"
	"dapp_payroll/models"
	"dapp_payroll/services"
	"dapp_payroll/types"

	"github.com/gofiber/fiber/v2"
)

type SetSalaryRequest struct {
	EmployeeID      string `json:"employeeId"`
	BaseSalary      int64  `json:"baseSalary"`
	KpiBonusPercent int64  `json:"kpiBonusPercent"`
	Allowance       int64  `json:"allowance"`
	TaxRate         int64  `json:"taxRate"`
	OvertimeRate    *int64 `json:"overtimeRate"`
}

func (r SetSalaryRequest) profile() models.SalaryProfile {
	overtime := int64(services.DefaultOvertimeRate)
	if r.OvertimeRate != nil {
		overtime = *r.OvertimeRate
	}
	return models.SalaryProfile{
		EmployeeDID:     r.EmployeeID,
		BaseSalary:      r.BaseSalary,
		KpiBonusPercent: r.KpiBonusPercent,
		Allowance:       r.Allowance,
		TaxRate:         r.TaxRate,
		OvertimeRate:    overtime,
	}
}

// Salary Management
func SetSalary(c *fiber.Ctx) error {
	return saveSalary(c, false)
}

func UpdateSalary(c *fiber.Ctx) error {
	return saveSalary(c, true)
}

func saveSalary(c *fiber.Ctx, update bool) error {
	var req SetSalaryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	profile, err := Payroll.SetSalary(c.UserContext(), middleware.ActorID(c), req.profile(), update)
	if err != nil {
		return respondError(c, err)
	}

	message := "Salary set successfully"
	if update {
		message = "Salary updated successfully"
	}
	if !profile.ChainSynced {
		message += " (blockchain unavailable, saved locally)"
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Message: message,
		Data:    profile,
	})
}

func GetSalary(c *fiber.Ctx) error {
	profile, err := Payroll.Profiles.Get(c.UserContext(), c.Params("employeeId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Data:    profile,
	})
}
