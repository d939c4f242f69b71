package handlers

import (
	"dapp_payroll/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, authz *middleware.Authorizer) {
	app.Get("/health", Health)

	payroll := app.Group("/payroll", middleware.RequireAuth)

	read := authz.Require(middleware.ObjPayroll, middleware.ActRead)
	write := authz.Require(middleware.ObjPayroll, middleware.ActWrite)

	payroll.Post("/salary/set", write, SetSalary)
	payroll.Put("/salary/update", write, UpdateSalary)
	payroll.Get("/salary/:employeeId", read, func(c *fiber.Ctx) error {
		if !canView(c, c.Params("employeeId")) {
			return forbidden(c)
		}
		return GetSalary(c)
	})

	payroll.Post("/create-manual", write, CreatePayrollManual)
	payroll.Post("/create-with-db", write, CreatePayrollWithDB)
	payroll.Post("/calculate-preview-db", read, CalculatePreviewDB)
	payroll.Post("/calculate-salary", read, CalculateSalary)
	payroll.Post("/pay/:payrollId", write, PayEmployee)

	balance := authz.Require(middleware.ObjBalance, middleware.ActRead)
	payroll.Get("/balance/summary", balance, GetBalanceSummary)
	payroll.Get("/balance/contract", balance, GetContractBalance)
	payroll.Post("/deposit", write, DepositFunds)

	payroll.Get("/employee/:employeeId", read, GetEmployeePayrolls)
	payroll.Get("/transactions/:employeeId", read, GetEmployeeTransactions)
	payroll.Get("/period/:period", authz.Require(middleware.ObjRecords, middleware.ActRead), GetPeriodPayrolls)
	payroll.Get("/record/:payrollId", read, GetPayrollRecord)
	payroll.Get("/record/:payrollId/payslip", read, DownloadPayslip)
}
