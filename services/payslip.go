package services

import (
	"bytes"
	"fmt"
	"strconv"

	"dapp_payroll/models"

	"github.com/jung-kurt/gofpdf"
)

// RenderPayslip draws a single-page PDF of a payroll record.
func RenderPayslip(rec models.PayrollRecord, employee *models.Employee) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	if employee != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employee.FullName))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Department: %s", employee.Department))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Employee ID: %s", rec.EmployeeDID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", rec.Period))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s (%s)", rec.Status, rec.Source))
	pdf.Ln(10)

	pdf.Cell(0, 8, fmt.Sprintf("Working days: %d   KPI score: %d   Overtime hours: %d",
		rec.WorkingDays, rec.KpiScore, rec.OvertimeHours))
	pdf.Ln(10)

	rows := []struct {
		label  string
		amount int64
	}{
		{"Base salary (actual)", rec.BaseSalaryActual},
		{"KPI bonus", rec.KpiBonus},
		{"Allowance", rec.Allowance},
		{"Overtime bonus", rec.OvertimeBonus},
		{"Gross", rec.GrossSalary},
		{"Tax", rec.TaxAmount},
		{"Net", rec.NetSalary},
	}
	for _, r := range rows {
		pdf.CellFormat(80, 8, r.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, formatAmount(r.amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 9)
	if rec.ChainTransactionHash != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Chain tx: %s", *rec.ChainTransactionHash))
		pdf.Ln(5)
	}
	if rec.PaidTransactionHash != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Payment tx: %s", *rec.PaidTransactionHash))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Record hash: %s", rec.RecordHash))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

// formatAmount groups thousands, e.g. 23547461 -> 23,547,461.
func formatAmount(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := false
	if s[0] == '-' {
		neg, s = true, s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
