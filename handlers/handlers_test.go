package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dapp_payroll/config"
	"dapp_payroll/database"
	"dapp_payroll/middleware"
	"dapp_payroll/models"
	"dapp_payroll/services"
	"dapp_payroll/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret = "handler-secret"
	hrRoleID   = "role-hr"
	wallet     = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	hrDID      = "9d1c2b3a-0000-4000-8000-000000000001"
)

var errRPCDown = fmt.Errorf("dial tcp 127.0.0.1:8545: %w", services.ErrChainUnreachable)

// stubChain answers every chain call with the local formula unless err is set.
type stubChain struct {
	mu       sync.Mutex
	err      error
	payErr   error
	profiles map[string]models.SalaryProfile
	nextID   int64
}

func (s *stubChain) SetSalary(ctx context.Context, p models.SalaryProfile) (services.TxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return services.TxResult{}, s.err
	}
	s.profiles[p.EmployeeDID] = p
	return services.TxResult{TransactionHash: "0xsalary"}, nil
}

func (s *stubChain) UpdateSalary(ctx context.Context, p models.SalaryProfile) (services.TxResult, error) {
	return s.SetSalary(ctx, p)
}

func (s *stubChain) CreatePayroll(ctx context.Context, did, period string, in services.PeriodInputs) (services.ChainPayroll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return services.ChainPayroll{}, s.err
	}
	s.nextID++
	net := services.ComputeSalary(s.profiles[did], in).NetSalary
	return services.ChainPayroll{PayrollID: big.NewInt(s.nextID), TransactionHash: "0xcreate", NetSalary: big.NewInt(net)}, nil
}

func (s *stubChain) PayEmployee(ctx context.Context, id *big.Int) (services.PaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payErr != nil {
		return services.PaymentResult{}, s.payErr
	}
	return services.PaymentResult{TransactionHash: "0xpay"}, nil
}

func (s *stubChain) CalculateNetSalary(ctx context.Context, did string, in services.PeriodInputs) (services.SalaryComponents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return services.SalaryComponents{}, s.err
	}
	return services.ComputeSalary(s.profiles[did], in), nil
}

func (s *stubChain) BalanceSummary(ctx context.Context) (services.ChainBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return services.ChainBalance{}, s.err
	}
	return services.ChainBalance{
		TotalDeposited:  big.NewInt(100),
		TotalPaid:       big.NewInt(40),
		ContractBalance: big.NewInt(60),
		IsBalanced:      true,
	}, nil
}

func (s *stubChain) Deposit(ctx context.Context, amount *big.Int) (services.TxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payErr != nil {
		return services.TxResult{}, s.payErr
	}
	return services.TxResult{TransactionHash: "0xdeposit"}, nil
}

func (s *stubChain) ContractBalance(ctx context.Context) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return big.NewInt(60), nil
}

func (s *stubChain) EmployeeTransactions(ctx context.Context, did string) ([]services.ChainTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return []services.ChainTransaction{{
		TransactionID:   "1",
		EmployeeDID:     did,
		Amount:          "23547461",
		TransactionType: "salary_payment",
		Timestamp:       time.Unix(1717200000, 0).UTC(),
		TxHash:          "0xpay",
	}}, nil
}

func setupTest(t *testing.T) (*fiber.App, *gorm.DB, *stubChain) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{JWTSecret: testSecret, HRAdminRoleID: hrRoleID}
	t.Cleanup(func() { config.AppConfig = prev })

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "handlers.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	chain := &stubChain{profiles: map[string]models.SalaryProfile{}}
	payroll := &services.PayrollSynchronizer{
		Profiles:   services.NewProfileStore(db),
		Ledger:     services.NewLedger(db),
		Aggregator: services.NewPeriodDataAggregator(db),
		Chain:      chain,
		Locker:     services.NewMemoryLocker(),
		Audit:      services.NewAuditLogger(db),
	}
	InitHandlers(db, payroll, services.NewBalanceReconciler(chain))

	authz, err := middleware.NewAuthorizer("")
	require.NoError(t, err)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, authz)
	return app, db, chain
}

func token(t *testing.T, did, roleID string) string {
	t.Helper()
	claims := middleware.Claims{
		EmployeeDID: did,
		RoleID:      roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func hrToken(t *testing.T) string {
	return token(t, hrDID, hrRoleID)
}

func doRequest(t *testing.T, app *fiber.App, method, path, bearer string, body interface{}) (int, types.APIResponse, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out types.APIResponse
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out, raw
}

func seedEmployee(t *testing.T, db *gorm.DB) string {
	t.Helper()
	did := uuid.New().String()
	require.NoError(t, db.Create(&models.Employee{
		EmployeeDID:   did,
		FullName:      "Tran Thi B",
		WalletAddress: wallet,
		Department:    "Finance",
		Status:        "active",
	}).Error)
	return did
}

func salaryBody(did string) fiber.Map {
	return fiber.Map{
		"employeeId":      did,
		"baseSalary":      22_000_000,
		"kpiBonusPercent": 10,
		"allowance":       500_000,
		"taxRate":         10,
	}
}

func manualBody(did string) fiber.Map {
	return fiber.Map{
		"employeeId":    did,
		"period":        "2024-05",
		"kpiScore":      80,
		"workingDays":   22,
		"overtimeHours": 10,
	}
}

func decode(t *testing.T, data interface{}, into interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, into))
}

func TestHealth(t *testing.T) {
	app, _, _ := setupTest(t)
	status, _, raw := doRequest(t, app, "GET", "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), `"database":"ok"`)
}

func TestSetSalary(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)

	status, resp, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, resp.Success)

	var profile models.SalaryProfile
	decode(t, resp.Data, &profile)
	assert.True(t, profile.ChainSynced)
	assert.Equal(t, int64(150), profile.OvertimeRate)

	status, resp, _ = doRequest(t, app, "GET", "/payroll/salary/"+did, hrToken(t), nil)
	assert.Equal(t, fiber.StatusOK, status)
	decode(t, resp.Data, &profile)
	assert.Equal(t, int64(22_000_000), profile.BaseSalary)
}

func TestSetSalaryFallsBackWhenChainDown(t *testing.T) {
	app, db, chain := setupTest(t)
	chain.err = errRPCDown
	did := seedEmployee(t, db)

	status, resp, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, resp.Message, "saved locally")

	var profile models.SalaryProfile
	decode(t, resp.Data, &profile)
	assert.False(t, profile.ChainSynced)
}

func TestSetSalaryValidation(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)

	body := salaryBody(did)
	body["taxRate"] = 101
	status, resp, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, types.ErrInvalidInput, resp.Message)

	status, _, _ = doRequest(t, app, "PUT", "/payroll/salary/update", hrToken(t), salaryBody(did))
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, _ = doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(uuid.New().String()))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestEmployeeCannotWrite(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)

	status, resp, _ := doRequest(t, app, "POST", "/payroll/salary/set", token(t, did, ""), salaryBody(did))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, types.ErrForbidden, resp.Message)

	status, _, _ = doRequest(t, app, "POST", "/payroll/salary/set", "", salaryBody(did))
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCreateManualAndPay(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)

	status, resp, _ := doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), manualBody(did))
	require.Equal(t, fiber.StatusCreated, status)

	var rec models.PayrollRecord
	decode(t, resp.Data, &rec)
	assert.Equal(t, models.PayrollSourceChain, rec.Source)
	assert.Equal(t, int64(1_903_845), rec.OvertimeBonus)
	assert.Equal(t, int64(23_547_461), rec.NetSalary)
	require.NotNil(t, rec.ChainPayrollID)

	status, resp, _ = doRequest(t, app, "POST", "/payroll/pay/"+rec.ID, hrToken(t), nil)
	require.Equal(t, fiber.StatusOK, status)
	decode(t, resp.Data, &rec)
	assert.Equal(t, models.PayrollStatusPaid, rec.Status)

	status, _, _ = doRequest(t, app, "POST", "/payroll/pay/"+*rec.ChainPayrollID, hrToken(t), nil)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestCreateManualRequiresKpiScore(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)

	body := manualBody(did)
	delete(body, "kpiScore")
	status, _, _ := doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), body)
	assert.Equal(t, fiber.StatusBadRequest, status)

	body = manualBody(did)
	body["period"] = "2024-13"
	status, _, _ = doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), body)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLocalRecordCannotBePaid(t *testing.T) {
	app, db, chain := setupTest(t)
	did := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)

	chain.err = errRPCDown
	status, resp, _ := doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), manualBody(did))
	require.Equal(t, fiber.StatusCreated, status)

	var rec models.PayrollRecord
	decode(t, resp.Data, &rec)
	assert.Equal(t, models.PayrollSourceLocal, rec.Source)
	assert.Nil(t, rec.ChainPayrollID)

	status, _, _ = doRequest(t, app, "POST", "/payroll/pay/"+rec.ID, hrToken(t), nil)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestChainFailureStatuses(t *testing.T) {
	app, db, chain := setupTest(t)
	did := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)

	chain.err = fmt.Errorf("estimate: %w", services.ErrGasEstimation)
	status, resp, _ := doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), manualBody(did))
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.False(t, resp.Success)

	chain.err = nil
	chain.payErr = fmt.Errorf("send: %w", services.ErrInsufficientFunds)
	status, _, _ = doRequest(t, app, "POST", "/payroll/deposit", hrToken(t), fiber.Map{"amount": "1000"})
	assert.Equal(t, fiber.StatusPaymentRequired, status)

	status, _, _ = doRequest(t, app, "POST", "/payroll/deposit", hrToken(t), fiber.Map{"amount": "-5"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDeposit(t *testing.T) {
	app, _, _ := setupTest(t)
	status, resp, _ := doRequest(t, app, "POST", "/payroll/deposit", hrToken(t), fiber.Map{"amount": "1000000000000000000"})
	require.Equal(t, fiber.StatusOK, status)

	var data map[string]string
	decode(t, resp.Data, &data)
	assert.Equal(t, "0xdeposit", data["transactionHash"])
	assert.Equal(t, "1000000000000000000", data["amount"])
}

func TestBalanceSummary(t *testing.T) {
	app, db, chain := setupTest(t)

	status, resp, _ := doRequest(t, app, "GET", "/payroll/balance/summary", hrToken(t), nil)
	require.Equal(t, fiber.StatusOK, status)
	var summary services.BalanceSummary
	decode(t, resp.Data, &summary)
	assert.Equal(t, "60", summary.ContractBalance)
	assert.True(t, summary.IsBalanced)

	chain.err = errRPCDown
	status, resp, _ = doRequest(t, app, "GET", "/payroll/balance/summary", hrToken(t), nil)
	require.Equal(t, fiber.StatusOK, status)
	decode(t, resp.Data, &summary)
	assert.Equal(t, "0", summary.ContractBalance)
	assert.True(t, summary.IsBalanced)

	did := seedEmployee(t, db)
	status, _, _ = doRequest(t, app, "GET", "/payroll/balance/summary", token(t, did, ""), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestEmployeeSeesOnlyOwnRecords(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)
	other := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)
	status, resp, _ := doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), manualBody(did))
	require.Equal(t, fiber.StatusCreated, status)
	var rec models.PayrollRecord
	decode(t, resp.Data, &rec)

	own := token(t, did, "")
	status, resp, _ = doRequest(t, app, "GET", "/payroll/employee/"+did, own, nil)
	require.Equal(t, fiber.StatusOK, status)
	var recs []models.PayrollRecord
	decode(t, resp.Data, &recs)
	assert.Len(t, recs, 1)

	status, _, _ = doRequest(t, app, "GET", "/payroll/record/"+rec.ID, own, nil)
	assert.Equal(t, fiber.StatusOK, status)

	stranger := token(t, other, "")
	status, _, _ = doRequest(t, app, "GET", "/payroll/employee/"+did, stranger, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _, _ = doRequest(t, app, "GET", "/payroll/record/"+rec.ID, stranger, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _, _ = doRequest(t, app, "GET", "/payroll/salary/"+did, stranger, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _, _ = doRequest(t, app, "GET", "/payroll/period/2024-05", own, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestPeriodPayrolls(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)
	status, _, _ = doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), manualBody(did))
	require.Equal(t, fiber.StatusCreated, status)

	status, resp, _ := doRequest(t, app, "GET", "/payroll/period/2024-05", hrToken(t), nil)
	require.Equal(t, fiber.StatusOK, status)
	var recs []models.PayrollRecord
	decode(t, resp.Data, &recs)
	require.Len(t, recs, 1)
	assert.Equal(t, did, recs[0].EmployeeDID)

	status, _, _ = doRequest(t, app, "GET", "/payroll/period/May-2024", hrToken(t), nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRecordNotFound(t *testing.T) {
	app, _, _ := setupTest(t)
	status, _, _ := doRequest(t, app, "GET", "/payroll/record/"+uuid.New().String(), hrToken(t), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _, _ = doRequest(t, app, "POST", "/payroll/pay/999", hrToken(t), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPreviewAndCreateFromRecords(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)

	ten := 10.0
	for d := 1; d <= 3; d++ {
		require.NoError(t, db.Create(&models.Attendance{
			ID:          uuid.New().String(),
			EmployeeDID: did,
			Date:        time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC),
			DayType:     models.DayTypeRegular,
			TotalHours:  &ten,
		}).Error)
	}
	require.NoError(t, db.Create(&models.KpiEvaluation{
		ID:          uuid.New().String(),
		EmployeeDID: did,
		KpiID:       uuid.New().String(),
		Period:      "2024-05",
		Score:       90,
		Status:      models.KpiStatusApproved,
	}).Error)

	body := fiber.Map{"employeeId": did, "period": "2024-05"}
	status, resp, _ := doRequest(t, app, "POST", "/payroll/calculate-preview-db", token(t, did, ""), body)
	require.Equal(t, fiber.StatusOK, status)
	var preview services.SalaryPreview
	decode(t, resp.Data, &preview)
	assert.Equal(t, int64(3), preview.Inputs.WorkingDays)
	assert.Equal(t, int64(6), preview.Inputs.OvertimeHours)
	assert.Equal(t, int64(90), preview.Inputs.KpiScore)

	status, resp, _ = doRequest(t, app, "POST", "/payroll/create-with-db", hrToken(t), body)
	require.Equal(t, fiber.StatusCreated, status)
	var created struct {
		Record models.PayrollRecord `json:"record"`
	}
	decode(t, resp.Data, &created)
	assert.Equal(t, preview.Components.NetSalary, created.Record.NetSalary)

	status, _, _ = doRequest(t, app, "POST", "/payroll/create-with-db", hrToken(t), fiber.Map{"employeeId": did})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDownloadPayslip(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)
	status, resp, _ := doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), manualBody(did))
	require.Equal(t, fiber.StatusCreated, status)
	var rec models.PayrollRecord
	decode(t, resp.Data, &rec)

	req := httptest.NewRequest("GET", "/payroll/record/"+rec.ID+"/payslip", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, did, ""))
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "application/pdf", res.Header.Get("Content-Type"))
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestCalculateSalary(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)

	status, resp, _ := doRequest(t, app, "POST", "/payroll/calculate-salary", token(t, did, ""), manualBody(did))
	require.Equal(t, fiber.StatusOK, status)
	var preview services.SalaryPreview
	decode(t, resp.Data, &preview)
	assert.Equal(t, int64(23_547_461), preview.Components.NetSalary)
	assert.Equal(t, "2024-05", preview.Period)

	body := manualBody(did)
	delete(body, "kpiScore")
	status, _, _ = doRequest(t, app, "POST", "/payroll/calculate-salary", hrToken(t), body)
	assert.Equal(t, fiber.StatusBadRequest, status)

	other := seedEmployee(t, db)
	status, _, _ = doRequest(t, app, "POST", "/payroll/calculate-salary", token(t, other, ""), manualBody(did))
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestEmployeeTransactions(t *testing.T) {
	app, db, chain := setupTest(t)
	did := seedEmployee(t, db)
	other := seedEmployee(t, db)

	status, resp, _ := doRequest(t, app, "GET", "/payroll/transactions/"+did, token(t, did, ""), nil)
	require.Equal(t, fiber.StatusOK, status)
	var txs []services.ChainTransaction
	decode(t, resp.Data, &txs)
	require.Len(t, txs, 1)
	assert.Equal(t, did, txs[0].EmployeeDID)
	assert.Equal(t, "23547461", txs[0].Amount)

	status, _, _ = doRequest(t, app, "GET", "/payroll/transactions/"+did, token(t, other, ""), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	chain.err = errRPCDown
	status, _, _ = doRequest(t, app, "GET", "/payroll/transactions/"+did, hrToken(t), nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestContractBalance(t *testing.T) {
	app, db, chain := setupTest(t)

	status, resp, _ := doRequest(t, app, "GET", "/payroll/balance/contract", hrToken(t), nil)
	require.Equal(t, fiber.StatusOK, status)
	var bal services.ContractBalance
	decode(t, resp.Data, &bal)
	assert.Equal(t, "60", bal.Balance)
	assert.True(t, bal.Available)

	chain.err = errRPCDown
	status, resp, _ = doRequest(t, app, "GET", "/payroll/balance/contract", hrToken(t), nil)
	require.Equal(t, fiber.StatusOK, status)
	decode(t, resp.Data, &bal)
	assert.Equal(t, "0", bal.Balance)
	assert.False(t, bal.Available)

	did := seedEmployee(t, db)
	status, _, _ = doRequest(t, app, "GET", "/payroll/balance/contract", token(t, did, ""), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAnchoredPayrollRecreate(t *testing.T) {
	app, db, _ := setupTest(t)
	did := seedEmployee(t, db)
	status, _, _ := doRequest(t, app, "POST", "/payroll/salary/set", hrToken(t), salaryBody(did))
	require.Equal(t, fiber.StatusOK, status)

	status, resp, _ := doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), manualBody(did))
	require.Equal(t, fiber.StatusCreated, status)
	var first models.PayrollRecord
	decode(t, resp.Data, &first)
	require.NotNil(t, first.ChainPayrollID)

	status, resp, _ = doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), manualBody(did))
	require.Equal(t, fiber.StatusCreated, status)
	var again models.PayrollRecord
	decode(t, resp.Data, &again)
	assert.Equal(t, first.ID, again.ID)
	require.NotNil(t, again.ChainPayrollID)
	assert.Equal(t, *first.ChainPayrollID, *again.ChainPayrollID)

	body := manualBody(did)
	body["kpiScore"] = 95
	status, resp, _ = doRequest(t, app, "POST", "/payroll/create-manual", hrToken(t), body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.False(t, resp.Success)
}
