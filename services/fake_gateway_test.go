package services

import (
	"context"
	"math/big"
	"sync"

	"dapp_payroll/models"
)

// fakeGateway computes with the local formula so chain and fallback paths can
// be compared.
type fakeGateway struct {
	mu       sync.Mutex
	err      error
	payErr   error
	profiles map[string]models.SalaryProfile
	nextID   int64
	creates  int
	pays     []string
	balance  ChainBalance
	txs      map[string][]ChainTransaction
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{profiles: map[string]models.SalaryProfile{}, nextID: 1}
}

func (g *fakeGateway) SetSalary(ctx context.Context, p models.SalaryProfile) (TxResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return TxResult{}, g.err
	}
	g.profiles[p.EmployeeDID] = p
	return TxResult{TransactionHash: "0xset"}, nil
}

func (g *fakeGateway) UpdateSalary(ctx context.Context, p models.SalaryProfile) (TxResult, error) {
	return g.SetSalary(ctx, p)
}

func (g *fakeGateway) CreatePayroll(ctx context.Context, employeeDID, period string, in PeriodInputs) (ChainPayroll, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return ChainPayroll{}, g.err
	}
	g.creates++
	id := g.nextID
	g.nextID++
	c := ComputeSalary(g.profiles[employeeDID], in)
	return ChainPayroll{PayrollID: big.NewInt(id), TransactionHash: "0xcreate", NetSalary: big.NewInt(c.NetSalary)}, nil
}

func (g *fakeGateway) PayEmployee(ctx context.Context, payrollID *big.Int) (PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return PaymentResult{}, g.err
	}
	if g.payErr != nil {
		return PaymentResult{}, g.payErr
	}
	g.pays = append(g.pays, payrollID.String())
	return PaymentResult{TransactionHash: "0xpaid"}, nil
}

func (g *fakeGateway) CalculateNetSalary(ctx context.Context, employeeDID string, in PeriodInputs) (SalaryComponents, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return SalaryComponents{}, g.err
	}
	c := ComputeSalary(g.profiles[employeeDID], in)
	c.DailyBaseSalary, c.HourlyRate = 0, 0
	return c, nil
}

func (g *fakeGateway) BalanceSummary(ctx context.Context) (ChainBalance, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return ChainBalance{}, g.err
	}
	return g.balance, nil
}

func (g *fakeGateway) Deposit(ctx context.Context, amount *big.Int) (TxResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return TxResult{}, g.err
	}
	return TxResult{TransactionHash: "0xdeposit"}, nil
}

func (g *fakeGateway) ContractBalance(ctx context.Context) (*big.Int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.balance.ContractBalance, nil
}

func (g *fakeGateway) EmployeeTransactions(ctx context.Context, employeeDID string) ([]ChainTransaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.txs[employeeDID], nil
}
