package services

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"dapp_payroll/models"
	"dapp_payroll/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// EthBackend is the slice of the JSON-RPC client the gateway needs.
// *ethclient.Client satisfies it.
type EthBackend interface {
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ChainGateway is the on-chain half of payroll.
type ChainGateway interface {
	SetSalary(ctx context.Context, profile models.SalaryProfile) (TxResult, error)
	UpdateSalary(ctx context.Context, profile models.SalaryProfile) (TxResult, error)
	CreatePayroll(ctx context.Context, employeeDID, period string, in PeriodInputs) (ChainPayroll, error)
	PayEmployee(ctx context.Context, payrollID *big.Int) (PaymentResult, error)
	CalculateNetSalary(ctx context.Context, employeeDID string, in PeriodInputs) (SalaryComponents, error)
	BalanceSummary(ctx context.Context) (ChainBalance, error)
	ContractBalance(ctx context.Context) (*big.Int, error)
	EmployeeTransactions(ctx context.Context, employeeDID string) ([]ChainTransaction, error)
	Deposit(ctx context.Context, amount *big.Int) (TxResult, error)
}

type TxResult struct {
	TransactionHash string `json:"transactionHash"`
}

type ChainPayroll struct {
	PayrollID       *big.Int
	TransactionHash string
	NetSalary       *big.Int
}

type PaymentResult struct {
	TransactionHash string
	Amount          *big.Int
}

// ChainTransaction is one entry of the contract's per-employee transaction log.
type ChainTransaction struct {
	TransactionID   string    `json:"transactionId"`
	EmployeeDID     string    `json:"employeeId"`
	Amount          string    `json:"amount"`
	TransactionType string    `json:"transactionType"`
	Description     string    `json:"description"`
	Timestamp       time.Time `json:"timestamp"`
	TxHash          string    `json:"txHash"`
}

type ChainBalance struct {
	TotalDeposited  *big.Int
	TotalPaid       *big.Int
	ContractBalance *big.Int
	IsBalanced      bool
}

type BlockchainOptions struct {
	ContractAddress string
	PrivateKeyHex   string
	ChainID         int64
	CallTimeout     time.Duration
	ReceiptTimeout  time.Duration
	NonceRetryDelay time.Duration
}

type BlockchainService struct {
	backend         EthBackend
	contract        common.Address
	key             *ecdsa.PrivateKey
	from            common.Address
	chainID         *big.Int
	callTimeout     time.Duration
	receiptTimeout  time.Duration
	nonceRetryDelay time.Duration
	pollInterval    time.Duration

	sendMu sync.Mutex // serializes nonce allocation for the signer
}

func NewBlockchainService(backend EthBackend, opts BlockchainOptions) (*BlockchainService, error) {
	if opts.ContractAddress != "" && !common.IsHexAddress(opts.ContractAddress) {
		return nil, fmt.Errorf("invalid payroll contract address %q", opts.ContractAddress)
	}

	s := &BlockchainService{
		backend:         backend,
		contract:        common.HexToAddress(opts.ContractAddress),
		callTimeout:     opts.CallTimeout,
		receiptTimeout:  opts.ReceiptTimeout,
		nonceRetryDelay: opts.NonceRetryDelay,
		pollInterval:    time.Second,
	}
	if s.callTimeout <= 0 {
		s.callTimeout = 10 * time.Second
	}
	if s.receiptTimeout <= 0 {
		s.receiptTimeout = 60 * time.Second
	}
	if opts.ChainID > 0 {
		s.chainID = big.NewInt(opts.ChainID)
	}

	if opts.PrivateKeyHex != "" {
		key, err := crypto.HexToECDSA(opts.PrivateKeyHex)
		if err != nil {
			return nil, fmt.Errorf("failed to parse signer key: %w", err)
		}
		s.key = key
		s.from = crypto.PubkeyToAddress(key.PublicKey)
	}
	return s, nil
}

// SignerAddress is the zero address when no key is configured.
func (s *BlockchainService) SignerAddress() common.Address {
	return s.from
}

// SetSalary anchors a salary profile on chain
func (s *BlockchainService) SetSalary(ctx context.Context, p models.SalaryProfile) (TxResult, error) {
	return s.salaryTx(ctx, "setEmployeeSalary", p)
}

// UpdateSalary changes an already anchored salary profile
func (s *BlockchainService) UpdateSalary(ctx context.Context, p models.SalaryProfile) (TxResult, error) {
	return s.salaryTx(ctx, "updateEmployeeSalary", p)
}

func (s *BlockchainService) salaryTx(ctx context.Context, method string, p models.SalaryProfile) (TxResult, error) {
	receipt, err := s.transact(ctx, method, nil,
		p.EmployeeDID,
		big.NewInt(p.BaseSalary), big.NewInt(p.KpiBonusPercent), big.NewInt(p.Allowance),
		big.NewInt(p.TaxRate), big.NewInt(p.OvertimeRate))
	if err != nil {
		return TxResult{}, err
	}
	return TxResult{TransactionHash: receipt.TxHash.Hex()}, nil
}

// CreatePayroll executes the salary formula on chain and records the payroll
func (s *BlockchainService) CreatePayroll(ctx context.Context, employeeDID, period string, in PeriodInputs) (ChainPayroll, error) {
	receipt, err := s.transact(ctx, "createPayrollManual", nil,
		employeeDID, period,
		big.NewInt(in.KpiScore), big.NewInt(in.WorkingDays), big.NewInt(in.OvertimeHours))
	if err != nil {
		return ChainPayroll{}, err
	}

	out := ChainPayroll{TransactionHash: receipt.TxHash.Hex()}
	fields, id, ok := s.findEvent(receipt, "PayrollCreated")
	if !ok {
		return out, chainErr("createPayrollManual", ErrChainRejected,
			fmt.Errorf("transaction %s emitted no PayrollCreated event", out.TransactionHash))
	}
	out.PayrollID = id
	if net, ok := fields["netSalary"].(*big.Int); ok {
		out.NetSalary = net
	}
	return out, nil
}

// PayEmployee transfers the net salary of an on-chain payroll
func (s *BlockchainService) PayEmployee(ctx context.Context, payrollID *big.Int) (PaymentResult, error) {
	receipt, err := s.transact(ctx, "payEmployee", nil, payrollID)
	if err != nil {
		return PaymentResult{}, err
	}

	out := PaymentResult{TransactionHash: receipt.TxHash.Hex()}
	if fields, _, ok := s.findEvent(receipt, "PayrollPaid"); ok {
		if amount, ok := fields["amount"].(*big.Int); ok {
			out.Amount = amount
		}
	}
	return out, nil
}

// CalculateNetSalary previews the on-chain computation without a transaction
func (s *BlockchainService) CalculateNetSalary(ctx context.Context, employeeDID string, in PeriodInputs) (SalaryComponents, error) {
	const method = "calculateNetSalaryManual"
	values, err := s.call(ctx, method, employeeDID,
		big.NewInt(in.KpiScore), big.NewInt(in.WorkingDays), big.NewInt(in.OvertimeHours))
	if err != nil {
		return SalaryComponents{}, err
	}
	if len(values) != 6 {
		return SalaryComponents{}, chainErr(method, ErrChainRejected, fmt.Errorf("expected 6 return values, got %d", len(values)))
	}

	nums := make([]int64, len(values))
	for i, v := range values {
		n, ok := v.(*big.Int)
		if !ok || !n.IsInt64() {
			return SalaryComponents{}, chainErr(method, ErrChainRejected, fmt.Errorf("return value %d out of range", i))
		}
		nums[i] = n.Int64()
	}

	c := SalaryComponents{
		BaseSalaryActual: nums[0],
		KpiBonus:         nums[1],
		Allowance:        nums[2],
		OvertimeBonus:    nums[3],
		TaxAmount:        nums[4],
		NetSalary:        nums[5],
	}
	c.GrossSalary = c.BaseSalaryActual + c.KpiBonus + c.Allowance + c.OvertimeBonus
	return c, nil
}

// ContractBalance is the contract's own view of its funds.
func (s *BlockchainService) ContractBalance(ctx context.Context) (*big.Int, error) {
	const method = "getContractBalance"
	values, err := s.call(ctx, method)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, chainErr(method, ErrChainRejected, fmt.Errorf("expected 1 return value, got %d", len(values)))
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, chainErr(method, ErrChainRejected, errors.New("unexpected return type"))
	}
	return balance, nil
}

// EmployeeTransactions lists the contract's transaction log for one employee.
// Entries that cannot be read are skipped.
func (s *BlockchainService) EmployeeTransactions(ctx context.Context, employeeDID string) ([]ChainTransaction, error) {
	const method = "getEmployeeTransactions"
	values, err := s.call(ctx, method, employeeDID)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, chainErr(method, ErrChainRejected, fmt.Errorf("expected 1 return value, got %d", len(values)))
	}
	ids, ok := values[0].([]*big.Int)
	if !ok {
		return nil, chainErr(method, ErrChainRejected, errors.New("unexpected return type"))
	}

	out := make([]ChainTransaction, 0, len(ids))
	for _, id := range ids {
		tx, err := s.transaction(ctx, id)
		if err != nil {
			if IsFallbackEligible(err) {
				return nil, err
			}
			utils.Logger.Warn("Skipping unreadable chain transaction",
				zap.String("transaction_id", id.String()), zap.Error(err))
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *BlockchainService) transaction(ctx context.Context, id *big.Int) (ChainTransaction, error) {
	const method = "getTransaction"
	values, err := s.call(ctx, method, id)
	if err != nil {
		return ChainTransaction{}, err
	}
	if len(values) != 7 {
		return ChainTransaction{}, chainErr(method, ErrChainRejected, fmt.Errorf("expected 7 return values, got %d", len(values)))
	}

	txID, ok1 := values[0].(*big.Int)
	did, ok2 := values[1].(string)
	amount, ok3 := values[2].(*big.Int)
	kind, ok4 := values[3].(string)
	desc, ok5 := values[4].(string)
	ts, ok6 := values[5].(*big.Int)
	hash, ok7 := values[6].([32]byte)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		return ChainTransaction{}, chainErr(method, ErrChainRejected, errors.New("unexpected return types"))
	}
	return ChainTransaction{
		TransactionID:   txID.String(),
		EmployeeDID:     did,
		Amount:          amount.String(),
		TransactionType: kind,
		Description:     desc,
		Timestamp:       time.Unix(ts.Int64(), 0).UTC(),
		TxHash:          common.Hash(hash).Hex(),
	}, nil
}

func (s *BlockchainService) BalanceSummary(ctx context.Context) (ChainBalance, error) {
	values, err := s.call(ctx, "getBalanceSummary")
	if err != nil {
		return ChainBalance{}, err
	}
	if len(values) != 4 {
		return ChainBalance{}, chainErr("getBalanceSummary", ErrChainRejected, fmt.Errorf("expected 4 return values, got %d", len(values)))
	}

	var out ChainBalance
	var ok [4]bool
	out.TotalDeposited, ok[0] = values[0].(*big.Int)
	out.TotalPaid, ok[1] = values[1].(*big.Int)
	out.ContractBalance, ok[2] = values[2].(*big.Int)
	out.IsBalanced, ok[3] = values[3].(bool)
	if !ok[0] || !ok[1] || !ok[2] || !ok[3] {
		return ChainBalance{}, chainErr("getBalanceSummary", ErrChainRejected, errors.New("unexpected return types"))
	}
	return out, nil
}

// Deposit funds the contract from the signer account
func (s *BlockchainService) Deposit(ctx context.Context, amount *big.Int) (TxResult, error) {
	receipt, err := s.transact(ctx, "depositFunds", amount, amount)
	if err != nil {
		return TxResult{}, err
	}
	return TxResult{TransactionHash: receipt.TxHash.Hex()}, nil
}

// ensureReady checks the contract address, node reachability and deployed code.
func (s *BlockchainService) ensureReady(ctx context.Context, op string) error {
	if s.contract == (common.Address{}) {
		return chainErr(op, ErrContractNotDeployed, errors.New("contract address is the zero address"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	if _, err := s.backend.BlockNumber(ctx); err != nil {
		return chainErr(op, ErrChainUnreachable, err)
	}
	code, err := s.backend.CodeAt(ctx, s.contract, nil)
	if err != nil {
		return classifyChainError(op, err)
	}
	if len(code) == 0 {
		return chainErr(op, ErrContractNotDeployed, fmt.Errorf("no code at %s", s.contract.Hex()))
	}
	return nil
}

func (s *BlockchainService) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if err := s.ensureReady(ctx, method); err != nil {
		return nil, err
	}

	data, err := payrollContractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	out, err := s.backend.CallContract(ctx, ethereum.CallMsg{From: s.from, To: &s.contract, Data: data}, nil)
	if err != nil {
		return nil, classifyChainError(method, err)
	}
	values, err := payrollContractABI.Unpack(method, out)
	if err != nil {
		return nil, chainErr(method, ErrChainRejected, fmt.Errorf("failed to unpack result: %w", err))
	}
	return values, nil
}

// transact estimates gas, adds the buffer, signs, submits and waits for the
// receipt. A nonce conflict on submission is retried once.
func (s *BlockchainService) transact(ctx context.Context, method string, value *big.Int, args ...interface{}) (*types.Receipt, error) {
	if err := s.ensureReady(ctx, method); err != nil {
		return nil, err
	}
	if s.key == nil {
		return nil, chainErr(method, ErrSignerUnavailable, nil)
	}

	data, err := payrollContractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	gas, err := s.estimateGas(ctx, method, value, data)
	if err != nil {
		return nil, err
	}

	var hash common.Hash
	for attempt := 0; ; attempt++ {
		hash, err = s.send(ctx, method, value, gas, data)
		if err == nil {
			break
		}
		if attempt > 0 || !errors.Is(err, ErrNonceConflict) {
			return nil, err
		}
		utils.Logger.Warn("Nonce conflict, retrying transaction",
			zap.String("method", method), zap.Duration("delay", s.nonceRetryDelay), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, chainErr(method, ErrChainUnreachable, ctx.Err())
		case <-time.After(s.nonceRetryDelay):
		}
	}

	receipt, err := s.waitReceipt(ctx, method, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, chainErr(method, ErrTransactionReverted, fmt.Errorf("transaction %s failed", hash.Hex()))
	}

	utils.Logger.Info("Transaction mined",
		zap.String("method", method),
		zap.String("tx_hash", hash.Hex()),
		zap.Uint64("gas_used", receipt.GasUsed),
		zap.Uint64("gas_limit", gas))
	return receipt, nil
}

func (s *BlockchainService) estimateGas(ctx context.Context, method string, value *big.Int, data []byte) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	est, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: &s.contract, Value: value, Data: data})
	if err != nil {
		cerr := classifyChainError(method, err)
		if errors.Is(cerr, ErrChainUnreachable) || errors.Is(cerr, ErrInsufficientFunds) {
			return 0, cerr
		}
		return 0, chainErr(method, ErrGasEstimation, err)
	}
	return applyGasBuffer(est), nil
}

// applyGasBuffer returns ceil(estimate * 1.10).
func applyGasBuffer(estimate uint64) uint64 {
	return (estimate*110 + 99) / 100
}

func (s *BlockchainService) send(ctx context.Context, method string, value *big.Int, gas uint64, data []byte) (common.Hash, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.chainID == nil {
		id, err := s.backend.ChainID(ctx)
		if err != nil {
			return common.Hash{}, classifyChainError(method, err)
		}
		s.chainID = id
	}

	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return common.Hash{}, classifyChainError(method, err)
	}
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, classifyChainError(method, err)
	}
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &s.contract,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign %s: %w", method, err)
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		if !isAlreadyKnown(err) {
			return common.Hash{}, classifyChainError(method, err)
		}
		utils.Logger.Info("Transaction already in pool, waiting for receipt",
			zap.String("method", method), zap.String("tx_hash", signed.Hash().Hex()))
	}
	return signed.Hash(), nil
}

func (s *BlockchainService) waitReceipt(ctx context.Context, method string, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, classifyChainError(method, err)
		}
		select {
		case <-ctx.Done():
			return nil, chainErr(method, ErrChainUnreachable,
				fmt.Errorf("waiting for receipt of %s: %w", hash.Hex(), ctx.Err()))
		case <-ticker.C:
		}
	}
}

// findEvent returns the decoded non-indexed fields and the indexed payroll id
// of the first matching contract log.
func (s *BlockchainService) findEvent(receipt *types.Receipt, name string) (map[string]interface{}, *big.Int, bool) {
	event, ok := payrollContractABI.Events[name]
	if !ok {
		return nil, nil, false
	}
	for _, l := range receipt.Logs {
		if l.Address != s.contract || len(l.Topics) < 2 || l.Topics[0] != event.ID {
			continue
		}
		fields := map[string]interface{}{}
		if err := payrollContractABI.UnpackIntoMap(fields, name, l.Data); err != nil {
			utils.Logger.Warn("Failed to decode contract event", zap.String("event", name), zap.Error(err))
			continue
		}
		return fields, new(big.Int).SetBytes(l.Topics[1].Bytes()), true
	}
	return nil, nil, false
}
