package services

import (
	"context"
	"math/big"

	"dapp_payroll/utils"

	"go.uber.org/zap"
)

// BalanceSummary amounts are decimal strings since they can exceed 2^53.
type BalanceSummary struct {
	TotalDeposited  string `json:"totalDeposited"`
	TotalPaid       string `json:"totalPaid"`
	ContractBalance string `json:"contractBalance"`
	IsBalanced      bool   `json:"isBalanced"`
	Available       bool   `json:"available"`
}

type BalanceReconciler struct {
	Chain ChainGateway
}

func NewBalanceReconciler(chain ChainGateway) *BalanceReconciler {
	return &BalanceReconciler{Chain: chain}
}

// Summary never fails: on any chain error it reports zeros as balanced.
func (r *BalanceReconciler) Summary(ctx context.Context) BalanceSummary {
	b, err := r.Chain.BalanceSummary(ctx)
	if err != nil {
		utils.Logger.Warn("Balance summary unavailable, returning defaults", zap.Error(err))
		return BalanceSummary{TotalDeposited: "0", TotalPaid: "0", ContractBalance: "0", IsBalanced: true}
	}

	deposited, paid, balance := orZero(b.TotalDeposited), orZero(b.TotalPaid), orZero(b.ContractBalance)
	balanced := new(big.Int).Sub(deposited, paid).Cmp(balance) == 0
	if balanced != b.IsBalanced {
		utils.Logger.Warn("Contract balance flag disagrees with totals",
			zap.Bool("contract_flag", b.IsBalanced),
			zap.Bool("computed", balanced))
	}

	return BalanceSummary{
		TotalDeposited:  deposited.String(),
		TotalPaid:       paid.String(),
		ContractBalance: balance.String(),
		IsBalanced:      balanced,
		Available:       true,
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

type ContractBalance struct {
	Balance   string `json:"balance"`
	Available bool   `json:"available"`
}

// ContractBalance follows Summary: an unreadable contract reports zero.
func (r *BalanceReconciler) ContractBalance(ctx context.Context) ContractBalance {
	b, err := r.Chain.ContractBalance(ctx)
	if err != nil {
		utils.Logger.Warn("Contract balance unavailable, returning zero", zap.Error(err))
		return ContractBalance{Balance: "0"}
	}
	return ContractBalance{Balance: orZero(b).String(), Available: true}
}
