package handlers

import (
	"encoding/json"
	"math/big"

	"dapp_payroll/middleware"
	"dapp_payroll/types"

	"github.com/gofiber/fiber/v2"
)

type DepositRequest struct {
	Amount json.Number `json:"amount"`
}

func GetBalanceSummary(c *fiber.Ctx) error {
	return c.JSON(types.APIResponse{
		Success: true,
		Data:    Balances.Summary(c.UserContext()),
	})
}

func GetContractBalance(c *fiber.Ctx) error {
	return c.JSON(types.APIResponse{
		Success: true,
		Data:    Balances.ContractBalance(c.UserContext()),
	})
}

func DepositFunds(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	amount, ok := new(big.Int).SetString(req.Amount.String(), 10)
	if !ok {
		return badRequest(c, "amount must be an integer in wei")
	}

	res, err := Payroll.Deposit(c.UserContext(), middleware.ActorID(c), amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Funds deposited successfully",
		Data: fiber.Map{
			"transactionHash": res.TransactionHash,
			"amount":          amount.String(),
		},
	})
}
