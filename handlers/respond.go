package handlers

import (
	"errors"

	"dapp_payroll/services"
	"dapp_payroll/types"
	"dapp_payroll/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// errorStatus maps domain and chain errors onto HTTP status codes.
func errorStatus(err error) int {
	var verr *services.ValidationError
	var ferr *fiber.Error
	switch {
	case errors.As(err, &ferr):
		return ferr.Code
	case errors.As(err, &verr), errors.Is(err, services.ErrInvalidAddress):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrEmployeeNotFound),
		errors.Is(err, services.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, services.ErrNotAnchored),
		errors.Is(err, services.ErrPayrollInProgress),
		errors.Is(err, services.ErrAlreadyAnchored):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrGasEstimation),
		errors.Is(err, services.ErrTransactionReverted):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrChainUnreachable),
		errors.Is(err, services.ErrContractNotDeployed),
		errors.Is(err, services.ErrSignerUnavailable),
		errors.Is(err, services.ErrNonceConflict):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorMessage(status int, err error) string {
	var ce *services.ChainError
	switch {
	case status == fiber.StatusBadRequest:
		return types.ErrInvalidInput
	case errors.As(err, &ce):
		return types.ErrBlockchainError
	case status >= 500:
		return types.ErrInternalError
	default:
		return err.Error()
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status >= 500 {
		utils.Logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}

	detail := err.Error()
	if status == fiber.StatusInternalServerError {
		var ce *services.ChainError
		if !errors.As(err, &ce) {
			detail = ""
		}
	}
	return c.Status(status).JSON(types.APIResponse{
		Success: false,
		Message: errorMessage(status, err),
		Error:   detail,
	})
}

func badRequest(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.APIResponse{
		Success: false,
		Message: types.ErrInvalidInput,
		Error:   detail,
	})
}

// ErrorHandler renders errors that escape handlers in the response envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}
