package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ValidationError rejects malformed input before any chain call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrChainUnreachable    = errors.New("blockchain node unreachable")
	ErrContractNotDeployed = errors.New("payroll contract not deployed")
	ErrSignerUnavailable   = errors.New("no transaction signer configured")
	ErrGasEstimation       = errors.New("gas estimation failed, the transaction would revert; check contract permissions and requirements")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNonceConflict       = errors.New("nonce conflict")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrChainRejected       = errors.New("blockchain call failed")

	ErrProfileNotFound   = errors.New("salary profile not found")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrRecordNotFound    = errors.New("payroll record not found")
	ErrAlreadyPaid       = errors.New("payroll already paid")
	ErrNotAnchored       = errors.New("payroll record has no on-chain payroll id")
	ErrPayrollInProgress = errors.New("payroll for this employee and period is already being processed")
	ErrAlreadyAnchored   = errors.New("payroll for this period is already recorded on chain with different inputs")
)

// ChainError carries the classified kind of a failed chain operation together
// with the underlying cause. errors.Is matches both.
type ChainError struct {
	Kind error
	Op   string
	Err  error
}

func (e *ChainError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *ChainError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsFallbackEligible reports whether a failure allows the local formula to
// stand in for the chain.
func IsFallbackEligible(err error) bool {
	return errors.Is(err, ErrChainUnreachable) ||
		errors.Is(err, ErrContractNotDeployed) ||
		errors.Is(err, ErrSignerUnavailable)
}

func chainErr(op string, kind, cause error) error {
	return &ChainError{Kind: kind, Op: op, Err: cause}
}

// classifyChainError maps a raw RPC or client failure onto one of the chain
// error kinds. Already classified errors pass through untouched.
func classifyChainError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ChainError
	if errors.As(err, &ce) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return chainErr(op, ErrChainUnreachable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return chainErr(op, ErrChainUnreachable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return chainErr(op, ErrChainUnreachable, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "econnrefused"):
		return chainErr(op, ErrChainUnreachable, err)
	case strings.Contains(msg, "insufficient"):
		return chainErr(op, ErrInsufficientFunds, err)
	case strings.Contains(msg, "nonce too low"),
		strings.Contains(msg, "nonce too high"),
		strings.Contains(msg, "replacement transaction underpriced"):
		return chainErr(op, ErrNonceConflict, err)
	case strings.Contains(msg, "invalid address"):
		return chainErr(op, ErrInvalidAddress, err)
	case strings.Contains(msg, "execution reverted"):
		return chainErr(op, ErrTransactionReverted, err)
	}
	return chainErr(op, ErrChainRejected, err)
}

// isAlreadyKnown reports a submission the node already holds in its pool.
func isAlreadyKnown(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already known") || strings.Contains(msg, "known transaction")
}
