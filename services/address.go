package services

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidateWalletAddress accepts 0x-prefixed 40 hex character addresses. Mixed
// case input must carry a valid EIP-55 checksum; all-lower or all-upper input
// is accepted as unchecksummed.
func ValidateWalletAddress(addr string) (common.Address, error) {
	if addr == "" {
		return common.Address{}, chainErr("validateAddress", ErrInvalidAddress, invalid("walletAddress", "employee has no registered wallet address"))
	}
	if !common.IsHexAddress(addr) || (!strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X")) {
		return common.Address{}, chainErr("validateAddress", ErrInvalidAddress, invalid("walletAddress", "%q is not a 0x-prefixed 20 byte hex address", addr))
	}

	body := addr[2:]
	parsed := common.HexToAddress(addr)
	if body != strings.ToLower(body) && body != strings.ToUpper(body) && parsed.Hex() != addr {
		return common.Address{}, chainErr("validateAddress", ErrInvalidAddress, invalid("walletAddress", "%q fails checksum validation", addr))
	}
	if parsed == (common.Address{}) {
		return common.Address{}, chainErr("validateAddress", ErrInvalidAddress, invalid("walletAddress", "zero address is not a valid wallet"))
	}
	return parsed, nil
}
