package util

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// ParseAmount parses a non-negative monetary amount in smallest units.
func ParseAmount(s string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("invalid amount: %s", s)
	}
	if amount.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("negative amount: %s", s)
	}
	return amount, nil
}

// MustAmount is ParseAmount for trusted inputs, e.g. rows the settler wrote itself.
func MustAmount(s string) sdkmath.Int {
	amount, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return amount
}

// NormalizeAddress lower-cases and checksums-strips a hex address for use as a db key.
func NormalizeAddress(addr string) string {
	return strings.ToLower(common.HexToAddress(addr).Hex())
}

func IsValidAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

const optionSeparator = "\x1f"

// JoinOptions and SplitOptions serialize poll option labels for storage.
// Labels never contain the separator: the contract rejects it for on-chain
// polls and CreatePoll rejects it for off-chain ones.
func JoinOptions(options []string) string {
	return strings.Join(options, optionSeparator)
}

func SplitOptions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, optionSeparator)
}

// ValidOptionLabel reports whether a label is safe to store, i.e. free of
// the reserved separator.
func ValidOptionLabel(label string) bool {
	return !strings.Contains(label, optionSeparator)
}
