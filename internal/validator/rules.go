package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// NotBlank returns true if a string is not empty or contains only whitespace.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MinRunes returns true if a string is greater than or equal to a minimum number of n
func MinRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

// MaxRunes returns true if a string is less than or equal to a maximum number of n
func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

// In returns true if a value is in a list of values.
func In[T comparable](value T, list ...T) bool {
	for i := range list {
		if value == list[i] {
			return true
		}
	}
	return false
}

// IsHexAddress accepts 0x-prefixed or bare 20-byte hex addresses.
func IsHexAddress(value string) bool {
	return common.IsHexAddress(value)
}

// IsWeiAmount returns true for a positive integer in base 10.
func IsWeiAmount(value string) bool {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Truncate(0))
}

// IsHandle returns true for a 0x-prefixed 32-byte hex string.
func IsHandle(value string) bool {
	b, err := hexutil.Decode(value)
	return err == nil && len(b) == common.HashLength
}
