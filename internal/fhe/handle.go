package fhe

import (
	"database/sql/driver"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Handle is an opaque reference to a ciphertext held by the confidential-compute service.
type Handle common.Hash

// ZeroHandle never refers to a ciphertext.
var ZeroHandle Handle

// ParseHandle decodes a 0x-prefixed 32-byte hex string.
func ParseHandle(s string) (Handle, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return ZeroHandle, fmt.Errorf("%w: %v", ErrMalformedHandle, err)
	}
	if len(b) != common.HashLength {
		return ZeroHandle, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedHandle, common.HashLength, len(b))
	}
	return Handle(common.BytesToHash(b)), nil
}

// IsZero reports whether the handle is unset.
func (h Handle) IsZero() bool {
	return h == ZeroHandle
}

// Hex returns the 0x-prefixed hex encoding.
func (h Handle) Hex() string {
	return common.Hash(h).Hex()
}

func (h Handle) String() string {
	return h.Hex()
}

// MarshalText implements encoding.TextMarshaler
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (h *Handle) UnmarshalText(input []byte) error {
	parsed, err := ParseHandle(string(input))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Value implements driver.Valuer interface for Handle
func (h Handle) Value() (driver.Value, error) {
	return h.Hex(), nil
}

// Scan implements sql.Scanner interface for Handle
func (h *Handle) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*h = ZeroHandle
		return nil
	case string:
		return h.UnmarshalText([]byte(v))
	case []byte:
		return h.UnmarshalText(v)
	}
	return fmt.Errorf("%w: cannot scan %T", ErrMalformedHandle, value)
}
