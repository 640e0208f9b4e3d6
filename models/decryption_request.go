package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DecryptionKind tells what a request decrypts
type DecryptionKind string

const (
	DecryptionKindPools   DecryptionKind = "pools"
	DecryptionKindOutcome DecryptionKind = "outcome"
)

// DecryptionStatus tracks an outstanding request
type DecryptionStatus string

const (
	DecryptionStatusPending DecryptionStatus = "pending"
	DecryptionStatusReady   DecryptionStatus = "ready"
)

// PoolsTarget is the BetIndex used by pool requests.
const PoolsTarget int64 = -1

// DecryptedValues holds plaintexts in submission order. Serialized as decimal strings.
type DecryptedValues []uint64

// Value implements driver.Valuer interface for DecryptedValues
func (dv DecryptedValues) Value() (driver.Value, error) {
	if dv == nil {
		return nil, nil
	}
	out := make([]string, len(dv))
	for i, v := range dv {
		out[i] = strconv.FormatUint(v, 10)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for DecryptedValues
func (dv *DecryptedValues) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*dv = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into DecryptedValues", value)
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return err
	}
	out := make(DecryptedValues, len(strs))
	for i, s := range strs {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		out[i] = n
	}
	*dv = out
	return nil
}

// DecryptionRequest is the persisted record of one threshold-decryption submission.
// At most one exists per (market, kind, bet index).
type DecryptionRequest struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID    uint64           `gorm:"not null;uniqueIndex:idx_decryption_target,priority:1" json:"market_id"`
	Kind        DecryptionKind   `gorm:"type:varchar(16);not null;uniqueIndex:idx_decryption_target,priority:2" json:"kind"`
	BetIndex    int64            `gorm:"not null;uniqueIndex:idx_decryption_target,priority:3" json:"bet_index"`
	Token       string           `gorm:"type:varchar(128);not null" json:"token"`
	Status      DecryptionStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Result      DecryptedValues  `gorm:"type:text" json:"result,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for DecryptionRequest model
func (*DecryptionRequest) TableName() string {
	return "decryption_requests"
}

// BeforeCreate sets up the model before creation
func (dr *DecryptionRequest) BeforeCreate(_ *gorm.DB) error {
	if dr.ID == uuid.Nil {
		dr.ID = uuid.New()
	}
	if dr.Status == "" {
		dr.Status = DecryptionStatusPending
	}
	return nil
}

// IsReady reports whether the plaintext result was observed
func (dr *DecryptionRequest) IsReady() bool {
	return dr.Status == DecryptionStatusReady
}

// Complete stores the plaintexts once the network produced them
func (dr *DecryptionRequest) Complete(values []uint64, now time.Time) {
	dr.Result = DecryptedValues(values)
	dr.Status = DecryptionStatusReady
	dr.CompletedAt = &now
}

// AsAmount converts a plaintext pool value to the amount domain.
func AsAmount(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
