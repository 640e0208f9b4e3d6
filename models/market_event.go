package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventAction names a lifecycle step
type EventAction string

const (
	EventMarketCreated       EventAction = "MarketCreated"
	EventBetPlaced           EventAction = "BetPlaced"
	EventDecryptionRequested EventAction = "DecryptionRequested"
	EventMarketSettled       EventAction = "MarketSettled"
	EventPayoutWithdrawn     EventAction = "PayoutWithdrawn"
	EventPayoutRolledBack    EventAction = "PayoutRolledBack"
	EventMarketHalted        EventAction = "MarketHalted"
)

// EventPayload carries public event data only
type EventPayload map[string]interface{}

// Value implements driver.Valuer interface for EventPayload
func (ep EventPayload) Value() (driver.Value, error) {
	if ep == nil {
		return "{}", nil
	}
	b, err := json.Marshal(ep)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for EventPayload
func (ep *EventPayload) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, ep)
	case string:
		return json.Unmarshal([]byte(v), ep)
	}
	return fmt.Errorf("cannot scan %T into EventPayload", value)
}

// MarketEvent is an append-only log entry written in the same transaction as the change it describes
type MarketEvent struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID  uint64       `gorm:"not null;index:idx_market_events_market" json:"market_id"`
	Action    EventAction  `gorm:"type:varchar(50);not null" json:"action"`
	BetIndex  *int64       `json:"bet_index,omitempty"`
	Actor     *Address     `gorm:"type:varchar(42)" json:"actor,omitempty"`
	Payload   EventPayload `gorm:"type:text" json:"payload"`
	CreatedAt time.Time    `gorm:"autoCreateTime;index:idx_market_events_created_at" json:"created_at"`
}

// TableName specifies the table name for MarketEvent model
func (*MarketEvent) TableName() string {
	return "market_events"
}

// BeforeCreate sets up the model before creation
func (e *MarketEvent) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsBetEvent reports whether the event concerns a single bet
func (e *MarketEvent) IsBetEvent() bool {
	return e.BetIndex != nil
}

// NewMarketEvent builds a market-level event
func NewMarketEvent(marketID uint64, action EventAction, payload EventPayload) *MarketEvent {
	return &MarketEvent{
		MarketID: marketID,
		Action:   action,
		Payload:  payload,
	}
}

// NewBetEvent builds an event tied to one bet and its bettor
func NewBetEvent(marketID uint64, index int64, actor Address, action EventAction, payload EventPayload) *MarketEvent {
	return &MarketEvent{
		MarketID: marketID,
		Action:   action,
		BetIndex: &index,
		Actor:    &actor,
		Payload:  payload,
	}
}
