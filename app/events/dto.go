package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/veilbet/models"
)

// Filters narrows an event listing
type Filters struct {
	Action   string `form:"action"`
	BetIndex *int64 `form:"bet_index" binding:"omitempty,min=0"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PerPage  int    `form:"per_page,default=50" binding:"min=1,max=200"`
}

// EventResponse is the public view of a market event
type EventResponse struct {
	ID        uuid.UUID           `json:"id"`
	MarketID  uint64              `json:"market_id"`
	Action    models.EventAction  `json:"action"`
	BetIndex  *int64              `json:"bet_index,omitempty"`
	Actor     *models.Address     `json:"actor,omitempty"`
	Payload   models.EventPayload `json:"payload,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

func ToEventResponse(e *models.MarketEvent) EventResponse {
	return EventResponse{
		ID:        e.ID,
		MarketID:  e.MarketID,
		Action:    e.Action,
		BetIndex:  e.BetIndex,
		Actor:     e.Actor,
		Payload:   e.Payload,
		CreatedAt: e.CreatedAt,
	}
}

func ToEventResponseList(events []models.MarketEvent) []EventResponse {
	out := make([]EventResponse, len(events))
	for i := range events {
		out[i] = ToEventResponse(&events[i])
	}
	return out
}
