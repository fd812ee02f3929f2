package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event interface {
	GetId() string
}

type MemberRegisteredEvent struct {
	EventID      string    `json:"event_id"`
	MemberID     uint64    `json:"member_id"`
	SellerID     string    `json:"seller_id"`
	UplineID     string    `json:"upline_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (e *MemberRegisteredEvent) GetId() string {
	return e.EventID
}

type WalletTransactionEvent struct {
	EventID    string          `json:"event_id"`
	MemberID   uint64          `json:"member_id"`
	Reference  string          `json:"reference"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	RecordedAt time.Time       `json:"recorded_at"`
}

func (e *WalletTransactionEvent) GetId() string {
	return e.EventID
}

// OrderCompletedEvent is consumed from the order pipeline; Amount is the
// gross order value the commission is computed from.
type OrderCompletedEvent struct {
	EventID     string          `json:"event_id"`
	OrderID     string          `json:"order_id"`
	SellerID    string          `json:"seller_id"`
	Amount      decimal.Decimal `json:"amount"`
	CompletedAt time.Time       `json:"completed_at"`
}
