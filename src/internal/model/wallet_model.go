package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BalanceResponse struct {
	Balance       decimal.Decimal `json:"balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Currency      string          `json:"currency"`
}

type PayRequest struct {
	MemberID    uint64          `json:"-" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	OrderID     string          `json:"order_id" validate:"required,max=100"`
	Description string          `json:"description" validate:"required,max=255"`
}

type AddFundsRequest struct {
	MemberID      uint64          `json:"-" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=100"`
}

type TransferRequest struct {
	MemberID       uint64          `json:"-" validate:"required"`
	RecipientPhone string          `json:"recipient_phone" validate:"required,max=20"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	Description    string          `json:"description" validate:"omitempty,max=255"`
}

type WithdrawRequest struct {
	MemberID      uint64          `json:"-" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=100"`
	AccountNumber string          `json:"account_number" validate:"required,max=100"`
}

type WalletMutationResponse struct {
	TransactionID    string          `json:"transaction_id"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

type TransactionResponse struct {
	Reference   string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	Date        time.Time       `json:"date"`
}
