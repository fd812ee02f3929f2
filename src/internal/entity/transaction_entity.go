package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxnTypePayment     = "payment"
	TxnTypeTopup       = "topup"
	TxnTypeCommission  = "commission"
	TxnTypeTransferIn  = "transfer_in"
	TxnTypeTransferOut = "transfer_out"
	TxnTypeWithdrawal  = "withdrawal"

	TxnStatusPending   = "pending"
	TxnStatusCompleted = "completed"
	TxnStatusFailed    = "failed"
)

// Transaction is an append-only ledger entry. Amounts are signed: credits
// positive, debits negative. Only Status may change after insert.
type Transaction struct {
	ID            uint64          `db:"id"`
	MemberID      uint64          `db:"member_id"`
	Type          string          `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentMethod sql.NullString  `db:"payment_method"`
	Status        string          `db:"status"`
	Reference     string          `db:"reference_number"`
	Description   sql.NullString  `db:"description"`
	ProcessedAt   *time.Time      `db:"processed_at"`
	CreatedAt     time.Time       `db:"created_at"`
}
