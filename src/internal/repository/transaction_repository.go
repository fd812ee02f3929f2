package repository

import (
	"context"
	"time"

	"member-service/src/internal/entity"
	"member-service/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const transactionColumns = `
	id, member_id, type, amount, payment_method, status, reference_number,
	description, processed_at, created_at
	`

type TransactionRepository struct {
	DB mysql.DBInterface
}

func NewTransactionRepository(db mysql.DBInterface) *TransactionRepository {
	return &TransactionRepository{
		DB: db,
	}
}

func (r *TransactionRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, txn *entity.Transaction) error {
	query := `INSERT INTO transactions (
			member_id, type, amount, payment_method, status, reference_number,
			description, processed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query,
		txn.MemberID, txn.Type, txn.Amount, txn.PaymentMethod, txn.Status,
		txn.Reference, txn.Description, txn.ProcessedAt, time.Now(),
	)
	return err
}

func (r *TransactionRepository) ListByMember(ctx context.Context, memberID uint64, limit int) ([]entity.Transaction, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	var txns []entity.Transaction
	query := `SELECT` + transactionColumns + `FROM transactions
		WHERE member_id = ?
		ORDER BY created_at DESC
		LIMIT ?`
	if err := db.SelectContext(ctx, &txns, query, memberID, limit); err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *TransactionRepository) FindByReference(ctx context.Context, reference string) (*entity.Transaction, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var txn entity.Transaction
	query := `SELECT` + transactionColumns + `FROM transactions WHERE reference_number = ?`
	if err := db.GetContext(ctx, &txn, query, reference); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) FindByReferenceForUpdate(ctx context.Context, tx *sqlx.Tx, reference string) (*entity.Transaction, error) {
	var txn entity.Transaction
	query := `SELECT` + transactionColumns + `FROM transactions WHERE reference_number = ? FOR UPDATE`
	if err := tx.GetContext(ctx, &txn, query, reference); err != nil {
		return nil, err
	}
	return &txn, nil
}

// SumCompletedByMember is the reconciliation read: the ledger is the source
// of truth, the member's balance column is a cached projection of this sum.
func (r *TransactionRepository) SumCompletedByMember(ctx context.Context, memberID uint64) (decimal.Decimal, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return decimal.Zero, err
	}

	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE member_id = ? AND status = 'completed'`
	if err := db.GetContext(ctx, &sum, query, memberID); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *TransactionRepository) MarkStatusTx(ctx context.Context, tx *sqlx.Tx, reference, status string) error {
	query := `UPDATE transactions SET status = ?, processed_at = ?
		WHERE reference_number = ?`
	_, err := tx.ExecContext(ctx, query, status, time.Now(), reference)
	return err
}
