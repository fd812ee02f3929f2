package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"member-service/src/internal/entity"
	"member-service/src/pkg/databases/mysql"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (mysql.DBInterface, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return mysql.NewFromDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSumCompletedByMember(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM transactions`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("12345.50"))

	sum, err := repo.SumCompletedByMember(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("12345.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByMemberDefaultLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	columns := []string{
		"id", "member_id", "type", "amount", "payment_method", "status", "reference_number",
		"description", "processed_at", "created_at",
	}
	mock.ExpectQuery(`FROM transactions\s+WHERE member_id = \?`).
		WithArgs(uint64(7), 50).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, 7, "topup", "10000", "mpesa", "completed", "TOP_AAA", "Wallet top-up", time.Now(), time.Now()).
			AddRow(1, 7, "payment", "-5000", nil, "completed", "TXN_BBB", "Payment for order ORD-1", time.Now(), time.Now()))

	txns, err := repo.ListByMember(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "TOP_AAA", txns[0].Reference)
	assert.True(t, txns[1].Amount.Equal(decimal.NewFromInt(-5000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByReferenceNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`FROM transactions WHERE reference_number = \?`).
		WithArgs("WTH_MISSING").
		WillReturnError(sql.ErrNoRows)

	txn, err := repo.FindByReference(context.Background(), "WTH_MISSING")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.Nil(t, txn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTxInsertsSignedAmount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	sqlxDB, err := db.GetDB()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO transactions`).
		WithArgs(uint64(7), "payment", "-5000", nil, "completed", "TXN_CCC",
			"Payment for order ORD-9", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	now := time.Now()
	err = repo.CreateTx(context.Background(), tx, &entity.Transaction{
		MemberID:    7,
		Type:        entity.TxnTypePayment,
		Amount:      decimal.NewFromInt(-5000),
		Status:      entity.TxnStatusCompleted,
		Reference:   "TXN_CCC",
		Description: sql.NullString{String: "Payment for order ORD-9", Valid: true},
		ProcessedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkStatusTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	sqlxDB, err := db.GetDB()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE transactions SET status = \?`).
		WithArgs("completed", sqlmock.AnyArg(), "WTH_DDD").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkStatusTx(context.Background(), tx, "WTH_DDD", entity.TxnStatusCompleted))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
