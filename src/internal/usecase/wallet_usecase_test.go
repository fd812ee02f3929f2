package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"member-service/src/internal/model"
	"member-service/src/pkg/databases/mysql"
	httpError "member-service/src/pkg/http-error"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWithdrawalTask(t *testing.T, reference string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(WithdrawalTaskPayload{Reference: reference})
	require.NoError(t, err)
	return asynq.NewTask(TaskProcessWithdrawal, payload)
}

type failingGateway struct{}

func (failingGateway) Disburse(ctx context.Context, reference string, amount decimal.Decimal, method, accountNumber string) error {
	return errors.New("provider unavailable")
}

type acceptingGateway struct{}

func (acceptingGateway) Disburse(ctx context.Context, reference string, amount decimal.Decimal, method, accountNumber string) error {
	return nil
}

func newWalletTest(t *testing.T, db mysql.DBInterface) *WalletUseCase {
	t.Helper()
	return NewWalletUseCase(
		testLogger(),
		validator.New(),
		viper.New(),
		db,
		newMemberRepo(db),
		newTransactionRepo(db),
		nil,
		nil,
		acceptingGateway{},
	)
}

func TestPayBelowMinimum(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)

	result := uc.Pay(context.Background(), &model.PayRequest{
		MemberID:    1,
		Amount:      decimal.NewFromInt(50),
		OrderID:     "ORD-1",
		Description: "groceries",
	})
	require.NotNil(t, result.Error)
	errObj, ok := result.Error.(*httpError.CommonError)
	require.True(t, ok)
	assert.Equal(t, httpError.NewUnprocessableEntity().Code, errObj.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayDebitsBalance(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM members WHERE id = \? AND deleted_at IS NULL FOR UPDATE`).
		WithArgs(uint64(1)).
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "500000", "active", "255700000001", "Amina"))
	mock.ExpectExec(`UPDATE members SET commission_balance = commission_balance \+ \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transactions`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result := uc.Pay(context.Background(), &model.PayRequest{
		MemberID:    1,
		Amount:      decimal.NewFromInt(20000),
		OrderID:     "ORD-1",
		Description: "groceries",
	})
	require.Nil(t, result.Error)
	response, ok := result.Data.(*model.WalletMutationResponse)
	require.True(t, ok)
	assert.True(t, response.RemainingBalance.Equal(decimal.NewFromInt(480000)))
	assert.True(t, strings.HasPrefix(response.TransactionID, "TXN_"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM members WHERE id = \? AND deleted_at IS NULL FOR UPDATE`).
		WithArgs(uint64(1)).
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "500000", "active", "255700000001", "Amina"))
	mock.ExpectRollback()

	result := uc.Withdraw(context.Background(), &model.WithdrawRequest{
		MemberID:      1,
		Amount:        decimal.NewFromInt(600000),
		PaymentMethod: "mpesa",
		AccountNumber: "255700000001",
	})
	require.NotNil(t, result.Error)
	errObj, ok := result.Error.(*httpError.CommonError)
	require.True(t, ok)
	assert.Equal(t, httpError.NewUnprocessableEntity().Code, errObj.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferMovesBothBalances(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)

	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000002").
		WillReturnRows(memberRow(2, "SLR000002", nil, 1, "0", "active", "255700000002", "Baraka"))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM members WHERE id = \? AND deleted_at IS NULL FOR UPDATE`).
		WithArgs(uint64(1)).
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "500000", "active", "255700000001", "Amina"))
	mock.ExpectExec(`UPDATE members SET commission_balance = commission_balance \+ \?`).
		WithArgs("-50000", sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transactions`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE members SET commission_balance = commission_balance \+ \?`).
		WithArgs("50000", sqlmock.AnyArg(), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transactions`).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	result := uc.Transfer(context.Background(), &model.TransferRequest{
		MemberID:       1,
		RecipientPhone: "255700000002",
		Amount:         decimal.NewFromInt(50000),
		Description:    "rent share",
	})
	require.Nil(t, result.Error)
	response, ok := result.Data.(*model.WalletMutationResponse)
	require.True(t, ok)
	assert.True(t, response.RemainingBalance.Equal(decimal.NewFromInt(450000)))
	assert.True(t, strings.HasPrefix(response.TransactionID, "TRF_"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferToSelfRejected(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)

	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000001").
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "500000", "active", "255700000001", "Amina"))

	result := uc.Transfer(context.Background(), &model.TransferRequest{
		MemberID:       1,
		RecipientPhone: "255700000001",
		Amount:         decimal.NewFromInt(50000),
	})
	require.NotNil(t, result.Error)
	errObj, ok := result.Error.(*httpError.CommonError)
	require.True(t, ok)
	assert.Equal(t, httpError.NewUnprocessableEntity().Code, errObj.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferInsufficientBalanceNoLedgerRows(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)

	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000002").
		WillReturnRows(memberRow(2, "SLR000002", nil, 1, "0", "active", "255700000002", "Baraka"))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM members WHERE id = \? AND deleted_at IS NULL FOR UPDATE`).
		WithArgs(uint64(1)).
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "100", "active", "255700000001", "Amina"))
	mock.ExpectRollback()

	result := uc.Transfer(context.Background(), &model.TransferRequest{
		MemberID:       1,
		RecipientPhone: "255700000002",
		Amount:         decimal.NewFromInt(50000),
	})
	require.NotNil(t, result.Error)
	errObj, ok := result.Error.(*httpError.CommonError)
	require.True(t, ok)
	assert.Equal(t, httpError.NewUnprocessableEntity().Code, errObj.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceReportsCachedAndLedger(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)

	mock.ExpectQuery(`FROM members WHERE id = \? AND deleted_at IS NULL`).
		WithArgs(uint64(1)).
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "75000", "active", "255700000001", "Amina"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM transactions`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("70000"))

	result := uc.Balance(context.Background(), 1)
	require.Nil(t, result.Error)
	response, ok := result.Data.(*model.BalanceResponse)
	require.True(t, ok)
	assert.True(t, response.Balance.Equal(decimal.NewFromInt(75000)))
	assert.True(t, response.LedgerBalance.Equal(decimal.NewFromInt(70000)))
	assert.Equal(t, "TZS", response.Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessWithdrawalFailureCompensates(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)
	uc.Payout = failingGateway{}

	pendingRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(transactionTestColumns).AddRow(
			10, 1, "withdrawal", "-5000", "mpesa", "pending", "WTH_ABC",
			"Withdrawal to 255700000001", nil, testTime(),
		)
	}

	mock.ExpectQuery(`FROM transactions WHERE reference_number = \?`).
		WithArgs("WTH_ABC").
		WillReturnRows(pendingRow())
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM transactions WHERE reference_number = \? FOR UPDATE`).
		WithArgs("WTH_ABC").
		WillReturnRows(pendingRow())
	mock.ExpectExec(`UPDATE members SET commission_balance = commission_balance \+ \?`).
		WithArgs("5000", sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE transactions SET status = \?`).
		WithArgs("failed", sqlmock.AnyArg(), "WTH_ABC").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	task := newWithdrawalTask(t, "WTH_ABC")
	err := uc.ProcessWithdrawal(context.Background(), task)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessWithdrawalSkipsProcessed(t *testing.T) {
	db, mock := newTestDB(t)
	uc := newWalletTest(t, db)

	mock.ExpectQuery(`FROM transactions WHERE reference_number = \?`).
		WithArgs("WTH_DONE").
		WillReturnRows(sqlmock.NewRows(transactionTestColumns).AddRow(
			11, 1, "withdrawal", "-5000", "mpesa", "completed", "WTH_DONE",
			"Withdrawal to 255700000001", testTime(), testTime(),
		))

	err := uc.ProcessWithdrawal(context.Background(), newWithdrawalTask(t, "WTH_DONE"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
