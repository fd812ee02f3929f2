package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"member-service/src/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberColumnsForTest = []string{
	"id", "uuid", "pin", "phone_number", "email", "first_name", "last_name", "full_name",
	"shop_name", "district", "latitude", "longitude", "photo_path", "seller_id",
	"upline_id", "seller_level", "total_downlines", "commission_balance",
	"account_status", "last_login_at", "created_at", "updated_at", "deleted_at",
}

func sampleMemberRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(memberColumnsForTest).AddRow(
		1, "uuid-1", "$2a$10$hash", "255700000001", nil, "Amina", "Juma", "Amina Juma",
		"Amina Duka", "Kariakoo", nil, nil, nil, "SLR000001",
		nil, 1, 3, "25000",
		"active", nil, now, now, nil,
	)
}

func TestFindByPhoneScansBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000001").
		WillReturnRows(sampleMemberRow())

	member, err := repo.FindByPhone(context.Background(), "255700000001")
	require.NoError(t, err)
	assert.Equal(t, "SLR000001", member.SellerID)
	assert.True(t, member.CommissionBalance.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, 3, member.TotalDownlines)
	assert.False(t, member.UplineID.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTxReturnsInsertID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	sqlxDB, err := db.GetDB()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO members`).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	id, err := repo.CreateTx(context.Background(), tx, &entity.Member{
		UUID:              "uuid-42",
		Pin:               "$2a$10$hash",
		PhoneNumber:       "255700000042",
		FirstName:         "Zawadi",
		LastName:          "Omari",
		FullName:          "Zawadi Omari",
		ShopName:          "Zawadi Duka",
		SellerID:          "SLR000042",
		UplineID:          sql.NullString{String: "SLR000001", Valid: true},
		SellerLevel:       1,
		CommissionBalance: decimal.Zero,
		AccountStatus:     entity.StatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignUplineOnlyWhenUnset(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	sqlxDB, err := db.GetDB()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE members SET upline_id = \?`).
		WithArgs("SLR000001", sqlmock.AnyArg(), "SLR000042").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.AssignUplineTx(context.Background(), tx, "SLR000042", "SLR000001"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteSuspendsAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectExec(`UPDATE members SET deleted_at = \?, account_status = 'suspended'`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveDownlines(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members`).
		WithArgs("SLR000001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountActiveDownlines(context.Background(), "SLR000001")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
