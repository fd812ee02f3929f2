package usecase

import (
	"context"
	"testing"

	"member-service/src/internal/model"
	httpError "member-service/src/pkg/http-error"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	driver "github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type blockEverything struct{}

func (blockEverything) IsPhoneNumberBlocked(ctx context.Context, phoneNumber string) bool { return true }
func (blockEverything) IsSponsorBlocked(ctx context.Context, sellerID string) bool        { return true }

func newAuthTest(t *testing.T) (*AuthUseCase, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	v := viper.New()
	v.Set("jwt.secret", "test-secret")

	memberRepo := newMemberRepo(db)
	uc := NewAuthUseCase(
		testLogger(),
		validator.New(),
		v,
		db,
		memberRepo,
		NewSponsorPolicy(v, memberRepo),
		AllowAllPolicy{},
		nil,
		nil,
		nil,
		nil,
	)
	return uc, mock
}

func registerRequest() *model.RegisterMemberRequest {
	return &model.RegisterMemberRequest{
		FirstName:    "Neema",
		LastName:     "Mushi",
		PhoneNumber:  "255700000100",
		Pin:          "1234",
		ShopName:     "Neema Duka",
		ShopLocation: "Kariakoo, Dar es Salaam",
		SponsorCode:  "SLR000001",
	}
}

func TestRegisterBlockedPhone(t *testing.T) {
	uc, mock := newAuthTest(t)
	uc.Blocklist = blockEverything{}

	result := uc.Register(context.Background(), registerRequest())
	require.NotNil(t, result.Error)
	errObj, ok := result.Error.(*httpError.CommonError)
	require.True(t, ok)
	assert.Equal(t, httpError.NewForbidden().Code, errObj.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicatePhone(t *testing.T) {
	uc, mock := newAuthTest(t)

	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000100").
		WillReturnRows(memberRow(9, "SLR000009", nil, 1, "0", "active", "255700000100", "Neema"))

	result := uc.Register(context.Background(), registerRequest())
	require.NotNil(t, result.Error)
	errObj, ok := result.Error.(*httpError.CommonError)
	require.True(t, ok)
	assert.Equal(t, httpError.NewUnprocessableEntity().Code, errObj.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterSponsorAtCapacity(t *testing.T) {
	uc, mock := newAuthTest(t)

	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000100").
		WillReturnRows(sqlmock.NewRows(memberTestColumns))
	mock.ExpectBegin()
	mock.ExpectQuery(`account_status = 'active' AND deleted_at IS NULL FOR UPDATE`).
		WithArgs("SLR000001").
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "0", "active", "255700000001", "Amina"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members`).
		WithArgs("SLR000001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectRollback()

	result := uc.Register(context.Background(), registerRequest())
	require.NotNil(t, result.Error)
	errObj, ok := result.Error.(*httpError.CommonError)
	require.True(t, ok)
	assert.Equal(t, httpError.NewUnprocessableEntity().Code, errObj.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterSellerIDCollisionRetries(t *testing.T) {
	uc, mock := newAuthTest(t)

	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000100").
		WillReturnRows(sqlmock.NewRows(memberTestColumns))
	mock.ExpectBegin()
	mock.ExpectQuery(`account_status = 'active' AND deleted_at IS NULL FOR UPDATE`).
		WithArgs("SLR000001").
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "0", "active", "255700000001", "Amina"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members`).
		WithArgs("SLR000001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(id\), 0\) \+ 1 FROM members`).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(7))

	// first candidate collides on the seller_id unique key, the retry lands
	mock.ExpectExec(`INSERT INTO members`).
		WillReturnError(&driver.MySQLError{Number: 1062})
	mock.ExpectExec(`INSERT INTO members`).
		WillReturnResult(sqlmock.NewResult(1007, 1))
	mock.ExpectExec(`UPDATE members SET total_downlines = total_downlines \+ 1`).
		WithArgs(sqlmock.AnyArg(), "SLR000001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result := uc.Register(context.Background(), registerRequest())
	require.Nil(t, result.Error)
	response, ok := result.Data.(*model.RegisterMemberResponse)
	require.True(t, ok)
	assert.Equal(t, "SLR001007", response.Member.SellerID)
	assert.Equal(t, uint64(1007), response.Member.ID)
	assert.Equal(t, "SLR000001", response.Sponsor.ID)
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckPhoneRegistered(t *testing.T) {
	uc, mock := newAuthTest(t)

	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000001").
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "0", "active", "255700000001", "Amina"))

	result := uc.CheckPhone(context.Background(), &model.CheckPhoneRequest{PhoneNumber: "255700000001"})
	require.Nil(t, result.Error)
	response, ok := result.Data.(*model.CheckPhoneResponse)
	require.True(t, ok)
	assert.True(t, response.IsRegistered)
	require.NotNil(t, response.MemberID)
	assert.Equal(t, uint64(1), *response.MemberID)
	assert.True(t, response.RegistrationAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPin(t *testing.T) {
	uc, mock := newAuthTest(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)

	rows := sqlmock.NewRows(memberTestColumns).AddRow(
		1, "uuid-SLR000001", string(hash), "255700000001", nil, "Amina", "Tester", "Amina Tester",
		"Shop SLR000001", nil, nil, nil, nil, "SLR000001",
		nil, 1, 0, "0",
		"active", nil, testTime(), testTime(), nil,
	)
	mock.ExpectQuery(`FROM members WHERE phone_number = \? AND deleted_at IS NULL`).
		WithArgs("255700000001").
		WillReturnRows(rows)

	result := uc.Login(context.Background(), &model.LoginRequest{Phone: "255700000001", Pin: "9999"})
	require.NotNil(t, result.Error)
	errObj, ok := result.Error.(*httpError.CommonError)
	require.True(t, ok)
	assert.Equal(t, httpError.NewUnprocessableEntity().Code, errObj.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
