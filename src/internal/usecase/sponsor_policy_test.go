package usecase

import (
	"context"
	"testing"

	httpError "member-service/src/pkg/http-error"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSellerID(t *testing.T) {
	assert.Equal(t, "SLR000007", FormatSellerID(7))
	assert.Equal(t, "SLR001007", FormatSellerID(1007))
	assert.Equal(t, "SLR123456", FormatSellerID(123456))
	assert.Equal(t, "SLR1234567", FormatSellerID(1234567))
}

func TestMaxDownlinesDefaults(t *testing.T) {
	policy := NewSponsorPolicy(viper.New(), nil)

	assert.Equal(t, 5, policy.MaxDownlines(1))
	assert.Equal(t, 10, policy.MaxDownlines(2))
	assert.Equal(t, 20, policy.MaxDownlines(3))
	assert.Equal(t, 50, policy.MaxDownlines(4))
	assert.Equal(t, 100, policy.MaxDownlines(5))
}

func TestMaxDownlinesUnknownLevel(t *testing.T) {
	policy := NewSponsorPolicy(viper.New(), nil)

	assert.Equal(t, 5, policy.MaxDownlines(0))
	assert.Equal(t, 5, policy.MaxDownlines(-1))
	assert.Equal(t, 5, policy.MaxDownlines(99))
}

func TestMaxDownlinesConfigOverride(t *testing.T) {
	v := viper.New()
	v.Set("sponsor.capacity.level_2", 25)
	policy := NewSponsorPolicy(v, nil)

	assert.Equal(t, 25, policy.MaxDownlines(2))
	assert.Equal(t, 5, policy.MaxDownlines(1))
}

func TestValidateSponsorNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	policy := NewSponsorPolicy(viper.New(), newMemberRepo(db))

	mock.ExpectQuery(`account_status = 'active' AND deleted_at IS NULL`).
		WithArgs("SLR999999").
		WillReturnRows(sqlmock.NewRows(memberTestColumns))

	sponsor, count, errObj := policy.ValidateSponsor(context.Background(), "SLR999999")
	require.NotNil(t, errObj)
	assert.Equal(t, httpError.NewNotFound().Code, errObj.Code)
	assert.Nil(t, sponsor)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSponsorAtCapacity(t *testing.T) {
	db, mock := newTestDB(t)
	policy := NewSponsorPolicy(viper.New(), newMemberRepo(db))

	mock.ExpectQuery(`account_status = 'active' AND deleted_at IS NULL`).
		WithArgs("SLR000001").
		WillReturnRows(memberRow(1, "SLR000001", nil, 1, "0", "active", "255700000001", "Amina"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members`).
		WithArgs("SLR000001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	sponsor, count, errObj := policy.ValidateSponsor(context.Background(), "SLR000001")
	require.NotNil(t, errObj)
	assert.Equal(t, httpError.NewUnprocessableEntity().Code, errObj.Code)
	assert.Nil(t, sponsor)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSponsorWithRoom(t *testing.T) {
	db, mock := newTestDB(t)
	policy := NewSponsorPolicy(viper.New(), newMemberRepo(db))

	mock.ExpectQuery(`account_status = 'active' AND deleted_at IS NULL`).
		WithArgs("SLR000002").
		WillReturnRows(memberRow(2, "SLR000002", nil, 2, "0", "active", "255700000002", "Baraka"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members`).
		WithArgs("SLR000002").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	sponsor, count, errObj := policy.ValidateSponsor(context.Background(), "SLR000002")
	require.Nil(t, errObj)
	require.NotNil(t, sponsor)
	assert.Equal(t, "SLR000002", sponsor.SellerID)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
