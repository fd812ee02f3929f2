package usecase

import (
	"testing"
	"time"

	"member-service/src/internal/repository"
	"member-service/src/pkg/databases/mysql"
	"member-service/src/pkg/log"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

var memberTestColumns = []string{
	"id", "uuid", "pin", "phone_number", "email", "first_name", "last_name", "full_name",
	"shop_name", "district", "latitude", "longitude", "photo_path", "seller_id",
	"upline_id", "seller_level", "total_downlines", "commission_balance",
	"account_status", "last_login_at", "created_at", "updated_at", "deleted_at",
}

var transactionTestColumns = []string{
	"id", "member_id", "type", "amount", "payment_method", "status", "reference_number",
	"description", "processed_at", "created_at",
}

func newTestDB(t *testing.T) (mysql.DBInterface, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return mysql.NewFromDB(sqlx.NewDb(db, "sqlmock")), mock
}

func testLogger() log.Log {
	v := viper.New()
	v.Set("log.level", "ERROR")
	log.InitLogger(v)
	return log.GetLogger()
}

func memberRow(id uint64, sellerID string, uplineID interface{}, level int, balance, status, phone, firstName string) *sqlmock.Rows {
	return sqlmock.NewRows(memberTestColumns).AddRow(
		id, "uuid-"+sellerID, "$2a$10$hash", phone, nil, firstName, "Tester", firstName+" Tester",
		"Shop "+sellerID, nil, nil, nil, nil, sellerID,
		uplineID, level, 0, balance,
		status, nil, testTime(), testTime(), nil,
	)
}

func testTime() time.Time {
	return time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
}

func newMemberRepo(db mysql.DBInterface) *repository.MemberRepository {
	return repository.NewMemberRepository(db)
}

func newTransactionRepo(db mysql.DBInterface) *repository.TransactionRepository {
	return repository.NewTransactionRepository(db)
}
