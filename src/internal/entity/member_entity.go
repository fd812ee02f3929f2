package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type Member struct {
	ID                uint64          `db:"id"`
	UUID              string          `db:"uuid"`
	Pin               string          `db:"pin"`
	PhoneNumber       string          `db:"phone_number"`
	Email             sql.NullString  `db:"email"`
	FirstName         string          `db:"first_name"`
	LastName          string          `db:"last_name"`
	FullName          string          `db:"full_name"`
	ShopName          string          `db:"shop_name"`
	District          sql.NullString  `db:"district"`
	Latitude          sql.NullFloat64 `db:"latitude"`
	Longitude         sql.NullFloat64 `db:"longitude"`
	PhotoPath         sql.NullString  `db:"photo_path"`
	SellerID          string          `db:"seller_id"`
	UplineID          sql.NullString  `db:"upline_id"`
	SellerLevel       int             `db:"seller_level"`
	TotalDownlines    int             `db:"total_downlines"`
	CommissionBalance decimal.Decimal `db:"commission_balance"`
	AccountStatus     string          `db:"account_status"`
	LastLoginAt       *time.Time      `db:"last_login_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	DeletedAt         *time.Time      `db:"deleted_at"`
}
