package repository

import (
	"context"
	"time"

	"member-service/src/internal/entity"
	"member-service/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const memberColumns = `
	id, uuid, pin, phone_number, email, first_name, last_name, full_name,
	shop_name, district, latitude, longitude, photo_path, seller_id,
	upline_id, seller_level, total_downlines, commission_balance,
	account_status, last_login_at, created_at, updated_at, deleted_at
	`

type MemberRepository struct {
	DB mysql.DBInterface
}

func NewMemberRepository(db mysql.DBInterface) *MemberRepository {
	return &MemberRepository{
		DB: db,
	}
}

func (r *MemberRepository) FindByID(ctx context.Context, id uint64) (*entity.Member, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var member entity.Member
	query := `SELECT` + memberColumns + `FROM members WHERE id = ? AND deleted_at IS NULL`
	if err := db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) FindByPhone(ctx context.Context, phone string) (*entity.Member, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var member entity.Member
	query := `SELECT` + memberColumns + `FROM members WHERE phone_number = ? AND deleted_at IS NULL`
	if err := db.GetContext(ctx, &member, query, phone); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) FindBySellerID(ctx context.Context, sellerID string) (*entity.Member, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var member entity.Member
	query := `SELECT` + memberColumns + `FROM members WHERE seller_id = ? AND deleted_at IS NULL`
	if err := db.GetContext(ctx, &member, query, sellerID); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) FindActiveBySellerID(ctx context.Context, sellerID string) (*entity.Member, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var member entity.Member
	query := `SELECT` + memberColumns + `FROM members
		WHERE seller_id = ? AND account_status = 'active' AND deleted_at IS NULL`
	if err := db.GetContext(ctx, &member, query, sellerID); err != nil {
		return nil, err
	}
	return &member, nil
}

// FindActiveBySellerIDForUpdate locks the sponsor row so the capacity check
// and the downline-counter increment serialize across concurrent
// registrations.
func (r *MemberRepository) FindActiveBySellerIDForUpdate(ctx context.Context, tx *sqlx.Tx, sellerID string) (*entity.Member, error) {
	var member entity.Member
	query := `SELECT` + memberColumns + `FROM members
		WHERE seller_id = ? AND account_status = 'active' AND deleted_at IS NULL FOR UPDATE`
	if err := tx.GetContext(ctx, &member, query, sellerID); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uint64) (*entity.Member, error) {
	var member entity.Member
	query := `SELECT` + memberColumns + `FROM members WHERE id = ? AND deleted_at IS NULL FOR UPDATE`
	if err := tx.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// ListDownlines returns every direct downline regardless of status, newest
// first.
func (r *MemberRepository) ListDownlines(ctx context.Context, sellerID string) ([]entity.Member, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var members []entity.Member
	query := `SELECT` + memberColumns + `FROM members
		WHERE upline_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC`
	if err := db.SelectContext(ctx, &members, query, sellerID); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MemberRepository) ListActiveDownlines(ctx context.Context, sellerID string) ([]entity.Member, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var members []entity.Member
	query := `SELECT` + memberColumns + `FROM members
		WHERE upline_id = ? AND account_status = 'active' AND deleted_at IS NULL
		ORDER BY created_at DESC`
	if err := db.SelectContext(ctx, &members, query, sellerID); err != nil {
		return nil, err
	}
	return members, nil
}

// CountActiveDownlines is the live count capacity is enforced against; the
// cached total_downlines column is display-only.
func (r *MemberRepository) CountActiveDownlines(ctx context.Context, sellerID string) (int, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return 0, err
	}

	var count int
	query := `SELECT COUNT(*) FROM members
		WHERE upline_id = ? AND account_status = 'active' AND deleted_at IS NULL`
	if err := db.GetContext(ctx, &count, query, sellerID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MemberRepository) CountActiveDownlinesTx(ctx context.Context, tx *sqlx.Tx, sellerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM members
		WHERE upline_id = ? AND account_status = 'active' AND deleted_at IS NULL`
	if err := tx.GetContext(ctx, &count, query, sellerID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MemberRepository) SearchDownlines(ctx context.Context, sellerID, query string) ([]entity.Member, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var members []entity.Member
	pattern := "%" + query + "%"
	q := `SELECT` + memberColumns + `FROM members
		WHERE upline_id = ? AND account_status = 'active' AND deleted_at IS NULL
		AND (first_name LIKE ? OR last_name LIKE ? OR seller_id LIKE ? OR phone_number LIKE ?)
		ORDER BY created_at DESC`
	if err := db.SelectContext(ctx, &members, q, sellerID, pattern, pattern, pattern, pattern); err != nil {
		return nil, err
	}
	return members, nil
}

// NextMemberID returns the candidate numeric id the seller code is derived
// from. The unique key on seller_id is the real arbiter; callers retry on
// duplicates.
func (r *MemberRepository) NextMemberID(ctx context.Context, tx *sqlx.Tx) (uint64, error) {
	var next uint64
	if err := tx.GetContext(ctx, &next, `SELECT COALESCE(MAX(id), 0) + 1 FROM members`); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *MemberRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, member *entity.Member) (uint64, error) {
	query := `INSERT INTO members (
			uuid, pin, phone_number, email, first_name, last_name, full_name,
			shop_name, district, latitude, longitude, photo_path, seller_id,
			upline_id, seller_level, total_downlines, commission_balance,
			account_status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	res, err := tx.ExecContext(ctx, query,
		member.UUID, member.Pin, member.PhoneNumber, member.Email,
		member.FirstName, member.LastName, member.FullName,
		member.ShopName, member.District, member.Latitude, member.Longitude,
		member.PhotoPath, member.SellerID, member.UplineID,
		member.SellerLevel, member.TotalDownlines, member.CommissionBalance,
		member.AccountStatus, now, now,
	)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *MemberRepository) IncrementDownlinesTx(ctx context.Context, tx *sqlx.Tx, sellerID string) error {
	query := `UPDATE members SET total_downlines = total_downlines + 1, updated_at = ?
		WHERE seller_id = ? AND deleted_at IS NULL`
	_, err := tx.ExecContext(ctx, query, time.Now(), sellerID)
	return err
}

func (r *MemberRepository) AssignUplineTx(ctx context.Context, tx *sqlx.Tx, memberSellerID, uplineSellerID string) error {
	query := `UPDATE members SET upline_id = ?, updated_at = ?
		WHERE seller_id = ? AND upline_id IS NULL AND deleted_at IS NULL`
	_, err := tx.ExecContext(ctx, query, uplineSellerID, time.Now(), memberSellerID)
	return err
}

// AdjustBalanceTx applies a signed delta to the cached balance. Callers must
// hold the row lock and have verified the debit does not overdraw.
func (r *MemberRepository) AdjustBalanceTx(ctx context.Context, tx *sqlx.Tx, memberID uint64, delta decimal.Decimal) error {
	query := `UPDATE members SET commission_balance = commission_balance + ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	_, err := tx.ExecContext(ctx, query, delta, time.Now(), memberID)
	return err
}

func (r *MemberRepository) TouchLastLogin(ctx context.Context, id uint64) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `UPDATE members SET last_login_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

// SoftDelete retains the row for upline references and ledger history.
func (r *MemberRepository) SoftDelete(ctx context.Context, id uint64) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}
	now := time.Now()
	query := `UPDATE members SET deleted_at = ?, account_status = 'suspended', updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	_, err = db.ExecContext(ctx, query, now, now, id)
	return err
}
