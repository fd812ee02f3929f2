package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"member-service/src/internal/entity"
	"member-service/src/internal/repository"
	httpError "member-service/src/pkg/http-error"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

const (
	sellerIDPrefix = "SLR"
	// additional attempts shift the candidate by this much on collision
	sellerIDCollisionOffset = 1000
	sellerIDMaxAttempts     = 5
)

var defaultCapacity = map[int]int{
	1: 5,
	2: 10,
	3: 20,
	4: 50,
	5: 100,
}

func FormatSellerID(n uint64) string {
	return fmt.Sprintf("%s%06d", sellerIDPrefix, n)
}

// SponsorPolicy enforces per-level downline capacity. Capacity is always
// evaluated against the live downline count, never the cached counter.
type SponsorPolicy struct {
	Config           *viper.Viper
	MemberRepository *repository.MemberRepository
}

func NewSponsorPolicy(cfg *viper.Viper, memberRepository *repository.MemberRepository) *SponsorPolicy {
	return &SponsorPolicy{
		Config:           cfg,
		MemberRepository: memberRepository,
	}
}

// MaxDownlines is total over all ints; unknown and non-positive levels get
// the base capacity.
func (p *SponsorPolicy) MaxDownlines(level int) int {
	if p.Config != nil {
		key := fmt.Sprintf("sponsor.capacity.level_%d", level)
		if p.Config.IsSet(key) {
			return p.Config.GetInt(key)
		}
	}
	if max, ok := defaultCapacity[level]; ok {
		return max
	}
	return 5
}

// ValidateSponsor resolves an active sponsor and checks remaining capacity.
// Returns the sponsor, its live downline count, and a typed error on
// rejection.
func (p *SponsorPolicy) ValidateSponsor(ctx context.Context, sellerID string) (*entity.Member, int, *httpError.CommonError) {
	sponsor, err := p.MemberRepository.FindActiveBySellerID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			errObj := httpError.NewNotFound()
			errObj.Message = "Invalid sponsor code. Please contact support if you don't have a sponsor."
			return nil, 0, errObj
		}
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to look up sponsor: %v", err)
		return nil, 0, errObj
	}

	count, err := p.MemberRepository.CountActiveDownlines(ctx, sellerID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to count downlines: %v", err)
		return nil, 0, errObj
	}

	if count >= p.MaxDownlines(sponsor.SellerLevel) {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "This sponsor has reached their maximum number of downlines. Please choose another sponsor."
		return nil, count, errObj
	}

	return sponsor, count, nil
}

// ValidateSponsorTx is the registration-path variant: it locks the sponsor
// row so the capacity check and counter increment serialize with concurrent
// registrations under the same sponsor.
func (p *SponsorPolicy) ValidateSponsorTx(ctx context.Context, tx *sqlx.Tx, sellerID string) (*entity.Member, *httpError.CommonError) {
	sponsor, err := p.MemberRepository.FindActiveBySellerIDForUpdate(ctx, tx, sellerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			errObj := httpError.NewUnprocessableEntity()
			errObj.Message = "Invalid sponsor ID. Please contact support."
			return nil, errObj
		}
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to look up sponsor: %v", err)
		return nil, errObj
	}

	count, err := p.MemberRepository.CountActiveDownlinesTx(ctx, tx, sellerID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to count downlines: %v", err)
		return nil, errObj
	}

	if count >= p.MaxDownlines(sponsor.SellerLevel) {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "This sponsor has reached their maximum number of downlines. Please choose another sponsor."
		return nil, errObj
	}

	return sponsor, nil
}
