package usecase

import "context"

// BlockPolicy is an injectable predicate pair so a real blocklist store can
// be swapped in without touching the auth flow.
type BlockPolicy interface {
	IsPhoneNumberBlocked(ctx context.Context, phoneNumber string) bool
	IsSponsorBlocked(ctx context.Context, sellerID string) bool
}

// AllowAllPolicy blocks nothing.
type AllowAllPolicy struct{}

func (AllowAllPolicy) IsPhoneNumberBlocked(ctx context.Context, phoneNumber string) bool {
	return false
}

func (AllowAllPolicy) IsSponsorBlocked(ctx context.Context, sellerID string) bool {
	return false
}
