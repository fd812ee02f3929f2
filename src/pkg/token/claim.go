package token

import "github.com/golang-jwt/jwt/v5"

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

type Metadata struct {
	MemberID uint64 `json:"member_id"`
	SellerID string `json:"seller_id"`
	FullName string `json:"full_name"`
}

type Claim struct {
	Metadata Metadata `json:"metadata"`
	Type     string   `json:"type"`
	jwt.RegisteredClaims
}
