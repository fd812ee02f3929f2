package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

var ErrInvalidToken = errors.New("invalid token")

// RevokedKey is the redis key holding the unix time of the member's last
// revocation; tokens issued before that time no longer verify.
func RevokedKey(memberID uint64) string {
	return fmt.Sprintf("TOKEN:REVOKED:%d", memberID)
}

// Generate issues the access/refresh bearer pair for a member. Callers treat
// the strings as opaque.
func Generate(v *viper.Viper, memberID uint64, sellerID, fullName string) (string, string, error) {
	access, err := sign(v, memberID, sellerID, fullName, TypeAccess, accessTTL(v))
	if err != nil {
		return "", "", err
	}
	refresh, err := sign(v, memberID, sellerID, fullName, TypeRefresh, refreshTTL(v))
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func Verify(v *viper.Viper, raw string) (*Claim, error) {
	claim := &Claim{}
	parsed, err := jwt.ParseWithClaims(raw, claim, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.GetString("jwt.secret")), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claim, nil
}

func sign(v *viper.Viper, memberID uint64, sellerID, fullName, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claim := &Claim{
		Metadata: Metadata{
			MemberID: memberID,
			SellerID: sellerID,
			FullName: fullName,
		},
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.GetString("app.name"),
			Subject:   fmt.Sprintf("%d", memberID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString([]byte(v.GetString("jwt.secret")))
}

func accessTTL(v *viper.Viper) time.Duration {
	if minutes := v.GetInt("jwt.access_ttl_minutes"); minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return 60 * time.Minute
}

func refreshTTL(v *viper.Viper) time.Duration {
	if hours := v.GetInt("jwt.refresh_ttl_hours"); hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return 72 * time.Hour
}
