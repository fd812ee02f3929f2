package token

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *viper.Viper {
	v := viper.New()
	v.Set("jwt.secret", "test-secret")
	v.Set("app.name", "MEMBER_SERVICE")
	return v
}

func TestGenerateAndVerify(t *testing.T) {
	v := testConfig()

	access, refresh, err := Generate(v, 7, "SLR000007", "Amina Juma")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claim, err := Verify(v, access)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claim.Metadata.MemberID)
	assert.Equal(t, "SLR000007", claim.Metadata.SellerID)
	assert.Equal(t, "Amina Juma", claim.Metadata.FullName)
	assert.Equal(t, TypeAccess, claim.Type)

	refreshClaim, err := Verify(v, refresh)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, refreshClaim.Type)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	access, _, err := Generate(testConfig(), 7, "SLR000007", "Amina Juma")
	require.NoError(t, err)

	other := viper.New()
	other.Set("jwt.secret", "another-secret")
	_, err = Verify(other, access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := Verify(testConfig(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokedKeyFormat(t *testing.T) {
	assert.Equal(t, "TOKEN:REVOKED:42", RevokedKey(42))
}
