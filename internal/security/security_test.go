package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
)

func TestJWTRoundTrip(t *testing.T) {
	provider := NewJWTProvider("secret", time.Hour)
	id := common.UUID("0b7d3c1e-6a4f-4d2b-9e51-3f7c8a2d1b00")

	token, expiresAt, err := provider.Generate(id, principal.RoleCompany)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := provider.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.ID)
	assert.Equal(t, "company", claims.Role)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTProvider("one", time.Hour).Generate("id-1", principal.RoleStudent)
	require.NoError(t, err)

	_, err = NewJWTProvider("two", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	provider := NewJWTProvider("secret", time.Minute)
	provider.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := provider.Generate("id-1", principal.RoleStudent)
	require.NoError(t, err)

	provider.now = time.Now
	_, err = provider.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTRejectsGarbage(t *testing.T) {
	provider := NewJWTProvider("secret", time.Hour)
	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := provider.Parse(token)
		assert.Error(t, err, token)
	}
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, hasher.Compare(hash, "s3cret"))
	assert.False(t, hasher.Compare(hash, "wrong"))

	_, err = hasher.Hash("")
	assert.Error(t, err)
}
