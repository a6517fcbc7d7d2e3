package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Harbor Grill", "harbor-grill"},
		{"  Mama's  Kitchen ", "mamas-kitchen"},
		{"--Cafe #1--", "cafe-1"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "tableside-auth")
	outletID := uuid.New()
	userID := uuid.New()

	token, err := m.GenerateAccessToken(JWTClaims{
		UserID:      userID,
		Email:       "waiter@example.com",
		OutletID:    &outletID,
		Permissions: []string{"take-orders"},
	}, time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	require.NotNil(t, claims.OutletID)
	assert.Equal(t, outletID, *claims.OutletID)
	assert.True(t, claims.HasPermission("take-orders"))
	assert.False(t, claims.HasPermission("manage-bills"))
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "tableside-auth")
	claims := JWTClaims{UserID: uuid.New()}

	expired, err := m.GenerateAccessToken(claims, -time.Minute)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(expired)
	assert.Error(t, err)

	foreign, err := NewJWTManager("other", "tableside-auth").GenerateAccessToken(claims, time.Hour)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(foreign)
	assert.Error(t, err)

	wrongIssuer, err := NewJWTManager("secret", "someone-else").GenerateAccessToken(claims, time.Hour)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(wrongIssuer)
	assert.Error(t, err)

	anonymous, err := m.GenerateAccessToken(JWTClaims{}, time.Hour)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(anonymous)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{UserID: uuid.New()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(unsigned)
	assert.Error(t, err)
}
