package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeys = Keys{Access: "test-access-key-12345", Refresh: "test-refresh-key-12345"}

var trainer = Identity{Caller: Caller{ID: 12, Role: RoleTrainer}, Email: "trainer@gym.test"}

func signRaw(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(id Identity, kind TokenKind, expiresAt time.Time) *Claims {
	return &Claims{
		UserID:    id.ID,
		Email:     id.Email,
		Role:      id.Role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Minute)),
		},
	}
}

func TestHashPassword(t *testing.T) {
	hash1, err := HashPassword("samePassword")
	require.NoError(t, err)
	hash2, err := HashPassword("samePassword")
	require.NoError(t, err)

	assert.NotEqual(t, "samePassword", hash1)
	// salted
	assert.NotEqual(t, hash1, hash2)

	assert.True(t, CheckPassword(hash1, "samePassword"))
	assert.False(t, CheckPassword(hash1, "otherPassword"))
	assert.False(t, CheckPassword(hash1, ""))
}

func TestKeys_SignAndParse(t *testing.T) {
	tests := []struct {
		name string
		kind TokenKind
		ttl  time.Duration
	}{
		{"access", KindAccess, AccessTokenTTL},
		{"refresh", KindRefresh, RefreshTokenTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := testKeys.Sign(trainer, tt.kind)
			require.NoError(t, err)

			claims, err := testKeys.Parse(token, tt.kind)
			require.NoError(t, err)

			assert.Equal(t, trainer, claims.Identity())
			assert.Equal(t, trainer.Caller, claims.Caller())
			assert.Equal(t, tt.kind, claims.TokenType)
			assert.Equal(t, jwtIssuer, claims.Issuer)
			assert.Contains(t, claims.Audience, jwtAudience)
			assert.WithinDuration(t, time.Now().Add(tt.ttl), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestKeys_Issue(t *testing.T) {
	pair, err := testKeys.Issue(trainer)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	_, err = testKeys.Parse(pair.Access, KindAccess)
	assert.NoError(t, err)
	_, err = testKeys.Parse(pair.Refresh, KindRefresh)
	assert.NoError(t, err)

	_, err = Keys{Access: testKeys.Access}.Issue(trainer)
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestKeys_Parse_Rejects(t *testing.T) {
	sameSecret := Keys{Access: "shared-secret-123", Refresh: "shared-secret-123"}
	refreshWithSharedSecret, err := sameSecret.Sign(trainer, KindRefresh)
	require.NoError(t, err)

	accessToken, err := testKeys.Sign(trainer, KindAccess)
	require.NoError(t, err)

	tests := []struct {
		name    string
		keys    Keys
		token   string
		kind    TokenKind
		wantErr error
	}{
		{
			name:    "expired",
			keys:    testKeys,
			token:   signRaw(t, claimsFor(trainer, KindAccess, time.Now().Add(-time.Hour)), testKeys.Access),
			kind:    KindAccess,
			wantErr: ErrTokenExpired,
		},
		{
			name:    "refresh token used as access token",
			keys:    sameSecret,
			token:   refreshWithSharedSecret,
			kind:    KindAccess,
			wantErr: ErrInvalidTokenType,
		},
		{
			name:    "unknown role claim",
			keys:    testKeys,
			token:   signRaw(t, claimsFor(Identity{Caller: Caller{ID: 3, Role: "OWNER"}}, KindAccess, time.Now().Add(time.Hour)), testKeys.Access),
			kind:    KindAccess,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "empty secret",
			keys:    Keys{},
			token:   accessToken,
			kind:    KindAccess,
			wantErr: ErrEmptyJWTSecret,
		},
		{
			name:  "wrong secret",
			keys:  Keys{Access: "some-other-secret"},
			token: accessToken,
			kind:  KindAccess,
		},
		{
			name:  "malformed",
			keys:  testKeys,
			token: "invalid.token.format",
			kind:  KindAccess,
		},
		{
			name:  "access token checked against refresh secret",
			keys:  testKeys,
			token: accessToken,
			kind:  KindRefresh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.keys.Parse(tt.token, tt.kind)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Nil(t, claims)
		})
	}
}

func TestKeys_Parse_RequiresExpiry(t *testing.T) {
	claims := claimsFor(trainer, KindAccess, time.Now())
	claims.ExpiresAt = nil

	_, err := testKeys.Parse(signRaw(t, claims, testKeys.Access), KindAccess)
	assert.Error(t, err)
}
