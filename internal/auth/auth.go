package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtIssuer   = "gymhub-api"
	jwtAudience = "gymhub-users"

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenKind separates short-lived access tokens from refresh tokens. Each kind
// is signed with its own secret.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrEmptyJWTSecret   = errors.New("jwt secret cannot be empty")
)

// Identity is what a token vouches for: the caller plus the e-mail it signed in with.
type Identity struct {
	Caller
	Email string
}

type Claims struct {
	UserID    int       `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	TokenType TokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) Caller() Caller {
	return Caller{ID: c.UserID, Role: c.Role}
}

func (c *Claims) Identity() Identity {
	return Identity{Caller: c.Caller(), Email: c.Email}
}

// TokenPair is handed out on signup and signin.
type TokenPair struct {
	Access  string
	Refresh string
}

// Keys signs and verifies gymhub tokens.
type Keys struct {
	Access  string
	Refresh string
}

func (k Keys) secret(kind TokenKind) string {
	if kind == KindRefresh {
		return k.Refresh
	}
	return k.Access
}

func ttl(kind TokenKind) time.Duration {
	if kind == KindRefresh {
		return RefreshTokenTTL
	}
	return AccessTokenTTL
}

// Sign issues a token of the given kind for id.
func (k Keys) Sign(id Identity, kind TokenKind) (string, error) {
	secret := k.secret(kind)
	if secret == "" {
		return "", ErrEmptyJWTSecret
	}

	now := time.Now()
	claims := &Claims{
		UserID:    id.ID,
		Email:     id.Email,
		Role:      id.Role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Issue signs an access and a refresh token for id.
func (k Keys) Issue(id Identity) (TokenPair, error) {
	access, err := k.Sign(id, KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := k.Sign(id, KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse verifies a token of the given kind. A token of the other kind fails
// with ErrInvalidTokenType even when both kinds share a secret.
func (k Keys) Parse(tokenString string, kind TokenKind) (*Claims, error) {
	secret := k.secret(kind)
	if secret == "" {
		return nil, ErrEmptyJWTSecret
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != kind {
		return nil, ErrInvalidTokenType
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func CheckPassword(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}
