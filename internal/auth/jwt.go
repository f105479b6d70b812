package auth

import (
	"errors"
	"time"

	"github.com/Nmomos/hedgehog-reservation/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoIdentity   = errors.New("cannot issue token without an identity")
	ErrInvalidToken = errors.New("invalid token")
)

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

func NewManager(secret, issuer, audience string, accessTTL time.Duration) *Manager {
	return &Manager{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
}

// IssueAccessToken signs a claim set for the given user. The subject is the
// user's email; username travels as a private claim. Refuses to mint a token
// for an empty identity.
func (m *Manager) IssueAccessToken(u user.User) (string, error) {
	if u.Email == "" || u.Username == "" {
		return "", ErrNoIdentity
	}

	now := time.Now().UTC()

	claims := Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			Subject:   u.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyAccessToken checks signature, expiry, audience and issuer, returning
// the username claim. Verification is a pure check; every failure mode
// surfaces as an error the HTTP layer turns into a 401.
func (m *Manager) VerifyAccessToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			// Enforce HS256
			_, ok := t.Method.(*jwt.SigningMethodHMAC)

			if !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		},
		jwt.WithAudience(m.audience),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Username == "" {
		return "", ErrInvalidToken
	}

	return claims.Username, nil
}
