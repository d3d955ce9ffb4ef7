// Package token mints and verifies the signed access and refresh tokens used
// by the API. The refresh token is additionally persisted on the user record;
// verifying a presented refresh token against the stored copy is the store's
// job, this package only handles the cryptographic part.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates the two token flavors carried in the "typ" claim.
type Kind string

const (
	// Access tokens authenticate individual API requests.
	Access Kind = "access"
	// Refresh tokens are exchanged for new token pairs.
	Refresh Kind = "refresh"
)

var (
	// ErrInvalidToken indicates a token that failed signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongKind indicates a structurally valid token of the wrong flavor.
	ErrWrongKind = errors.New("wrong token kind")
)

// Pair bundles a freshly minted access and refresh token.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Manager signs and verifies tokens with a shared HMAC secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager builds a Manager. Zero TTLs fall back to 15 minutes for access
// tokens and 7 days for refresh tokens.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// MintPair issues a new access/refresh token pair for the user.
func (m *Manager) MintPair(userID int64) (Pair, error) {
	access, err := m.mint(userID, Access, m.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("mint access token: %w", err)
	}
	refresh, err := m.mint(userID, Refresh, m.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("mint refresh token: %w", err)
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) mint(userID int64, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"typ": string(kind),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks signature, expiry, and kind, and returns the subject user id.
func (m *Manager) Verify(tokenStr string, kind Kind) (int64, error) {
	parsed, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != string(kind) {
		return 0, ErrWrongKind
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
