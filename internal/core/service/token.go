package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/securebank/portal-api/internal/core/domain"
)

const (
	defaultAccessTTL    = 15 * time.Minute
	defaultRefreshTTL   = 7 * 24 * time.Hour
	defaultChallengeTTL = 10 * time.Minute
)

// SessionClaims are the identity claims carried by access and refresh tokens.
type SessionClaims struct {
	UserID        string
	AccountNumber string
	Role          string
}

// TokenIssuer signs and verifies the three token kinds used by the portal:
// short-lived access tokens, long-lived refresh tokens (separate secret), and
// one-time 2FA challenge tokens. Challenge tokens are never accepted in place
// of an access token.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	challengeTTL  time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL, challengeTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	if challengeTTL <= 0 {
		challengeTTL = defaultChallengeTTL
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		challengeTTL:  challengeTTL,
		now:           time.Now,
	}
}

// AccessTTL exposes the configured access-token lifetime (drives cookie MaxAge).
func (t *TokenIssuer) AccessTTL() time.Duration { return t.accessTTL }

// RefreshTTL exposes the configured refresh-token lifetime.
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

// AccessToken issues a signed access token for the user.
func (t *TokenIssuer) AccessToken(u *domain.User) (string, error) {
	return t.signSession(u, t.accessSecret, t.accessTTL)
}

// RefreshToken issues a signed refresh token for the user.
func (t *TokenIssuer) RefreshToken(u *domain.User) (string, error) {
	return t.signSession(u, t.refreshSecret, t.refreshTTL)
}

func (t *TokenIssuer) signSession(u *domain.User, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"uid":            u.ID,
		"account_number": u.AccountNumber,
		"role":           u.Role,
		"exp":            t.now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ChallengeToken issues the temporary token that accompanies a pending 2FA
// flow. It references the stored challenge but grants no session access.
func (t *TokenIssuer) ChallengeToken(userID, challengeID string) (string, error) {
	claims := jwt.MapClaims{
		"uid":          userID,
		"twofa":        true,
		"challenge_id": challengeID,
		"exp":          t.now().Add(t.challengeTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
}

// VerifyAccess validates an access token and extracts its claims.
func (t *TokenIssuer) VerifyAccess(token string) (*SessionClaims, error) {
	return t.verifySession(token, t.accessSecret)
}

// VerifyRefresh validates a refresh token and extracts its claims.
func (t *TokenIssuer) VerifyRefresh(token string) (*SessionClaims, error) {
	return t.verifySession(token, t.refreshSecret)
}

func (t *TokenIssuer) verifySession(token string, secret []byte) (*SessionClaims, error) {
	claims, err := t.parse(token, secret)
	if err != nil {
		return nil, err
	}

	// A 2FA challenge token is structurally valid but must never open a session.
	if twofa, _ := claims["twofa"].(bool); twofa {
		return nil, domain.ErrTokenInvalid
	}

	uid, _ := claims["uid"].(string)
	account, _ := claims["account_number"].(string)
	role, _ := claims["role"].(string)
	if uid == "" || account == "" || role == "" {
		return nil, domain.ErrTokenInvalid
	}

	return &SessionClaims{UserID: uid, AccountNumber: account, Role: role}, nil
}

// VerifyChallenge validates a 2FA challenge token and returns the user id and
// challenge reference it carries.
func (t *TokenIssuer) VerifyChallenge(token string) (userID, challengeID string, err error) {
	claims, err := t.parse(token, t.accessSecret)
	if err != nil {
		return "", "", err
	}

	twofa, _ := claims["twofa"].(bool)
	userID, _ = claims["uid"].(string)
	challengeID, _ = claims["challenge_id"].(string)
	if !twofa || userID == "" || challengeID == "" {
		return "", "", domain.ErrTokenInvalid
	}
	return userID, challengeID, nil
}

func (t *TokenIssuer) parse(token string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
