package service

import (
	"errors"
	"testing"
	"time"

	"github.com/securebank/portal-api/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:            "user-1",
		AccountNumber: "12345678",
		Role:          domain.RoleCustomer,
	}
}

func TestTokenIssuer_AccessRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 0, 0, 0)

	token, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	claims, err := issuer.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if claims.UserID != "user-1" || claims.AccountNumber != "12345678" || claims.Role != domain.RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenIssuer_SecretsAreNotInterchangeable(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 0, 0, 0)

	refresh, err := issuer.RefreshToken(testUser())
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}
	if _, err := issuer.VerifyAccess(refresh); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}

	access, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	if _, err := issuer.VerifyRefresh(access); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestTokenIssuer_Expiry(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, time.Hour, 0)
	base := time.Now()
	issuer.now = func() time.Time { return base }

	token, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	issuer.now = func() time.Time { return base.Add(16 * time.Minute) }
	if _, err := issuer.VerifyAccess(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenIssuer_ChallengeTokenOpensNoSession(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 0, 0, 0)

	temp, err := issuer.ChallengeToken("user-1", "challenge-1")
	if err != nil {
		t.Fatalf("issue challenge token: %v", err)
	}

	if _, err := issuer.VerifyAccess(temp); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("challenge token accepted as access token: %v", err)
	}

	uid, challengeID, err := issuer.VerifyChallenge(temp)
	if err != nil {
		t.Fatalf("verify challenge token: %v", err)
	}
	if uid != "user-1" || challengeID != "challenge-1" {
		t.Fatalf("unexpected challenge claims: %s %s", uid, challengeID)
	}
}

func TestTokenIssuer_AccessTokenIsNotAChallenge(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 0, 0, 0)

	access, err := issuer.AccessToken(testUser())
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	if _, _, err := issuer.VerifyChallenge(access); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("access token accepted as challenge token: %v", err)
	}
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 0, 0, 0)
	if _, err := issuer.VerifyAccess("not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
