package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

const challengeTTL = 5 * time.Minute

// AuthDeps bundles the collaborators of AuthService.
type AuthDeps struct {
	Users      ports.UserRepository
	Hasher     *PasswordHasher
	Tokens     *TokenIssuer
	Attempts   ports.AttemptStore
	Challenges ports.ChallengeStore
	Sender     ports.CodeSender
	Audit      ports.AuditRecorder
	Logger     zerolog.Logger
}

// AuthService implements registration, login, and the email 2FA flow.
type AuthService struct {
	users      ports.UserRepository
	hasher     *PasswordHasher
	tokens     *TokenIssuer
	attempts   ports.AttemptStore
	challenges ports.ChallengeStore
	sender     ports.CodeSender
	audit      ports.AuditRecorder
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(deps AuthDeps) *AuthService {
	return &AuthService{
		users:      deps.Users,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		attempts:   deps.Attempts,
		challenges: deps.Challenges,
		sender:     deps.Sender,
		audit:      deps.Audit,
		log:        deps.Logger,
		now:        time.Now,
	}
}

// Register creates a customer account. The password hash is never returned.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.register(ctx, input.FullName, input.Email, input.AccountNumber, input.Password, domain.RoleCustomer)
}

// RegisterStaff creates an employee or admin account on behalf of an admin.
func (s *AuthService) RegisterStaff(ctx context.Context, input ports.RegisterStaffInput) (*domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if role != domain.RoleEmployee && role != domain.RoleAdmin {
		return nil, domain.ErrInvalidCredentials
	}
	return s.register(ctx, input.FullName, input.Email, input.AccountNumber, input.Password, role)
}

func (s *AuthService) register(ctx context.Context, fullName, email, accountNumber, password, role string) (*domain.User, error) {
	if req := CheckPasswordStrength(password); !req.OK() {
		return nil, &domain.WeakPasswordError{Requirements: req}
	}

	if _, err := s.users.FindByAccountNumber(ctx, accountNumber); err == nil {
		s.log.Warn().Str("account_number", accountNumber).Msg("registration with existing account number")
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	nowUTC := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		FullName:      strings.TrimSpace(fullName),
		Email:         strings.ToLower(strings.TrimSpace(email)),
		AccountNumber: accountNumber,
		PasswordHash:  hash,
		Role:          role,
		CreatedAt:     nowUTC,
		UpdatedAt:     nowUTC,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_number", created.AccountNumber).Str("role", role).Msg("user registered")
	return created, nil
}

// Login authenticates by account number and password. The same generic error
// is returned for an unknown account and a wrong password, and failures are
// counted identically in both cases, to resist account enumeration.
func (s *AuthService) Login(ctx context.Context, accountNumber, password, ip string) (*ports.LoginResult, error) {
	key := attemptKey(accountNumber, ip)

	locked, remaining, err := s.attempts.CheckLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	if locked {
		s.log.Warn().Str("account_number", accountNumber).Str("ip", ip).Msg("login attempt for locked account")
		return nil, &domain.LockedError{RemainingMin: int(math.Ceil(remaining.Minutes()))}
	}

	user, err := s.users.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.recordFailure(ctx, key, accountNumber, ip)
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.recordFailure(ctx, key, accountNumber, ip)
	}

	if err := s.attempts.Clear(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear login attempts")
	}

	if user.TwoFAEnabled {
		return s.beginTwoFactor(ctx, user, ip)
	}

	tokens, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.recordEvent(user.ID, domain.EventLoginSuccess, "Successful login", ip, domain.RiskLow)
	s.log.Info().Str("user_id", user.ID).Str("ip", ip).Msg("login successful")
	return &ports.LoginResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key, accountNumber, ip string) error {
	lockedNow, err := s.attempts.RecordFailure(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to record login attempt")
	}
	if lockedNow {
		s.log.Warn().Str("account_number", accountNumber).Str("ip", ip).Msg("account locked after repeated failures")
		s.recordEvent("", domain.EventAccountLocked, "Account locked after repeated failed logins", ip, domain.RiskHigh)
	} else {
		s.recordEvent("", domain.EventLoginFailure, "Failed login attempt", ip, domain.RiskMedium)
	}
	return domain.ErrInvalidCredentials
}

func (s *AuthService) beginTwoFactor(ctx context.Context, user *domain.User, ip string) (*ports.LoginResult, error) {
	code, err := generateEmailCode()
	if err != nil {
		return nil, fmt.Errorf("generate 2fa code: %w", err)
	}

	challengeID := uuid.NewString()
	nowUTC := s.now().UTC()
	if err := s.challenges.Save(ctx, challengeID, ports.Challenge{
		Code:      code,
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: nowUTC,
		ExpiresAt: nowUTC.Add(challengeTTL),
	}); err != nil {
		return nil, fmt.Errorf("store 2fa challenge: %w", err)
	}

	if err := s.sender.SendCode(ctx, user.Email, code); err != nil {
		// The challenge stays valid; the user can retry login to get a new code.
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to dispatch 2fa code")
		return nil, fmt.Errorf("send 2fa code: %w", err)
	}

	tempToken, err := s.tokens.ChallengeToken(user.ID, challengeID)
	if err != nil {
		return nil, err
	}

	s.recordEvent(user.ID, domain.EventTwoFASent, "2FA verification code sent", ip, domain.RiskLow)
	s.log.Info().Str("user_id", user.ID).Msg("2fa code dispatched")
	return &ports.LoginResult{User: user, RequiresTwoFactor: true, TempToken: tempToken}, nil
}

// VerifyTwoFactor completes a pending 2FA flow. The challenge is consumed on
// success; a second verification with the same code fails.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, tempToken, code string) (*ports.LoginResult, error) {
	userID, challengeID, err := s.tokens.VerifyChallenge(tempToken)
	if err != nil {
		return nil, err
	}

	ch, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if s.now().After(ch.ExpiresAt) {
		_ = s.challenges.Delete(ctx, challengeID)
		return nil, domain.ErrChallengeExpired
	}
	if ch.UserID != userID {
		return nil, domain.ErrTokenInvalid
	}
	if ch.Code != strings.TrimSpace(code) {
		s.log.Warn().Str("user_id", userID).Msg("2fa code mismatch")
		return nil, domain.ErrCodeMismatch
	}

	if err := s.challenges.Delete(ctx, challengeID); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete consumed 2fa challenge")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.recordEvent(user.ID, domain.EventTwoFAVerified, "2FA verification succeeded", "", domain.RiskLow)
	s.log.Info().Str("user_id", user.ID).Msg("2fa verification successful")
	return &ports.LoginResult{User: user, Tokens: tokens}, nil
}

// SetupTwoFactor enables email-based 2FA for the user.
func (s *AuthService) SetupTwoFactor(ctx context.Context, userID string) error {
	if err := s.users.SetTwoFA(ctx, userID, true); err != nil {
		return err
	}
	s.recordEvent(userID, domain.EventTwoFAEnabled, "Two-factor authentication enabled", "", domain.RiskLow)
	return nil
}

// DisableTwoFactor disables 2FA; stored secret material is discarded by the
// repository.
func (s *AuthService) DisableTwoFactor(ctx context.Context, userID string) error {
	if err := s.users.SetTwoFA(ctx, userID, false); err != nil {
		return err
	}
	s.recordEvent(userID, domain.EventTwoFADisabled, "Two-factor authentication disabled", "", domain.RiskMedium)
	return nil
}

func (s *AuthService) issueSession(user *domain.User) (*ports.SessionTokens, error) {
	access, err := s.tokens.AccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.RefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.SessionTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		CSRFToken:    uuid.NewString(),
	}, nil
}

func (s *AuthService) recordEvent(userID, eventType, description, ip, risk string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.AuditEventInput{
		UserID:      userID,
		EventType:   eventType,
		Description: description,
		IPAddress:   ip,
		RiskLevel:   risk,
		Timestamp:   s.now().UTC(),
	})
}

func attemptKey(accountNumber, ip string) string {
	return accountNumber + "|" + ip
}

// generateEmailCode returns a uniformly random 6-digit code.
func generateEmailCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
