// login.go implements the two-step login flow: a password check, then — for
// accounts with two-factor enabled — a one-time 6-digit code delivered over a
// side channel.
//
// The flow is a small state machine per login attempt:
//
//	AwaitingCredentials → Authenticated            (two-factor disabled)
//	AwaitingCredentials → AwaitingCode → Authenticated
//	AwaitingCredentials → Failed                   (bad credentials)
//
// A passed first factor is not rolled back when the account requires a code:
// the code only gates session establishment. A wrong code leaves the flow in
// AwaitingCode; Cancel discards the pending code and returns the caller to the
// start. Each browser tab drives one instance of this machine; concurrent
// logins from other devices are independent instances.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
	"github.com/toolvault/toolvault/internal/validation"
)

// LoginState is the caller-visible position in the login flow.
type LoginState string

const (
	StateAwaitingCredentials LoginState = "awaiting_credentials"
	StateAwaitingCode        LoginState = "awaiting_code"
	StateAuthenticated       LoginState = "authenticated"
	StateFailed              LoginState = "failed"
)

var (
	// ErrInvalidCredentials is deliberately indistinguishable between an
	// unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidCode covers malformed, wrong, expired, and absent codes.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrTwoFactorNotPending is returned for resend/verify without a
	// preceding successful credential check.
	ErrTwoFactorNotPending = errors.New("no two-factor login in progress")
)

// CodeSender delivers a one-time login code over a side channel (email in
// production). Delivery is outside the flow's correctness: a send failure
// fails the transition so the user is not stranded waiting for a code that
// never left the building.
type CodeSender interface {
	SendLoginCode(ctx context.Context, email, code string) error
}

// SlogCodeSender logs codes instead of delivering them. Default for
// development and test environments without an SMTP side channel.
type SlogCodeSender struct{}

// SendLoginCode logs the code at warn level so it stands out in dev output.
func (SlogCodeSender) SendLoginCode(_ context.Context, email, code string) error {
	slog.Warn("two-factor login code (configure a real sender for production)",
		"email", email, "code", code)
	return nil
}

// LoginService drives the login state machine against the profile and
// login-code stores.
type LoginService struct {
	profiles   *repositories.ProfileRepository
	codes      *repositories.LoginCodeRepository
	sender     CodeSender
	codeTTL    time.Duration
	sessionTTL time.Duration
}

// NewLoginService creates a LoginService. codeTTL bounds how long an issued
// code stays verifiable (the product intent is ten minutes); sessionTTL is the
// JWT lifetime.
func NewLoginService(
	profiles *repositories.ProfileRepository,
	codes *repositories.LoginCodeRepository,
	sender CodeSender,
	codeTTL, sessionTTL time.Duration,
) *LoginService {
	if sender == nil {
		sender = SlogCodeSender{}
	}
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	return &LoginService{
		profiles:   profiles,
		codes:      codes,
		sender:     sender,
		codeTTL:    codeTTL,
		sessionTTL: sessionTTL,
	}
}

// LoginResult reports the state reached by a transition. Token and Profile are
// set only when State is StateAuthenticated.
type LoginResult struct {
	State   LoginState
	Token   string
	Profile *models.Profile
}

// SubmitCredentials runs the first factor. With two-factor disabled a valid
// password authenticates directly; with it enabled, a code is generated and
// sent, and the flow moves to AwaitingCode.
func (s *LoginService) SubmitCredentials(ctx context.Context, email, password string) (*LoginResult, error) {
	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up profile: %w", err)
	}

	if profile == nil {
		// Burn a bcrypt comparison anyway so response timing does not reveal
		// which emails have accounts.
		CheckPassword(password, "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
		return &LoginResult{State: StateFailed}, ErrInvalidCredentials
	}

	if !CheckPassword(password, profile.PasswordHash) {
		return &LoginResult{State: StateFailed}, ErrInvalidCredentials
	}

	if !profile.TwoFactorEnabled {
		token, err := GenerateJWT(profile.ID, profile.Email, s.sessionTTL)
		if err != nil {
			return nil, fmt.Errorf("issue session token: %w", err)
		}
		return &LoginResult{State: StateAuthenticated, Token: token, Profile: profile}, nil
	}

	if err := s.issueCode(ctx, profile.Email); err != nil {
		return nil, err
	}
	return &LoginResult{State: StateAwaitingCode, Profile: profile}, nil
}

// VerifyCode runs the second factor. A wrong or stale code leaves the flow in
// AwaitingCode; the stored code is only consumed on success, so the user may
// retry until the code expires or is superseded.
func (s *LoginService) VerifyCode(ctx context.Context, email, code string) (*LoginResult, error) {
	if err := validation.ValidateLoginCode(code); err != nil {
		return &LoginResult{State: StateAwaitingCode}, ErrInvalidCode
	}

	stored, err := s.codes.GetActiveLoginCode(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up login code: %w", err)
	}
	if stored == nil || !stored.IsUsable() {
		return &LoginResult{State: StateAwaitingCode}, ErrInvalidCode
	}

	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
		return &LoginResult{State: StateAwaitingCode}, ErrInvalidCode
	}

	if err := s.codes.ConsumeLoginCode(ctx, stored.ID); err != nil {
		return nil, fmt.Errorf("consume login code: %w", err)
	}

	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up profile: %w", err)
	}
	if profile == nil {
		return &LoginResult{State: StateFailed}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(profile.ID, profile.Email, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &LoginResult{State: StateAuthenticated, Token: token, Profile: profile}, nil
}

// ResendCode generates and sends a fresh code, superseding the outstanding
// one. Allowed any number of times from AwaitingCode; the state is unchanged.
// Only a login that already passed the credential check has an outstanding
// code, so without one the request is refused rather than minting a code that
// VerifyCode would accept as a password-less session.
func (s *LoginService) ResendCode(ctx context.Context, email string) error {
	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("look up profile: %w", err)
	}
	if profile == nil || !profile.TwoFactorEnabled {
		return ErrTwoFactorNotPending
	}

	stored, err := s.codes.GetActiveLoginCode(ctx, profile.Email)
	if err != nil {
		return fmt.Errorf("look up login code: %w", err)
	}
	if stored == nil || !stored.IsUsable() {
		return ErrTwoFactorNotPending
	}
	return s.issueCode(ctx, profile.Email)
}

// Cancel abandons an in-progress two-factor login, consuming any outstanding
// code so it cannot be used later. The flow returns to AwaitingCredentials.
func (s *LoginService) Cancel(ctx context.Context, email string) error {
	stored, err := s.codes.GetActiveLoginCode(ctx, email)
	if err != nil {
		return fmt.Errorf("look up login code: %w", err)
	}
	if stored == nil {
		return nil
	}
	return s.codes.ConsumeLoginCode(ctx, stored.ID)
}

func (s *LoginService) issueCode(ctx context.Context, email string) error {
	code, err := generateLoginCode()
	if err != nil {
		return fmt.Errorf("generate login code: %w", err)
	}

	record := &models.LoginCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.codeTTL),
	}
	if err := s.codes.CreateLoginCode(ctx, record); err != nil {
		return fmt.Errorf("store login code: %w", err)
	}

	if err := s.sender.SendLoginCode(ctx, email, code); err != nil {
		return fmt.Errorf("send login code: %w", err)
	}
	return nil
}

// generateLoginCode returns a uniformly random 6-digit numeric string,
// zero-padded, from crypto/rand.
func generateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
