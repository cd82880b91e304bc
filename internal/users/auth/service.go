// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/campusgate/internal/audit"
	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/constants"
	"github.com/taibuivan/campusgate/internal/platform/sec"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/internal/session"
	"github.com/taibuivan/campusgate/internal/users/profile"
	"github.com/taibuivan/campusgate/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given identity.
	//
	// # Parameters
	//   - userID: The ID of the identity.
	//   - email: The email of the identity.
	//   - role: The persisted role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// LinkSender delivers a magic-link token to its recipient.
//
// Mail transport is outside the portal itself. [LogLinkSender] is the
// default; production deployments inject a real mailer here.
type LinkSender interface {
	SendMagicLink(ctx context.Context, email, token string) error
}

// LogLinkSender writes the issued link to the structured log instead of
// sending mail, so operators can hand tokens over in environments without a
// mailer.
type LogLinkSender struct {
	Logger *slog.Logger
}

// SendMagicLink logs the token at info level.
func (sender LogLinkSender) SendMagicLink(ctx context.Context, email, token string) error {
	sender.Logger.InfoContext(ctx, "magic_link_issued",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}

// Config carries the sign-in feature flags, frozen at boot.
type Config struct {
	// MagicLinkEnabled gates the passwordless flow entirely.
	MagicLinkEnabled bool

	// StaffEmailDomain is the institutional domain (e.g. "campus.edu") whose
	// addresses are auto-provisioned as staff on first magic-link sign-in.
	StaffEmailDomain string

	// StaffDomainEnforcementEnabled switches the auto-provisioning on.
	StaffDomainEnforcementEnabled bool
}

// Service implements the sign-in use cases.
//
// Every sign-in attempt runs through a fresh [session.Machine]: the machine
// owns the bounded wait timer, the single-redirect guarantee, and the
// login/logout audit ordering, while this service supplies the external
// verification results the machine reacts to.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance, or the attempt lifecycle must be reviewed by the security team.
type Service struct {
	identityRepository  IdentityRepository
	sessionRepository   SessionRepository
	magicLinkRepository MagicLinkRepository
	profileStore        profile.Store
	recorder            rbac.Recorder
	tokenProvider       TokenProvider
	linkSender          LinkSender
	config              Config
	logger              *slog.Logger
	machineOptions      []session.Option
}

// NewService constructs a new [Service] with necessary dependencies.
//
// The trailing machineOptions are applied to every per-attempt
// [session.Machine]; production wiring passes none.
func NewService(
	identityRepo IdentityRepository,
	sessionRepo SessionRepository,
	magicLinkRepo MagicLinkRepository,
	profileStore profile.Store,
	recorder rbac.Recorder,
	tokenProv TokenProvider,
	linkSender LinkSender,
	config Config,
	logger *slog.Logger,
	machineOptions ...session.Option,
) *Service {
	return &Service{
		identityRepository:  identityRepo,
		sessionRepository:   sessionRepo,
		magicLinkRepository: magicLinkRepo,
		profileStore:        profileStore,
		recorder:            recorder,
		tokenProvider:       tokenProv,
		linkSender:          linkSender,
		config:              config,
		logger:              logger,
		machineOptions:      machineOptions,
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email      string
	Password   string
	ResumePath string // Where the portal lands the user after sign-in.
	UserAgent  string
	IPAddress  string
}

// LoginSession represents a successfully established portal session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Profile               *profile.Profile
	State                 session.State
}

/*
Login runs a full password sign-in attempt through the session lifecycle.

Description: Opens a bounded-wait attempt, verifies the credential with
constant-time password comparison, resolves the portal profile, and lets the
attempt machine settle the outcome. A rejected credential and a missing
profile are distinct failures: the former never reveals whether the email
exists, the latter tells a verified user their account has no portal access.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - error: CredentialRejected, ProfileNotFound, AuthTimeout, or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	machine := session.NewMachine(constants.AuthWaitTimeout, service.recorder, service.machineOptions...)
	defer machine.Close()

	if err := machine.Begin(); err != nil {
		return nil, err
	}

	// Look up the credential record. A generic rejection for a missing
	// identity prevents account enumeration.
	identity, err := service.identityRepository.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil || !sec.CheckPasswordHash(input.Password, identity.PasswordHash) {
		machine.Fail(apperr.CredentialRejected())
		return nil, apperr.CredentialRejected()
	}

	// Credential verified. Admission still requires a portal profile.
	account, err := service.profileStore.FindByID(ctx, identity.ID)
	if err != nil {
		machine.SucceedNoProfile(identity.ID, identity.Email)
		return nil, machine.Err()
	}
	if !account.IsActive {
		machine.Fail(apperr.CredentialRejected())
		return nil, apperr.CredentialRejected()
	}

	machine.Succeed(ctx, identity.ID, identity.Email, account.Role, input.ResumePath)
	if machine.State() != session.StateAuthenticated {
		// The bounded wait expired while verification was in flight; the
		// late success was ignored and the attempt already reset.
		return nil, machine.Err()
	}

	return service.issueTokens(ctx, identity, account, input.UserAgent, input.IPAddress)
}

/*
Logout permanently revokes the caller's active session.

Description: The logout audit event is recorded before the session row is
revoked, so the trail still knows who the actor was. Already-gone sessions
make logout a no-op (idempotent operation).

Parameters:
  - ctx: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := sec.HashToken(refreshToken)

	active, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil
	}

	// Audit before clearing, while the actor is still known.
	role := rbac.Role("")
	if account, err := service.profileStore.FindByID(ctx, active.UserID); err == nil {
		role = account.Role
	}
	if service.recorder != nil {
		service.recorder.Record(ctx, active.UserID, role, audit.ActionLogout, "sign-out completed")
	}

	if err := service.sessionRepository.Revoke(ctx, active.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens. The
role claim is re-read from the profile on every rotation, so a role change
propagates within one access-token lifetime.

Parameters:
  - ctx: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - error: CredentialRejected, ProfileNotFound, or storage failures
*/
func (service *Service) RefreshSession(ctx context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	tokenHash := sec.HashToken(refreshToken)
	active, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash)

	// The token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.CredentialRejected()
	}

	// Rotation: Revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(ctx, active.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	identity, err := service.identityRepository.FindByID(ctx, active.UserID)
	if err != nil {
		return nil, apperr.CredentialRejected()
	}

	// A profile deleted mid-session surfaces as the distinct no-access error.
	account, err := service.profileStore.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, apperr.ProfileNotFound()
	}
	if !account.IsActive {
		return nil, apperr.CredentialRejected()
	}

	return service.issueTokens(ctx, identity, account, userAgent, ipAddress)
}

/*
SweepExpiredSessions physically removes session rows whose expiry passed.

Description: Revoked and expired rows stop authenticating on their own; the
sweep only keeps the table from growing without bound. The composition root
runs it on a fixed interval.

Parameters:
  - ctx: context.Context

Returns:
  - error: Deletion failures
*/
func (service *Service) SweepExpiredSessions(ctx context.Context) error {
	if err := service.sessionRepository.DeleteExpired(ctx); err != nil {
		return fmt.Errorf("auth_service_sweep_sessions_failed: %w", err)
	}
	return nil
}

// # Magic Link Flow

/*
RequestMagicLink issues a single-use passwordless sign-in token.

Description: The response never reveals whether the address is known. A token
is only actually stored when the address belongs to an existing identity or
falls inside the enforced staff domain, but the caller cannot distinguish the
cases.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - string: The issued token, empty when the address was not eligible
  - error: Forbidden (flow disabled) or generation failures
*/
func (service *Service) RequestMagicLink(ctx context.Context, email string) (string, error) {
	if !service.config.MagicLinkEnabled {
		return "", apperr.Forbidden("Magic link sign-in is disabled")
	}

	address := normalizeEmail(email)

	_, err := service.identityRepository.FindByEmail(ctx, address)
	known := err == nil
	if !known && !service.inStaffDomain(address) {
		// Silently eligible-looking: no token, no error.
		return "", nil
	}

	token, err := sec.GenerateSecureToken(MagicLinkTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_magic_link_failed: %w", err)
	}

	if err := service.magicLinkRepository.Set(ctx, token, address, MagicLinkTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_magic_link_failed: %w", err)
	}

	if err := service.linkSender.SendMagicLink(ctx, address, token); err != nil {
		return "", fmt.Errorf("auth_service_send_magic_link_failed: %w", err)
	}

	if service.recorder != nil {
		service.recorder.Record(ctx, address, "", audit.ActionMagicLinkRequested, "magic link issued")
	}

	return token, nil
}

/*
VerifyMagicLink consumes a magic-link token and completes the sign-in.

Description: Runs the same bounded-wait attempt lifecycle as Login. A
first-time staff-domain address is auto-provisioned: the identity record and
a staff profile are created before the attempt succeeds, so the very first
click lands a fully admitted session.

Parameters:
  - ctx: context.Context
  - token: string
  - resumePath: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: Transport-ready session identifiers
  - error: CredentialRejected, ProfileNotFound, AuthTimeout, or storage failures
*/
func (service *Service) VerifyMagicLink(ctx context.Context, token, resumePath, userAgent, ipAddress string) (*LoginSession, error) {
	if !service.config.MagicLinkEnabled {
		return nil, apperr.Forbidden("Magic link sign-in is disabled")
	}

	machine := session.NewMachine(constants.AuthWaitTimeout, service.recorder, service.machineOptions...)
	defer machine.Close()

	if err := machine.Begin(); err != nil {
		return nil, err
	}

	address, err := service.magicLinkRepository.Get(ctx, token)
	if err != nil {
		machine.Fail(apperr.CredentialRejected())
		return nil, apperr.CredentialRejected()
	}

	identity, err := service.identityRepository.FindByEmail(ctx, address)
	if err != nil {
		identity, err = service.provisionIdentity(ctx, address)
		if err != nil {
			machine.Fail(apperr.CredentialRejected())
			return nil, err
		}
	}

	if !identity.IsVerified {
		if err := service.identityRepository.MarkVerified(ctx, identity.ID); err != nil {
			return nil, fmt.Errorf("auth_service_magic_link_verify_failed: %w", err)
		}
		identity.IsVerified = true
	}

	account, err := service.profileStore.FindByID(ctx, identity.ID)
	if err != nil {
		account, err = service.provisionStaffProfile(ctx, identity)
		if err != nil {
			machine.SucceedNoProfile(identity.ID, identity.Email)
			return nil, machine.Err()
		}
	}
	if !account.IsActive {
		machine.Fail(apperr.CredentialRejected())
		return nil, apperr.CredentialRejected()
	}

	// A magic-link click proves control of the address, so a profile that
	// predates verification flips verified on its first sign-in.
	if !account.IsVerified {
		if err := service.profileStore.MarkVerified(ctx, account.ID); err != nil {
			return nil, fmt.Errorf("auth_service_profile_verify_failed: %w", err)
		}
		account.IsVerified = true
	}

	machine.Succeed(ctx, identity.ID, identity.Email, account.Role, resumePath)
	if machine.State() != session.StateAuthenticated {
		return nil, machine.Err()
	}

	// Single use: burn the token only after the attempt settled.
	_ = service.magicLinkRepository.Delete(ctx, token)

	return service.issueTokens(ctx, identity, account, userAgent, ipAddress)
}

// # Helpers

// issueTokens mints the access/refresh pair and persists the tracking session.
func (service *Service) issueTokens(ctx context.Context, identity *Identity, account *profile.Profile, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(identity.ID, identity.Email, string(account.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	tracking := &Session{
		ID:        uuid.New(),
		UserID:    identity.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(ctx, tracking); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		Profile:               account,
		State:                 session.StateAuthenticated,
	}, nil
}

// provisionIdentity creates a password-less identity for a staff-domain
// address on its first magic-link sign-in.
func (service *Service) provisionIdentity(ctx context.Context, address string) (*Identity, error) {
	if !service.inStaffDomain(address) {
		return nil, apperr.CredentialRejected()
	}

	identity := &Identity{
		ID:         uuid.New(),
		Email:      address,
		IsVerified: true,
	}
	if err := service.identityRepository.Create(ctx, identity); err != nil {
		return nil, fmt.Errorf("auth_service_provision_identity_failed: %w", err)
	}

	service.logger.Info("identity_provisioned", slog.String("identity_id", identity.ID))
	return identity, nil
}

// provisionStaffProfile creates the staff portal profile backing a
// staff-domain identity. Non-staff addresses get nothing: the caller falls
// through to the verified-without-access outcome.
func (service *Service) provisionStaffProfile(ctx context.Context, identity *Identity) (*profile.Profile, error) {
	if !service.inStaffDomain(identity.Email) {
		return nil, apperr.ProfileNotFound()
	}

	account := &profile.Profile{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: displayNameFromEmail(identity.Email),
		Role:        rbac.RoleStaff,
		AuthMethod:  profile.AuthMethodMagicLink,
		IsActive:    true,
		IsVerified:  true,
	}
	if err := service.profileStore.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("auth_service_provision_profile_failed: %w", err)
	}

	if service.recorder != nil {
		service.recorder.Record(ctx, identity.ID, rbac.RoleStaff, audit.ActionProfileCreated, "staff profile auto-provisioned")
	}

	return account, nil
}

// inStaffDomain reports whether the address belongs to the enforced
// institutional domain.
func (service *Service) inStaffDomain(address string) bool {
	if !service.config.StaffDomainEnforcementEnabled || service.config.StaffEmailDomain == "" {
		return false
	}
	return strings.HasSuffix(address, "@"+strings.ToLower(service.config.StaffEmailDomain))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func displayNameFromEmail(address string) string {
	local, _, found := strings.Cut(address, "@")
	if !found || local == "" {
		return address
	}
	return local
}
