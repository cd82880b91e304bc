// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/campusgate/internal/audit"
	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/sec"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/internal/session"
	"github.com/taibuivan/campusgate/internal/users/auth"
	"github.com/taibuivan/campusgate/internal/users/profile"
)

// # In-Memory Doubles

type stubIdentityRepo struct {
	identities map[string]*auth.Identity // keyed by email
	created    []*auth.Identity
}

func (s *stubIdentityRepo) FindByID(_ context.Context, id string) (*auth.Identity, error) {
	for _, identity := range s.identities {
		if identity.ID == id {
			return identity, nil
		}
	}
	return nil, apperr.NotFound("Identity")
}

func (s *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*auth.Identity, error) {
	if identity, ok := s.identities[email]; ok {
		return identity, nil
	}
	return nil, apperr.NotFound("Identity")
}

func (s *stubIdentityRepo) Create(_ context.Context, identity *auth.Identity) error {
	s.identities[identity.Email] = identity
	s.created = append(s.created, identity)
	return nil
}

func (s *stubIdentityRepo) MarkVerified(_ context.Context, identityID string) error {
	for _, identity := range s.identities {
		if identity.ID == identityID {
			identity.IsVerified = true
			return nil
		}
	}
	return apperr.NotFound("Identity")
}

type stubSessionRepo struct {
	sessions map[string]*auth.Session // keyed by token hash
	revoked  []string
	sweeps   int
}

func (s *stubSessionRepo) Create(_ context.Context, active *auth.Session) error {
	s.sessions[active.TokenHash] = active
	return nil
}

func (s *stubSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	if active, ok := s.sessions[tokenHash]; ok && !active.IsRevoked {
		return active, nil
	}
	return nil, apperr.NotFound("Session")
}

func (s *stubSessionRepo) Revoke(_ context.Context, sessionID string) error {
	for _, active := range s.sessions {
		if active.ID == sessionID {
			active.IsRevoked = true
			s.revoked = append(s.revoked, sessionID)
			return nil
		}
	}
	return apperr.NotFound("Session")
}

func (s *stubSessionRepo) RevokeAll(_ context.Context, userID string) error {
	for _, active := range s.sessions {
		if active.UserID == userID {
			active.IsRevoked = true
		}
	}
	return nil
}

func (s *stubSessionRepo) DeleteExpired(_ context.Context) error {
	s.sweeps++
	return nil
}

type stubMagicLinkRepo struct {
	links   map[string]string // token -> email
	deleted []string
}

func (s *stubMagicLinkRepo) Set(_ context.Context, token, email string, _ time.Duration) error {
	s.links[token] = email
	return nil
}

func (s *stubMagicLinkRepo) Get(_ context.Context, token string) (string, error) {
	if email, ok := s.links[token]; ok {
		return email, nil
	}
	return "", apperr.NotFound("Magic link is invalid or expired")
}

func (s *stubMagicLinkRepo) Delete(_ context.Context, token string) error {
	delete(s.links, token)
	s.deleted = append(s.deleted, token)
	return nil
}

type stubProfileStore struct {
	profiles map[string]*profile.Profile // keyed by identity ID
	verified []string
	// findHook runs before every lookup; the timeout test uses it to fire
	// the bounded wait while verification is "in flight".
	findHook func()
}

func (s *stubProfileStore) FindByID(_ context.Context, id string) (*profile.Profile, error) {
	if s.findHook != nil {
		s.findHook()
	}
	if account, ok := s.profiles[id]; ok {
		return account, nil
	}
	return nil, apperr.NotFound("User")
}

func (s *stubProfileStore) List(_ context.Context, limit, offset int) ([]profile.Profile, int, error) {
	return nil, 0, nil
}

func (s *stubProfileStore) Create(_ context.Context, account *profile.Profile) error {
	s.profiles[account.ID] = account
	return nil
}

func (s *stubProfileStore) Update(_ context.Context, account *profile.Profile) error {
	s.profiles[account.ID] = account
	return nil
}

func (s *stubProfileStore) Delete(_ context.Context, id string) error {
	delete(s.profiles, id)
	return nil
}

func (s *stubProfileStore) MarkVerified(_ context.Context, id string) error {
	account, ok := s.profiles[id]
	if !ok {
		return apperr.NotFound("User")
	}
	account.IsVerified = true
	s.verified = append(s.verified, id)
	return nil
}

// recordingSender captures delivered magic links.
type recordingSender struct {
	recipients []string
	tokens     []string
}

func (r *recordingSender) SendMagicLink(_ context.Context, email, token string) error {
	r.recipients = append(r.recipients, email)
	r.tokens = append(r.tokens, token)
	return nil
}

type stubTokenProvider struct{}

func (stubTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	return "jwt-for-" + userID, nil
}

type auditSink struct {
	actions []string
}

func (a *auditSink) Record(_ context.Context, _ string, _ rbac.Role, action, _ string) {
	a.actions = append(a.actions, action)
}

// manualTimer mirrors the timer double used by the session machine tests.
type manualTimer struct {
	fn func()
}

func (m *manualTimer) Stop() bool { return true }

// # Fixture

type fixture struct {
	identities *stubIdentityRepo
	sessions   *stubSessionRepo
	links      *stubMagicLinkRepo
	profiles   *stubProfileStore
	sink       *auditSink
	sender     *recordingSender
	timer      *manualTimer
	service    *auth.Service
}

func newFixture(t *testing.T, config auth.Config) *fixture {
	t.Helper()

	passwordHash, err := sec.HashPassword("correct-horse")
	require.NoError(t, err)

	f := &fixture{
		identities: &stubIdentityRepo{identities: map[string]*auth.Identity{
			"alice@uni.edu": {ID: "id-alice", Email: "alice@uni.edu", PasswordHash: passwordHash, IsVerified: true},
			"noone@uni.edu": {ID: "id-noone", Email: "noone@uni.edu", PasswordHash: passwordHash, IsVerified: true},
		}},
		sessions: &stubSessionRepo{sessions: map[string]*auth.Session{}},
		links:    &stubMagicLinkRepo{links: map[string]string{}},
		profiles: &stubProfileStore{profiles: map[string]*profile.Profile{
			"id-alice": {ID: "id-alice", Email: "alice@uni.edu", Role: rbac.RoleStaff, IsActive: true, IsVerified: true},
		}},
		sink:   &auditSink{},
		sender: &recordingSender{},
		timer:  &manualTimer{},
	}

	factory := func(_ time.Duration, fn func()) session.Timer {
		f.timer.fn = fn
		return f.timer
	}

	f.service = auth.NewService(
		f.identities,
		f.sessions,
		f.links,
		f.profiles,
		f.sink,
		stubTokenProvider{},
		f.sender,
		config,
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
		session.WithTimerFactory(factory),
	)
	return f
}

// # Password Sign-In

/*
TestService_Login walks the password attempt lifecycle: admitted session,
rejected credential, verified-without-profile, inactive account, and the
bounded wait expiring mid-verification.
*/
func TestService_Login(t *testing.T) {
	t.Run("admits_and_issues_tokens", func(t *testing.T) {
		f := newFixture(t, auth.Config{})

		established, err := f.service.Login(context.Background(), auth.LoginInput{
			Email:      "Alice@UNI.edu", // normalization folds the case
			Password:   "correct-horse",
			ResumePath: "/tutorials/grading-handbook",
		})
		require.NoError(t, err)

		assert.Equal(t, "jwt-for-id-alice", established.AccessToken)
		assert.NotEmpty(t, established.RefreshToken)
		assert.Equal(t, session.StateAuthenticated, established.State)
		assert.Equal(t, rbac.RoleStaff, established.Profile.Role)
		assert.Equal(t, []string{audit.ActionLogin}, f.sink.actions)
		assert.Len(t, f.sessions.sessions, 1, "one tracking session persisted")
	})

	t.Run("wrong_password_is_rejected_without_audit", func(t *testing.T) {
		f := newFixture(t, auth.Config{})

		_, err := f.service.Login(context.Background(), auth.LoginInput{
			Email: "alice@uni.edu", Password: "wrong",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CREDENTIAL_REJECTED", ae.Code)
		assert.Empty(t, f.sink.actions)
		assert.Empty(t, f.sessions.sessions)
	})

	t.Run("unknown_email_reads_like_wrong_password", func(t *testing.T) {
		f := newFixture(t, auth.Config{})

		_, err := f.service.Login(context.Background(), auth.LoginInput{
			Email: "ghost@uni.edu", Password: "correct-horse",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CREDENTIAL_REJECTED", ae.Code, "a missing identity must be indistinguishable from a bad password")
	})

	t.Run("verified_identity_without_profile", func(t *testing.T) {
		f := newFixture(t, auth.Config{})

		// "noone" has a valid credential but no portal profile.
		_, err := f.service.Login(context.Background(), auth.LoginInput{
			Email: "noone@uni.edu", Password: "correct-horse",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "PROFILE_NOT_FOUND", ae.Code)
		assert.Empty(t, f.sink.actions, "verified-without-access is not a login")
	})

	t.Run("inactive_profile_is_rejected", func(t *testing.T) {
		f := newFixture(t, auth.Config{})
		f.profiles.profiles["id-alice"].IsActive = false

		_, err := f.service.Login(context.Background(), auth.LoginInput{
			Email: "alice@uni.edu", Password: "correct-horse",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CREDENTIAL_REJECTED", ae.Code)
	})

	t.Run("bounded_wait_expiry_discards_late_success", func(t *testing.T) {
		f := newFixture(t, auth.Config{})

		// The profile lookup stalls past the deadline: fire the wait timer
		// from inside the lookup, then let verification "complete".
		f.profiles.findHook = func() { f.timer.fn() }

		_, err := f.service.Login(context.Background(), auth.LoginInput{
			Email: "alice@uni.edu", Password: "correct-horse",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "AUTH_TIMEOUT", ae.Code)
		assert.Empty(t, f.sink.actions, "a login that resolved after the deadline never happened")
		assert.Empty(t, f.sessions.sessions)
	})
}

// # Sign-Out and Rotation

/*
TestService_Logout verifies the audit-before-revoke ordering and idempotence.
*/
func TestService_Logout(t *testing.T) {
	t.Run("revokes_and_audits_the_actor", func(t *testing.T) {
		f := newFixture(t, auth.Config{})

		established, err := f.service.Login(context.Background(), auth.LoginInput{
			Email: "alice@uni.edu", Password: "correct-horse",
		})
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(context.Background(), established.RefreshToken))

		assert.Equal(t, []string{audit.ActionLogin, audit.ActionLogout}, f.sink.actions)
		assert.Len(t, f.sessions.revoked, 1)
	})

	t.Run("unknown_token_is_a_no_op", func(t *testing.T) {
		f := newFixture(t, auth.Config{})

		require.NoError(t, f.service.Logout(context.Background(), "never-issued"))
		assert.Empty(t, f.sink.actions)
	})
}

/*
TestService_RefreshSession checks rotation: the old token dies, the new pair
works, and a replay of the rotated-out token is rejected.
*/
func TestService_RefreshSession(t *testing.T) {
	f := newFixture(t, auth.Config{})

	established, err := f.service.Login(context.Background(), auth.LoginInput{
		Email: "alice@uni.edu", Password: "correct-horse",
	})
	require.NoError(t, err)

	rotated, err := f.service.RefreshSession(context.Background(), established.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, established.RefreshToken, rotated.RefreshToken)

	// Replaying the rotated-out token must fail.
	_, err = f.service.RefreshSession(context.Background(), established.RefreshToken, "", "")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CREDENTIAL_REJECTED", ae.Code)

	t.Run("profile_deleted_mid_session", func(t *testing.T) {
		delete(f.profiles.profiles, "id-alice")

		_, err := f.service.RefreshSession(context.Background(), rotated.RefreshToken, "", "")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "PROFILE_NOT_FOUND", ae.Code)
	})
}

/*
TestService_SweepExpiredSessions verifies the cleanup pass reaches the
session repository.
*/
func TestService_SweepExpiredSessions(t *testing.T) {
	f := newFixture(t, auth.Config{})

	require.NoError(t, f.service.SweepExpiredSessions(context.Background()))
	assert.Equal(t, 1, f.sessions.sweeps)
}

// # Magic Link Flow

/*
TestService_RequestMagicLink covers the feature flag and the anti-enumeration
behavior: ineligible addresses get the same empty success as eligible ones.
*/
func TestService_RequestMagicLink(t *testing.T) {
	enabled := auth.Config{
		MagicLinkEnabled:              true,
		StaffEmailDomain:              "uni.edu",
		StaffDomainEnforcementEnabled: true,
	}

	t.Run("disabled_flow_is_forbidden", func(t *testing.T) {
		f := newFixture(t, auth.Config{MagicLinkEnabled: false})

		_, err := f.service.RequestMagicLink(context.Background(), "alice@uni.edu")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "FORBIDDEN", ae.Code)
	})

	t.Run("known_identity_gets_a_token", func(t *testing.T) {
		f := newFixture(t, enabled)

		token, err := f.service.RequestMagicLink(context.Background(), "alice@uni.edu")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice@uni.edu", f.links.links[token])
		assert.Contains(t, f.sink.actions, audit.ActionMagicLinkRequested)

		// The token reaches the recipient through the injected sender.
		assert.Equal(t, []string{"alice@uni.edu"}, f.sender.recipients)
		assert.Equal(t, []string{token}, f.sender.tokens)
	})

	t.Run("staff_domain_stranger_gets_a_token", func(t *testing.T) {
		f := newFixture(t, enabled)

		token, err := f.service.RequestMagicLink(context.Background(), "newhire@uni.edu")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("outside_address_fails_silently", func(t *testing.T) {
		f := newFixture(t, enabled)

		token, err := f.service.RequestMagicLink(context.Background(), "stranger@gmail.com")
		require.NoError(t, err, "the response must not reveal eligibility")
		assert.Empty(t, token)
		assert.Empty(t, f.links.links)
	})
}

/*
TestService_VerifyMagicLink covers consumption: first-time staff
auto-provisioning, single use, and invalid tokens.
*/
func TestService_VerifyMagicLink(t *testing.T) {
	enabled := auth.Config{
		MagicLinkEnabled:              true,
		StaffEmailDomain:              "uni.edu",
		StaffDomainEnforcementEnabled: true,
	}

	t.Run("first_time_staff_is_auto_provisioned", func(t *testing.T) {
		f := newFixture(t, enabled)
		f.links.links["tok-1"] = "newhire@uni.edu"

		established, err := f.service.VerifyMagicLink(context.Background(), "tok-1", "/", "", "")
		require.NoError(t, err)

		assert.Equal(t, rbac.RoleStaff, established.Profile.Role)
		assert.Equal(t, profile.AuthMethodMagicLink, established.Profile.AuthMethod)
		assert.Equal(t, "newhire", established.Profile.DisplayName)
		require.Len(t, f.identities.created, 1)
		assert.True(t, f.identities.created[0].IsVerified)

		// Provisioning and the login itself are both on the trail.
		assert.Contains(t, f.sink.actions, audit.ActionProfileCreated)
		assert.Contains(t, f.sink.actions, audit.ActionLogin)

		assert.Equal(t, []string{"tok-1"}, f.links.deleted, "single use: the token burns on success")
	})

	t.Run("existing_identity_signs_in_without_provisioning", func(t *testing.T) {
		f := newFixture(t, enabled)
		f.links.links["tok-2"] = "alice@uni.edu"

		established, err := f.service.VerifyMagicLink(context.Background(), "tok-2", "", "", "")
		require.NoError(t, err)
		assert.Equal(t, "id-alice", established.Profile.ID)
		assert.Empty(t, f.identities.created)
	})

	t.Run("first_sign_in_marks_existing_profile_verified", func(t *testing.T) {
		f := newFixture(t, enabled)
		f.profiles.profiles["id-alice"].IsVerified = false
		f.links.links["tok-5"] = "alice@uni.edu"

		established, err := f.service.VerifyMagicLink(context.Background(), "tok-5", "", "", "")
		require.NoError(t, err)

		assert.True(t, established.Profile.IsVerified)
		assert.Equal(t, []string{"id-alice"}, f.profiles.verified,
			"a confirmed link click proves control of the address")

		// A later sign-in does not write the flag again.
		f.links.links["tok-6"] = "alice@uni.edu"
		_, err = f.service.VerifyMagicLink(context.Background(), "tok-6", "", "", "")
		require.NoError(t, err)
		assert.Len(t, f.profiles.verified, 1)
	})

	t.Run("invalid_token_is_rejected", func(t *testing.T) {
		f := newFixture(t, enabled)

		_, err := f.service.VerifyMagicLink(context.Background(), "never-issued", "", "", "")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CREDENTIAL_REJECTED", ae.Code)
	})

	t.Run("outside_domain_address_has_no_portal_access", func(t *testing.T) {
		f := newFixture(t, enabled)
		// A link that was somehow issued for an outsider with an identity
		// but no profile.
		f.identities.identities["guest@gmail.com"] = &auth.Identity{ID: "id-guest", Email: "guest@gmail.com", IsVerified: true}
		f.links.links["tok-3"] = "guest@gmail.com"

		_, err := f.service.VerifyMagicLink(context.Background(), "tok-3", "", "", "")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "PROFILE_NOT_FOUND", ae.Code)
	})

	t.Run("disabled_flow_is_forbidden", func(t *testing.T) {
		f := newFixture(t, auth.Config{MagicLinkEnabled: false})

		_, err := f.service.VerifyMagicLink(context.Background(), "tok", "", "", "")
		require.Error(t, err)
	})
}
