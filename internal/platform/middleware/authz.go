// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/ctxkey"
	"github.com/taibuivan/campusgate/internal/platform/obs"
	"github.com/taibuivan/campusgate/internal/platform/respond"
	"github.com/taibuivan/campusgate/internal/platform/sec"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/internal/session"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the `sec` token
// service implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// RoleResolver computes the effective role for a verified identity,
// including the runtime-only sudo override.
type RoleResolver interface {
	EffectiveRole(profileRole rbac.Role, identityEmail string) rbac.Role
}

// HeaderRedirectTo carries the navigation target for guard redirects. The SPA
// reads it from 401/403 responses to preserve the originally requested path.
const HeaderRedirectTo = "X-Redirect-To"

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Resolve the effective role (sudo override included) via [RoleResolver].
//  5. Inject [*sec.Principal] into the request context for downstream use.
//
// # Parameters
//   - verifier: The TokenVerifier instance.
//   - resolver: The effective-role resolver.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier TokenVerifier, resolver RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenStr := parts[1]
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Effective Role Resolution ──────────────────────────────────
			// Computed per request and never written back: the token keeps
			// carrying the persisted role only.
			effective := resolver.EffectiveRole(rbac.Role(claims.Role), claims.Email)

			// ── 5. Context Injection ──────────────────────────────────────────
			principal := sec.FromClaims(claims, effective)
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := GetUser(request.Context())
		if principal == nil {
			redirectToSignIn(writer, request)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRoles guards a route with the session route guard.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth]. The declared roles are the route's required set; an empty
// set admits any authenticated principal.
//
// # Flow
//  1. Map the request onto a session state: a missing principal is Anonymous.
//  2. Ask [session.Decide] for the verdict on (state, effective role, roles).
//  3. Redirect-to-login verdicts answer 401 with the sign-in target and the
//     originally requested path; fallback verdicts answer 403 with the
//     access-denied target.
func RequireRoles(roles ...rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := GetUser(request.Context())

			state := session.StateAnonymous
			var effective rbac.Role
			if principal != nil {
				state = session.StateAuthenticated
				effective = principal.Effective
			}

			decision := session.Decide(state, effective, roles)
			obs.ObserveGuardDecision(string(decision))

			switch decision {
			case session.DecisionRender:
				next.ServeHTTP(writer, request)

			case session.DecisionRedirectLogin:
				redirectToSignIn(writer, request)

			default:
				target := session.PathFallback + "?denied=" + url.QueryEscape(request.URL.Path)
				writer.Header().Set(HeaderRedirectTo, target)
				respond.Error(writer, request, apperr.Forbidden("Access denied for this area"))
			}
		})
	}
}

// GetUser retrieves the [*sec.Principal] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.Principal] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx context.Context) *sec.Principal {
	principal, ok := ctx.Value(ctxkey.KeyUser).(*sec.Principal)
	if !ok {
		return nil
	}
	return principal
}

// redirectToSignIn answers 401 with the sign-in entry point, preserving the
// originally requested path so the journey resumes after sign-in.
func redirectToSignIn(writer http.ResponseWriter, request *http.Request) {
	target := session.PathSignIn + "?from=" + url.QueryEscape(request.URL.Path)
	writer.Header().Set(HeaderRedirectTo, target)
	respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
}
