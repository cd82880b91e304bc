// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth provides the HTTP delivery layer for the sign-in lifecycle.

It implements the gateway for password and magic-link authentication, session
refresh rotation, and sign-out.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/constants"
	"github.com/taibuivan/campusgate/internal/platform/middleware"
	requestutil "github.com/taibuivan/campusgate/internal/platform/request"
	"github.com/taibuivan/campusgate/internal/platform/respond"
	"github.com/taibuivan/campusgate/internal/platform/validate"
	"github.com/taibuivan/campusgate/internal/session"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /login             : Password sign-in.
//   - POST /refresh           : Refresh token rotation.
//   - POST /magic-link        : Passwordless link request.
//   - POST /magic-link/verify : Passwordless link consumption.
//   - POST /logout            : Session revocation.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/magic-link", handler.requestMagicLink)
	router.Post("/magic-link/verify", handler.verifyMagicLink)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ResumePath string `json:"resume_path"`
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

type verifyMagicLinkRequest struct {
	Token      string `json:"token"`
	ResumePath string `json:"resume_path"`
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials through the bounded-wait attempt lifecycle,
generates JWT access tokens, and injects a secure refresh token cookie into
the response. The X-Redirect-To header carries the post-sign-in landing path.

Request:
  - Body: loginRequest (Email, Password, optional ResumePath)

Response:
  - 200: Session: Access token and profile
  - 401: CREDENTIAL_REJECTED: Invalid credentials
  - 401: AUTH_TIMEOUT: Verification exceeded the bounded wait
  - 403: PROFILE_NOT_FOUND: Verified identity without portal access
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	established, err := handler.authService.Login(request.Context(), LoginInput{
		Email:      input.Email,
		Password:   input.Password,
		ResumePath: input.ResumePath,
		UserAgent:  request.UserAgent(),
		IPAddress:  getClientIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, established, input.ResumePath)
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Description: Invalidates the refresh token (if present) and clears the
security cookies from the client.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.authService.Logout(request.Context(), cookie.Value)
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writer.Header().Set(middleware.HeaderRedirectTo, session.PathSignIn)
	respond.NoContent(writer)
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie
and issuing a fresh access token and an updated refresh token.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: CREDENTIAL_REJECTED: Missing or invalid refresh token
  - 403: PROFILE_NOT_FOUND: Profile removed mid-session
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	established, err := handler.authService.RefreshSession(
		request.Context(),
		cookie.Value,
		request.UserAgent(),
		getClientIP(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, established)

	respond.OK(writer, map[string]any{
		FieldAccessToken: established.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
	})
}

/*
RequestMagicLink initiates the passwordless sign-in flow.

POST /api/v1/auth/magic-link

Description: Issues a single-use link token for eligible addresses. The
response is identical whether or not the address is known.

Request:
  - Body: magicLinkRequest (Email)

Response:
  - 200: Success: Generic delivery message
  - 400: ErrInvalidJSON: Invalid email format
  - 403: ErrForbidden: Passwordless flow disabled
*/
func (handler *Handler) requestMagicLink(writer http.ResponseWriter, request *http.Request) {
	var input magicLinkRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err := handler.authService.RequestMagicLink(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is eligible, a sign-in link has been sent.",
	})
}

/*
VerifyMagicLink consumes a magic-link token and signs the user in.

POST /api/v1/auth/magic-link/verify

Request:
  - Body: verifyMagicLinkRequest (Token, optional ResumePath)

Response:
  - 200: Session: Access token and profile
  - 401: CREDENTIAL_REJECTED: Invalid or expired link
  - 403: PROFILE_NOT_FOUND: Verified identity without portal access
*/
func (handler *Handler) verifyMagicLink(writer http.ResponseWriter, request *http.Request) {
	var input verifyMagicLinkRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	established, err := handler.authService.VerifyMagicLink(
		request.Context(),
		input.Token,
		input.ResumePath,
		request.UserAgent(),
		getClientIP(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, established, input.ResumePath)
}

// # Transport Helpers

// writeSession emits the cookie, redirect header, and JSON body for an
// established session.
func (handler *Handler) writeSession(writer http.ResponseWriter, established *LoginSession, resumePath string) {
	handler.setRefreshCookie(writer, established)

	if resumePath != "" {
		writer.Header().Set(middleware.HeaderRedirectTo, resumePath)
	}

	respond.OK(writer, map[string]any{
		FieldAccessToken: established.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
		FieldUser:        established.Profile,
		FieldState:       established.State,
	})
}

func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, established *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    established.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  established.RefreshTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// getClientIP tries to extract the real IP address of a user over proxy environments.
func getClientIP(request *http.Request) string {
	ip := request.Header.Get("X-Real-IP")
	if ip == "" {
		ip = request.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = request.RemoteAddr
	}
	return ip
}
