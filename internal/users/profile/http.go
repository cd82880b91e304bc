// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/middleware"
	requestutil "github.com/taibuivan/campusgate/internal/platform/request"
	"github.com/taibuivan/campusgate/internal/platform/respond"
	"github.com/taibuivan/campusgate/internal/platform/validate"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the user management HTTP endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] configured with user management routes.
//
// # Endpoints
//   - GET    /me   : The caller's own profile.
//   - GET    /     : Admin user listing.
//   - POST   /     : Admin profile provisioning.
//   - PATCH  /{id} : Admin profile update.
//   - DELETE /{id} : Profile deletion (super-admin override only; the
//     service-level policy check narrows this past the admin route guard).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequireAuth).Get("/me", handler.getOwn)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRoles(rbac.RoleAdmin))
		admin.Get("/", handler.list)
		admin.Post("/", handler.create)
		admin.Patch("/{id}", handler.update)
		admin.Delete("/{id}", handler.remove)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	ID          string `json:"id"`
	StaffNumber string `json:"staff_number"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type updateRequest struct {
	StaffNumber *string `json:"staff_number"`
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"is_active"`
}

/*
GetOwn returns the caller's own profile.

GET /api/v1/users/me

Response:
  - 200: Profile
  - 401: ErrUnauthorized: Anonymous request
  - 404: ErrNotFound: Identity verified but no profile configured
*/
func (handler *Handler) getOwn(writer http.ResponseWriter, request *http.Request) {
	caller := middleware.GetUser(request.Context())

	entity, err := handler.profileService.GetOwn(request.Context(), caller)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entity)
}

/*
List returns the paginated user listing for administrators.

GET /api/v1/users

Response:
  - 200: []Profile with pagination metadata
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	caller := middleware.GetUser(request.Context())
	params := pagination.FromRequest(request)

	profiles, total, err := handler.profileService.List(request.Context(), caller, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, profiles, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Create provisions a profile for an existing identity.

POST /api/v1/users

Request:
  - Body: createRequest (ID, StaffNumber, Email, DisplayName, Role)

Response:
  - 201: Profile: Created entity
  - 400: ErrInvalidJSON: Bad input, unknown role, or validation failure
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("id", input.ID).
		UUID("id", input.ID).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldDisplayName, input.DisplayName).
		Required(FieldRole, input.Role)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	caller := middleware.GetUser(request.Context())
	entity, err := handler.profileService.Create(request.Context(), caller, CreateInput{
		ID:          input.ID,
		StaffNumber: input.StaffNumber,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Role:        input.Role,
		AuthMethod:  AuthMethodPassword,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entity)
}

/*
Update applies a partial change set to a profile.

PATCH /api/v1/users/{id}

Request:
  - Body: updateRequest (StaffNumber, DisplayName, Role, IsActive — all optional)

Response:
  - 200: Profile: Updated entity
  - 400: ErrInvalidJSON: Bad input or unknown role value
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: No such profile
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	caller := middleware.GetUser(request.Context())
	entity, err := handler.profileService.Update(request.Context(), caller, id, UpdateInput{
		StaffNumber: input.StaffNumber,
		DisplayName: input.DisplayName,
		Role:        input.Role,
		IsActive:    input.IsActive,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entity)
}

/*
Remove permanently deletes a profile.

DELETE /api/v1/users/{id}

Response:
  - 204: Deleted
  - 403: ErrForbidden: Caller lacks the super-admin override, or the target
    is the override identity itself
  - 404: ErrNotFound: No such profile
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")
	if id == "" {
		respond.Error(writer, request, apperr.ValidationError("Missing profile id"))
		return
	}

	caller := middleware.GetUser(request.Context())
	if err := handler.profileService.Delete(request.Context(), caller, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
