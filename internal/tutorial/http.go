// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tutorial

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/campusgate/internal/platform/middleware"
	requestutil "github.com/taibuivan/campusgate/internal/platform/request"
	"github.com/taibuivan/campusgate/internal/platform/respond"
	"github.com/taibuivan/campusgate/internal/platform/validate"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the tutorial catalogue HTTP endpoints.
type Handler struct {
	tutorialService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{tutorialService: service}
}

// Routes returns a [chi.Router] configured with tutorial routes.
//
// # Endpoints
//   - GET    /        : Catalogue listing, filtered to the caller's audience.
//   - GET    /{slug}  : Single tutorial, subject to the same filtering.
//   - POST   /        : Admin catalogue entry creation.
//   - PATCH  /{slug}  : Admin catalogue entry update.
//   - DELETE /{slug}  : Admin catalogue entry removal.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(reader chi.Router) {
		reader.Use(middleware.RequireAuth)
		reader.Get("/", handler.list)
		reader.Get("/{slug}", handler.getBySlug)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRoles(rbac.RoleAdmin))
		admin.Post("/", handler.create)
		admin.Patch("/{slug}", handler.update)
		admin.Delete("/{slug}", handler.remove)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Target      string `json:"target"`
}

type updateRequest struct {
	Title       *string `json:"title"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
	Target      *string `json:"target"`
}

/*
List returns the caller's visible slice of the catalogue.

GET /api/v1/tutorials

Response:
  - 200: []Tutorial with pagination metadata
  - 401: ErrUnauthorized: Anonymous request
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	caller := middleware.GetUser(request.Context())
	params := pagination.FromRequest(request)

	tutorials, total, err := handler.tutorialService.List(request.Context(), caller, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, tutorials, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GetBySlug returns a single tutorial by slug.

GET /api/v1/tutorials/{slug}

Response:
  - 200: Tutorial
  - 404: ErrNotFound: Unknown slug, or targeted outside the caller's audience
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	caller := middleware.GetUser(request.Context())
	tutorialSlug := chi.URLParam(request, "slug")

	entity, err := handler.tutorialService.GetBySlug(request.Context(), caller, tutorialSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entity)
}

/*
Create adds a catalogue entry.

POST /api/v1/tutorials

Request:
  - Body: createRequest (Title, URL, Target, optional Description)

Response:
  - 201: Tutorial: Created entity
  - 400: ErrInvalidJSON: Bad input or unknown audience
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 200).
		Required(FieldURL, input.URL).
		Custom(FieldURL, !strings.HasPrefix(input.URL, "https://"), "Must be an https URL").
		Required(FieldTarget, input.Target)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	caller := middleware.GetUser(request.Context())
	entity, err := handler.tutorialService.Create(request.Context(), caller, CreateInput{
		Title:       input.Title,
		URL:         input.URL,
		Description: input.Description,
		Target:      input.Target,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entity)
}

/*
Update applies a partial change set to a catalogue entry.

PATCH /api/v1/tutorials/{slug}

Request:
  - Body: updateRequest (Title, URL, Description, Target — all optional)

Response:
  - 200: Tutorial: Updated entity
  - 400: ErrInvalidJSON: Bad input or unknown audience
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: No such tutorial
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	tutorialSlug := chi.URLParam(request, "slug")

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	caller := middleware.GetUser(request.Context())
	entity, err := handler.tutorialService.Update(request.Context(), caller, tutorialSlug, UpdateInput{
		Title:       input.Title,
		URL:         input.URL,
		Description: input.Description,
		Target:      input.Target,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entity)
}

/*
Remove deletes a catalogue entry.

DELETE /api/v1/tutorials/{slug}

Response:
  - 204: No content
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: No such tutorial
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	tutorialSlug := chi.URLParam(request, "slug")
	caller := middleware.GetUser(request.Context())

	if err := handler.tutorialService.Delete(request.Context(), caller, tutorialSlug); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
