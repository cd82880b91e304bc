// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/campusgate/internal/platform/middleware"
	"github.com/taibuivan/campusgate/internal/platform/respond"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/pkg/pagination"
)

// # Definitions & Constructors

// Handler exposes the audit trail over HTTP.
type Handler struct {
	auditService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{auditService: service}
}

// Routes returns a [chi.Router] configured with audit routes.
//
// # Endpoints
//   - GET / : Admin listing of the action trail, newest first.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequireRoles(rbac.RoleAdmin)).Get("/", handler.list)

	return router
}

/*
List returns the paginated action trail for administrators.

GET /api/v1/audit

Response:
  - 200: []Event with pagination metadata, newest first
  - 403: ErrForbidden: Caller may not read the audit log
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	caller := middleware.GetUser(request.Context())
	params := pagination.FromRequest(request)

	events, total, err := handler.auditService.List(request.Context(), caller.Effective, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, events, pagination.NewMeta(params.Page, params.Limit, total))
}
