// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tutorial_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/platform/sec"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/internal/tutorial"
)

// stubStore is an in-memory tutorial.Store keyed by slug.
type stubStore struct {
	tutorials []*tutorial.Tutorial
	deleted   []string
}

func (s *stubStore) FindBySlug(_ context.Context, slug string) (*tutorial.Tutorial, error) {
	for _, entity := range s.tutorials {
		if entity.Slug == slug {
			clone := *entity
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Tutorial")
}

func (s *stubStore) List(_ context.Context, limit, offset int) ([]tutorial.Tutorial, int, error) {
	out := make([]tutorial.Tutorial, 0, len(s.tutorials))
	for _, entity := range s.tutorials {
		out = append(out, *entity)
	}
	return out, len(out), nil
}

func (s *stubStore) ListByTarget(_ context.Context, target rbac.Role, limit, offset int) ([]tutorial.Tutorial, int, error) {
	var out []tutorial.Tutorial
	for _, entity := range s.tutorials {
		if entity.Target == target {
			out = append(out, *entity)
		}
	}
	return out, len(out), nil
}

func (s *stubStore) Create(_ context.Context, entity *tutorial.Tutorial) error {
	if entity.ID == "" {
		entity.ID = "tut-" + entity.Slug
	}
	s.tutorials = append(s.tutorials, entity)
	return nil
}

func (s *stubStore) Update(_ context.Context, entity *tutorial.Tutorial) error {
	for i, existing := range s.tutorials {
		if existing.ID == entity.ID {
			s.tutorials[i] = entity
			return nil
		}
	}
	return apperr.NotFound("Tutorial")
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	for i, existing := range s.tutorials {
		if existing.ID == id {
			s.tutorials = append(s.tutorials[:i], s.tutorials[i+1:]...)
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return apperr.NotFound("Tutorial")
}

// sink collects audit actions.
type sink struct {
	actions []string
}

func (s *sink) Record(_ context.Context, _ string, _ rbac.Role, action, _ string) {
	s.actions = append(s.actions, action)
}

func catalogue() *stubStore {
	return &stubStore{tutorials: []*tutorial.Tutorial{
		{ID: "t1", Slug: "grading-handbook", Title: "Grading Handbook", Target: rbac.RoleStaff},
		{ID: "t2", Slug: "course-enrolment", Title: "Course Enrolment", Target: rbac.RoleStudent},
		{ID: "t3", Slug: "campus-wifi", Title: "Campus WiFi", Target: rbac.RoleStudent},
	}}
}

func newService(store tutorial.Store, auditSink *sink) *tutorial.Service {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return tutorial.NewService(store, auditSink, logger)
}

func caller(id string, effective rbac.Role) *sec.Principal {
	return &sec.Principal{UserID: id, Email: id + "@uni.edu", Role: effective, Effective: effective}
}

/*
TestService_List verifies audience scoping: own-scope roles see only their
slice, read-all roles see the full catalogue.
*/
func TestService_List(t *testing.T) {
	tests := []struct {
		name      string
		effective rbac.Role
		wantSlugs []string
		wantErr   bool
	}{
		{"staff_sees_staff_slice", rbac.RoleStaff, []string{"grading-handbook"}, false},
		{"student_sees_student_slice", rbac.RoleStudent, []string{"course-enrolment", "campus-wifi"}, false},
		{"admin_sees_everything", rbac.RoleAdmin, []string{"grading-handbook", "course-enrolment", "campus-wifi"}, false},
		{"sudo_sees_everything", rbac.RoleSudo, []string{"grading-handbook", "course-enrolment", "campus-wifi"}, false},
		{"unresolved_role_is_denied", rbac.Role(""), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newService(catalogue(), &sink{})

			tutorials, total, err := service.List(context.Background(), caller("u1", tt.effective), 10, 0)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, len(tt.wantSlugs), total)

			slugs := make([]string, 0, len(tutorials))
			for _, entity := range tutorials {
				slugs = append(slugs, entity.Slug)
			}
			assert.ElementsMatch(t, tt.wantSlugs, slugs)
		})
	}
}

/*
TestService_GetBySlug covers the cross-audience read: a scoped caller asking
for another audience's slug gets not-found, never forbidden, so the catalogue
does not leak entry existence.
*/
func TestService_GetBySlug(t *testing.T) {
	service := newService(catalogue(), &sink{})

	t.Run("own_audience_slug_renders", func(t *testing.T) {
		entity, err := service.GetBySlug(context.Background(), caller("u1", rbac.RoleStaff), "grading-handbook")
		require.NoError(t, err)
		assert.Equal(t, "Grading Handbook", entity.Title)
	})

	t.Run("cross_audience_slug_reads_as_missing", func(t *testing.T) {
		_, err := service.GetBySlug(context.Background(), caller("u1", rbac.RoleStaff), "course-enrolment")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})

	t.Run("admin_reads_any_audience", func(t *testing.T) {
		entity, err := service.GetBySlug(context.Background(), caller("admin-1", rbac.RoleAdmin), "course-enrolment")
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleStudent, entity.Target)
	})

	t.Run("unknown_slug_is_missing", func(t *testing.T) {
		_, err := service.GetBySlug(context.Background(), caller("admin-1", rbac.RoleAdmin), "ghost")
		require.Error(t, err)
	})
}

/*
TestService_Create checks slug derivation, target validation, and the write
authorization gate.
*/
func TestService_Create(t *testing.T) {
	t.Run("derives_slug_from_title", func(t *testing.T) {
		store := catalogue()
		auditSink := &sink{}
		service := newService(store, auditSink)

		created, err := service.Create(context.Background(), caller("admin-1", rbac.RoleAdmin), tutorial.CreateInput{
			Title:  "Library Access & Borrowing",
			URL:    "https://kb.uni.edu/library",
			Target: "student",
		})
		require.NoError(t, err)
		assert.Equal(t, "library-access-borrowing", created.Slug)
		assert.Equal(t, rbac.RoleStudent, created.Target)
		assert.Contains(t, auditSink.actions, "tutorial_created")
	})

	t.Run("admin_is_not_a_valid_audience", func(t *testing.T) {
		service := newService(catalogue(), &sink{})

		_, err := service.Create(context.Background(), caller("admin-1", rbac.RoleAdmin), tutorial.CreateInput{
			Title: "Admin Console", URL: "https://kb.uni.edu/admin", Target: "admin",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("sudo_is_not_a_valid_audience", func(t *testing.T) {
		service := newService(catalogue(), &sink{})

		_, err := service.Create(context.Background(), caller("root", rbac.RoleSudo), tutorial.CreateInput{
			Title: "Root Guide", URL: "https://kb.uni.edu/root", Target: "sudo",
		})
		require.Error(t, err)
	})

	t.Run("staff_cannot_write", func(t *testing.T) {
		service := newService(catalogue(), &sink{})

		_, err := service.Create(context.Background(), caller("u1", rbac.RoleStaff), tutorial.CreateInput{
			Title: "Rogue Entry", URL: "https://kb.uni.edu/rogue", Target: "staff",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "FORBIDDEN", ae.Code)
	})
}

/*
TestService_Update verifies partial updates leave other fields alone and the
slug survives a title change so shared URLs keep resolving.
*/
func TestService_Update(t *testing.T) {
	store := catalogue()
	service := newService(store, &sink{})

	title := "Campus WiFi and VPN"
	updated, err := service.Update(context.Background(), caller("admin-1", rbac.RoleAdmin), "campus-wifi", tutorial.UpdateInput{
		Title: &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "Campus WiFi and VPN", updated.Title)
	assert.Equal(t, "campus-wifi", updated.Slug, "the creation-time slug is permanent")
	assert.Equal(t, rbac.RoleStudent, updated.Target, "target untouched by a title change")

	_, err = service.GetBySlug(context.Background(), caller("u2", rbac.RoleStudent), "campus-wifi")
	assert.NoError(t, err, "the original URL still resolves after the rename")
}

/*
TestService_Delete checks removal plus the audit record, and that the
entry is addressed by slug while the store is keyed by ID.
*/
func TestService_Delete(t *testing.T) {
	store := catalogue()
	auditSink := &sink{}
	service := newService(store, auditSink)

	err := service.Delete(context.Background(), caller("admin-1", rbac.RoleAdmin), "grading-handbook")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, store.deleted)
	assert.Contains(t, auditSink.actions, "tutorial_deleted")

	err = service.Delete(context.Background(), caller("u2", rbac.RoleStudent), "campus-wifi")
	require.Error(t, err, "scoped roles never manage the catalogue")
}
