// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/campusgate/internal/audit"
	"github.com/taibuivan/campusgate/internal/platform/apperr"
	"github.com/taibuivan/campusgate/internal/rbac"
)

// stubStore is an in-memory audit.Store with an injectable failure.
type stubStore struct {
	events    []audit.Event
	appendErr error
}

func (s *stubStore) Append(_ context.Context, event *audit.Event) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *stubStore) List(_ context.Context, limit, offset int) ([]audit.Event, int, error) {
	total := len(s.events)
	if offset >= total {
		return []audit.Event{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return s.events[offset:end], total, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

/*
TestService_Record verifies normal appends and, critically, that a failing
sink is swallowed without panicking or propagating.
*/
func TestService_Record(t *testing.T) {
	t.Run("appends_event", func(t *testing.T) {
		store := &stubStore{}
		service := audit.NewService(store, discardLogger())

		service.Record(context.Background(), "user-1", rbac.RoleAdmin, audit.ActionTutorialCreated, "created setup-vpn")

		require.Len(t, store.events, 1)
		assert.Equal(t, "user-1", store.events[0].ActorID)
		assert.Equal(t, rbac.RoleAdmin, store.events[0].ActorRole)
		assert.Equal(t, audit.ActionTutorialCreated, store.events[0].Action)
	})

	t.Run("failing_sink_is_swallowed", func(t *testing.T) {
		store := &stubStore{appendErr: errors.New("connection refused")}
		service := audit.NewService(store, discardLogger())

		assert.NotPanics(t, func() {
			service.Record(context.Background(), "user-1", rbac.RoleStaff, audit.ActionLogin, "")
		})
	})

	t.Run("nil_service_is_a_no_op", func(t *testing.T) {
		var service *audit.Service
		assert.NotPanics(t, func() {
			service.Record(context.Background(), "user-1", rbac.RoleStaff, audit.ActionLogin, "")
		})
	})
}

/*
TestService_List checks the policy gate on trail reads.
*/
func TestService_List(t *testing.T) {
	store := &stubStore{events: []audit.Event{
		{ID: "evt-1", ActorID: "user-1", Action: audit.ActionLogin},
		{ID: "evt-2", ActorID: "user-1", Action: audit.ActionLogout},
	}}
	service := audit.NewService(store, discardLogger())

	t.Run("admin_reads_the_trail", func(t *testing.T) {
		events, total, err := service.List(context.Background(), rbac.RoleAdmin, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, events, 2)
	})

	t.Run("sudo_reads_the_trail", func(t *testing.T) {
		_, _, err := service.List(context.Background(), rbac.RoleSudo, 10, 0)
		assert.NoError(t, err)
	})

	t.Run("staff_is_forbidden", func(t *testing.T) {
		_, _, err := service.List(context.Background(), rbac.RoleStaff, 10, 0)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "FORBIDDEN", ae.Code)
	})

	t.Run("student_is_forbidden", func(t *testing.T) {
		_, _, err := service.List(context.Background(), rbac.RoleStudent, 10, 0)
		require.Error(t, err)
	})
}
