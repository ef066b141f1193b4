package service

import (
	"context"
	"encoding/json"
	"testing"

	"drivedesk/internal/events"
	"drivedesk/internal/models"
	"drivedesk/internal/repository"
	"drivedesk/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerService(t *testing.T) (*ManagerService, *events.EventBus) {
	t.Helper()
	logger := zerolog.Nop()
	bus := events.NewEventBus()
	dir := storage.NewManagerDirectory(repository.NewMemoryKV(), storage.DefaultKeys())
	return NewManagerService(dir, bus, &logger), bus
}

func TestManagerServiceRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, bus := newManagerService(t)

	var registered, logins []events.ManagerEventPayload
	capture := func(into *[]events.ManagerEventPayload) events.EventHandler {
		return func(event *events.Event) error {
			var payload events.ManagerEventPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				return err
			}
			*into = append(*into, payload)
			return nil
		}
	}
	bus.Subscribe(events.EventManagerRegistered, capture(&registered))
	bus.Subscribe(events.EventManagerLogin, capture(&logins))

	manager, err := svc.Register(ctx, models.ManagerInput{
		Name:     "Priya",
		Email:    "priya@honda.in",
		Branch:   models.BranchNoida,
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Len(t, registered, 1)
	assert.Equal(t, manager.ID, registered[0].ManagerID)

	t.Run("DuplicateBranchPublishesNothing", func(t *testing.T) {
		_, err := svc.Register(ctx, models.ManagerInput{
			Name:     "Amit",
			Email:    "amit@honda.in",
			Branch:   models.BranchNoida,
			Password: "pw",
		})
		assert.ErrorIs(t, err, storage.ErrBranchTaken)
		assert.Len(t, registered, 1)
	})

	t.Run("LoginFailure", func(t *testing.T) {
		_, err := svc.Login(ctx, "priya@honda.in", "wrong")
		assert.ErrorIs(t, err, storage.ErrInvalidCredentials)
		assert.Empty(t, logins)

		session, err := svc.Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("LoginSuccess", func(t *testing.T) {
		session, err := svc.Login(ctx, "priya@honda.in", "secret123")
		require.NoError(t, err)
		assert.Equal(t, manager.ID, session.ManagerID)
		assert.Equal(t, models.BranchNoida, session.Branch)
		require.Len(t, logins, 1)
		assert.Equal(t, manager.ID, logins[0].ManagerID)

		stored, err := svc.Session(ctx)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, *session, *stored)
	})

	t.Run("Logout", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx))

		session, err := svc.Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("AvailableBranches", func(t *testing.T) {
		branches, err := svc.AvailableBranches(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{models.BranchGurgaon, models.BranchCentralDelhi}, branches)
	})
}
