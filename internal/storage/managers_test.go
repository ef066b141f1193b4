package storage

import (
	"context"
	"testing"

	"drivedesk/internal/models"
	"drivedesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func managerInput(name, email, branch string) models.ManagerInput {
	return models.ManagerInput{
		Name:     name,
		Email:    email,
		Branch:   branch,
		Password: "secret123",
	}
}

func TestManagerRegister(t *testing.T) {
	ctx := context.Background()
	dir := NewManagerDirectory(repository.NewMemoryKV(), DefaultKeys())

	t.Run("Success", func(t *testing.T) {
		manager, err := dir.Register(ctx, managerInput("Priya", "priya@honda.in", models.BranchNoida))
		require.NoError(t, err)
		assert.NotEmpty(t, manager.ID)
		assert.Equal(t, models.BranchNoida, manager.Branch)
		assert.False(t, manager.CreatedAt.IsZero())
	})

	t.Run("BranchTaken", func(t *testing.T) {
		_, err := dir.Register(ctx, managerInput("Amit", "amit@honda.in", models.BranchNoida))
		assert.ErrorIs(t, err, ErrBranchTaken)
	})

	t.Run("BranchCheckedBeforeEmail", func(t *testing.T) {
		// Same email as an existing manager AND an occupied branch: the
		// branch conflict wins.
		_, err := dir.Register(ctx, managerInput("Priya", "priya@honda.in", models.BranchNoida))
		assert.ErrorIs(t, err, ErrBranchTaken)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		_, err := dir.Register(ctx, managerInput("Priya", "priya@honda.in", models.BranchGurgaon))
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("UnknownBranch", func(t *testing.T) {
		_, err := dir.Register(ctx, managerInput("Neha", "neha@honda.in", "Mumbai"))
		assert.ErrorIs(t, err, ErrUnknownBranch)
	})

	t.Run("SecondBranch", func(t *testing.T) {
		manager, err := dir.Register(ctx, managerInput("Amit", "amit@honda.in", models.BranchGurgaon))
		require.NoError(t, err)
		assert.Equal(t, models.BranchGurgaon, manager.Branch)

		managers, err := dir.List(ctx)
		require.NoError(t, err)
		assert.Len(t, managers, 2)
	})

	t.Run("FailedRegistrationWritesNothing", func(t *testing.T) {
		before, err := dir.List(ctx)
		require.NoError(t, err)

		_, err = dir.Register(ctx, managerInput("Dup", "priya@honda.in", models.BranchCentralDelhi))
		require.ErrorIs(t, err, ErrEmailTaken)

		after, err := dir.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestManagerAuthentication(t *testing.T) {
	ctx := context.Background()
	dir := NewManagerDirectory(repository.NewMemoryKV(), DefaultKeys())

	_, err := dir.Register(ctx, managerInput("Priya", "priya@honda.in", models.BranchNoida))
	require.NoError(t, err)

	t.Run("NoSessionInitially", func(t *testing.T) {
		session, err := dir.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := dir.Authenticate(ctx, "priya@honda.in", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := dir.Authenticate(ctx, "nobody@honda.in", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("CaseSensitivePassword", func(t *testing.T) {
		_, err := dir.Authenticate(ctx, "priya@honda.in", "SECRET123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("SuccessPersistsSession", func(t *testing.T) {
		session, err := dir.Authenticate(ctx, "priya@honda.in", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "Priya", session.Name)
		assert.Equal(t, models.BranchNoida, session.Branch)
		assert.Equal(t, "priya@honda.in", session.Email)

		stored, err := dir.CurrentSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, *session, *stored)
	})

	t.Run("EndSession", func(t *testing.T) {
		require.NoError(t, dir.EndSession(ctx))

		session, err := dir.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)

		// идемпотентно
		require.NoError(t, dir.EndSession(ctx))
	})
}

func TestAvailableBranches(t *testing.T) {
	ctx := context.Background()
	dir := NewManagerDirectory(repository.NewMemoryKV(), DefaultKeys())

	branches, err := dir.AvailableBranches(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Branches, branches)

	_, err = dir.Register(ctx, managerInput("Amit", "amit@honda.in", models.BranchGurgaon))
	require.NoError(t, err)

	branches, err = dir.AvailableBranches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{models.BranchNoida, models.BranchCentralDelhi}, branches)

	_, err = dir.Register(ctx, managerInput("Priya", "priya@honda.in", models.BranchNoida))
	require.NoError(t, err)
	_, err = dir.Register(ctx, managerInput("Neha", "neha@honda.in", models.BranchCentralDelhi))
	require.NoError(t, err)

	branches, err = dir.AvailableBranches(ctx)
	require.NoError(t, err)
	assert.Empty(t, branches)
}

func TestManagerDirectoryUnavailable(t *testing.T) {
	ctx := context.Background()
	dir := NewManagerDirectory(nil, DefaultKeys())

	managers, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, managers)

	session, err := dir.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, dir.EndSession(ctx))

	_, err = dir.Register(ctx, managerInput("Priya", "priya@honda.in", models.BranchNoida))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
