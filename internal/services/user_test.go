package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/traintrackhq/traintrack-backend/internal/types"
)

func TestUpdateRoleOnlyWritableByAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	admin := f.createUser(t, "admin", types.RoleAdmin)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)

	// a supervisor may edit the profile but the role field is ignored
	updated, err := f.users.Update(ctx, supervisor, &types.User{ID: trainee.ID, Name: "renamed", Role: types.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)
	require.Equal(t, types.RoleTrainee, updated.Role)

	// self edits cannot change the role either
	updated, err = f.users.Update(ctx, trainee, &types.User{ID: trainee.ID, Role: types.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, types.RoleTrainee, updated.Role)

	rows, err := f.userRepo.GetByIDs(ctx, nil, []uuid.UUID{trainee.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, types.RoleTrainee, rows[0].Role)

	// an admin promotes
	updated, err = f.users.Update(ctx, admin, &types.User{ID: trainee.ID, Role: types.RoleSupervisor})
	require.NoError(t, err)
	require.Equal(t, types.RoleSupervisor, updated.Role)
}
