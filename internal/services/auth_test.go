package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traintrackhq/traintrack-backend/internal/requestdata"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

func TestAuthRoundtrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := &types.User{
		Name:     "Dana",
		Email:    "Dana@Example.com",
		Password: "s3cret-pass",
	}
	require.NoError(t, f.auth.RegisterUser(ctx, user))
	require.Equal(t, "dana@example.com", user.Email)
	require.NotEqual(t, "s3cret-pass", user.Password)

	// duplicate email
	require.Error(t, f.auth.RegisterUser(ctx, &types.User{
		Name: "Dana Two", Email: "dana@example.com", Password: "x-pass-123",
	}))

	_, _, err := f.auth.LoginUser(ctx, "dana@example.com", "wrong")
	require.Error(t, err)

	access, refresh, err := f.auth.LoginUser(ctx, "dana@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	authedCtx, err := f.auth.SetContextFromToken(ctx, access)
	require.NoError(t, err)
	rd := requestdata.GetRequestData(authedCtx)
	require.NotNil(t, rd)
	require.Equal(t, user.ID, rd.UserID)
	require.NotNil(t, rd.User)

	// rotation invalidates the old refresh token
	newAccess, newRefresh, err := f.auth.RefreshUser(ctx, refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEqual(t, refresh, newRefresh)
	_, _, err = f.auth.RefreshUser(ctx, refresh)
	require.Error(t, err)

	require.NoError(t, f.auth.LogoutUser(authedCtx))
	_, _, err = f.auth.RefreshUser(ctx, newRefresh)
	require.Error(t, err)
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.SetContextFromToken(context.Background(), "not-a-jwt")
	require.Error(t, err)
}

func TestSupervisorScopeLoadedWithToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sup := &types.User{
		Name:     "Supervisor",
		Email:    "sup@example.com",
		Password: "s3cret-pass",
		Role:     types.RoleSupervisor,
	}
	require.NoError(t, f.auth.RegisterUser(ctx, sup))
	course := f.createCourse(t, "Go Backend", sup)
	require.NoError(t, f.courseRepo.AddSupervisor(ctx, nil, course.ID, sup.ID))

	access, _, err := f.auth.LoginUser(ctx, "sup@example.com", "s3cret-pass")
	require.NoError(t, err)
	authedCtx, err := f.auth.SetContextFromToken(ctx, access)
	require.NoError(t, err)

	rd := requestdata.GetRequestData(authedCtx)
	require.NotNil(t, rd)
	require.True(t, rd.User.Supervises(course.ID))
}
