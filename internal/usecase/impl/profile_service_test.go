package impl

import (
	"context"
	"net/http"
	"testing"
	"time"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"
	"coderr/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_GetProfile(t *testing.T) {
	f := newFixtures(t)
	caller := f.register(t, "alice", entity.ProfileTypeCustomer)
	ctx := context.Background()

	user, err := f.profiles.GetProfile(ctx, caller, caller.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = f.profiles.GetProfile(ctx, nil, caller.UserID)
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))

	_, err = f.profiles.GetProfile(ctx, caller, 404)
	assert.Equal(t, http.StatusNotFound, httpCode(err))
}

func TestProfileService_UpdateProfile_Fields(t *testing.T) {
	f := newFixtures(t)
	caller := f.register(t, "biz", entity.ProfileTypeBusiness)

	user, err := f.profiles.UpdateProfile(context.Background(), caller, caller.UserID, &usecase.UpdateProfileInput{
		FirstName:    ptr("Max"),
		Email:        ptr("  NEW@Example.com "),
		Location:     ptr("Berlin"),
		Tel:          ptr("123456"),
		WorkingHours: ptr("9-17"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Max", user.FirstName)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Berlin", *user.Profile.Location)
	assert.Equal(t, entity.ProfileTypeBusiness, user.Type())
	assert.Nil(t, user.Profile.Description)
}

func TestProfileService_UpdateProfile_PermissionOrder(t *testing.T) {
	f := newFixtures(t)
	owner := f.register(t, "owner", entity.ProfileTypeCustomer)
	other := f.register(t, "other", entity.ProfileTypeCustomer)
	ctx := context.Background()
	input := &usecase.UpdateProfileInput{Tel: ptr("1")}

	_, err := f.profiles.UpdateProfile(ctx, nil, owner.UserID, input)
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))

	_, err = f.profiles.UpdateProfile(ctx, other, 999, input)
	assert.Equal(t, http.StatusNotFound, httpCode(err))

	_, err = f.profiles.UpdateProfile(ctx, other, owner.UserID, input)
	assert.Equal(t, http.StatusForbidden, httpCode(err))
}

func TestProfileService_UpdateProfile_EmailTaken(t *testing.T) {
	f := newFixtures(t)
	f.register(t, "first", entity.ProfileTypeCustomer)
	second := f.register(t, "second", entity.ProfileTypeCustomer)

	_, err := f.profiles.UpdateProfile(context.Background(), second, second.UserID, &usecase.UpdateProfileInput{
		Email: ptr("FIRST@example.com"),
	})

	require.Error(t, err)
	assert.Equal(t, []string{"This email is already taken."}, fieldErrors(t, err)["email"])
}

func TestProfileService_UpdateProfile_KeepsOwnEmail(t *testing.T) {
	f := newFixtures(t)
	caller := f.register(t, "same", entity.ProfileTypeCustomer)

	_, err := f.profiles.UpdateProfile(context.Background(), caller, caller.UserID, &usecase.UpdateProfileInput{
		Email: ptr("SAME@example.com"),
	})

	assert.NoError(t, err)
}

func TestProfileService_UpdateProfile_FieldLimits(t *testing.T) {
	f := newFixtures(t)
	caller := f.register(t, "limits", entity.ProfileTypeCustomer)

	_, err := f.profiles.UpdateProfile(context.Background(), caller, caller.UserID, &usecase.UpdateProfileInput{
		Tel: ptr("012345678901234567890"),
	})

	require.Error(t, err)
	assert.Contains(t, fieldErrors(t, err), "tel")
}

func TestProfileService_UpdateProfile_FileLifecycle(t *testing.T) {
	f := newFixtures(t)
	caller := f.register(t, "pics", entity.ProfileTypeCustomer)
	ctx := context.Background()

	user, err := f.profiles.UpdateProfile(ctx, caller, caller.UserID, &usecase.UpdateProfileInput{File: upload("me.png", "one")})
	require.NoError(t, err)
	require.True(t, user.Profile.HasFile())
	require.NotNil(t, user.Profile.UploadedAt)
	first := *user.Profile.File
	assert.True(t, f.storage.Has(first))

	user, err = f.profiles.UpdateProfile(ctx, caller, caller.UserID, &usecase.UpdateProfileInput{File: upload("me2.png", "two")})
	require.NoError(t, err)
	second := *user.Profile.File
	assert.NotEqual(t, first, second)
	assert.False(t, f.storage.Has(first))
	assert.True(t, f.storage.Has(second))

	user, err = f.profiles.UpdateProfile(ctx, caller, caller.UserID, &usecase.UpdateProfileInput{ClearFile: true})
	require.NoError(t, err)
	assert.False(t, user.Profile.HasFile())
	assert.Nil(t, user.Profile.UploadedAt)
	assert.Equal(t, 0, f.storage.Len())
}

func TestProfileService_UpdateProfile_FailedSaveRemovesUpload(t *testing.T) {
	f := newFixtures(t)
	caller := f.register(t, "rollback", entity.ProfileTypeCustomer)
	f.store.FailNext("UserRepository.Update", assert.AnError)

	_, err := f.profiles.UpdateProfile(context.Background(), caller, caller.UserID, &usecase.UpdateProfileInput{File: upload("x.png", "x")})

	require.Error(t, err)
	assert.Equal(t, 0, f.storage.Len())
}

func TestProfileService_ListProfiles(t *testing.T) {
	f := newFixtures(t)
	customer := f.register(t, "c1", entity.ProfileTypeCustomer)
	f.register(t, "b1", entity.ProfileTypeBusiness)
	f.register(t, "b2", entity.ProfileTypeBusiness)
	ctx := context.Background()

	page, err := f.profiles.ListProfiles(ctx, customer, entity.ProfileTypeBusiness, repository.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b1", page.Items[0].Username)

	_, err = f.profiles.ListProfiles(ctx, nil, entity.ProfileTypeBusiness, repository.Unpaged())
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))
}

func TestApplyProfileInput_StampsUpload(t *testing.T) {
	user := &entity.User{Profile: &entity.Profile{}}
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	applyProfileInput(user, &usecase.UpdateProfileInput{Location: ptr("")}, "profile/a.png", now)

	assert.Nil(t, user.Profile.Location)
	assert.Equal(t, "profile/a.png", *user.Profile.File)
	assert.Equal(t, now, *user.Profile.UploadedAt)
}
