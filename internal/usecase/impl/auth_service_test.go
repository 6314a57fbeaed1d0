package impl

import (
	"context"
	"net/http"
	"testing"

	"coderr/internal/domain/entity"
	"coderr/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_Success(t *testing.T) {
	f := newFixtures(t)

	out, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Username:         "  alice ",
		Email:            " Alice@Example.COM ",
		Password:         "pw",
		RepeatedPassword: "pw",
		Type:             entity.ProfileTypeBusiness,
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", out.User.Username)
	assert.Equal(t, "alice@example.com", out.User.Email)
	assert.Equal(t, entity.ProfileTypeBusiness, out.User.Type())
	assert.Equal(t, "token-1", out.Token)
	assert.Equal(t, out.User.ID, out.User.Profile.UserID)
}

func TestAuthService_Register_DefaultsToCustomer(t *testing.T) {
	f := newFixtures(t)

	out, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "pw", RepeatedPassword: "pw",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ProfileTypeCustomer, out.User.Type())
}

func TestAuthService_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.RegisterInput
		field string
	}{
		{
			name:  "password mismatch",
			input: usecase.RegisterInput{Username: "u", Email: "u@example.com", Password: "a", RepeatedPassword: "b"},
			field: "repeated_password",
		},
		{
			name:  "missing username",
			input: usecase.RegisterInput{Username: "  ", Email: "u@example.com", Password: "a", RepeatedPassword: "a"},
			field: "username",
		},
		{
			name:  "invalid email",
			input: usecase.RegisterInput{Username: "u", Email: "not-an-email", Password: "a", RepeatedPassword: "a"},
			field: "email",
		},
		{
			name:  "invalid type",
			input: usecase.RegisterInput{Username: "u", Email: "u@example.com", Password: "a", RepeatedPassword: "a", Type: "admin"},
			field: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures(t)

			_, err := f.auth.Register(context.Background(), &tt.input)

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, httpCode(err))
			assert.Contains(t, fieldErrors(t, err), tt.field)
		})
	}
}

func TestAuthService_Register_EmailIsCaseInsensitive(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, &usecase.RegisterInput{
		Username: "first", Email: "A@x.com", Password: "pw", RepeatedPassword: "pw",
	})
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, &usecase.RegisterInput{
		Username: "second", Email: "a@x.com", Password: "pw", RepeatedPassword: "pw",
	})

	require.Error(t, err)
	assert.Equal(t, []string{"Email already exists."}, fieldErrors(t, err)["email"])
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	f := newFixtures(t)
	f.register(t, "carol", entity.ProfileTypeCustomer)

	_, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Username: "carol", Email: "other@example.com", Password: "pw", RepeatedPassword: "pw",
	})

	require.Error(t, err)
	assert.Contains(t, fieldErrors(t, err), "username")
}

func TestAuthService_Login(t *testing.T) {
	f := newFixtures(t)
	caller := f.register(t, "dave", entity.ProfileTypeCustomer)
	ctx := context.Background()

	out, err := f.auth.Login(ctx, &usecase.LoginInput{Username: "dave", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, out.User.ID)

	_, err = f.auth.Login(ctx, &usecase.LoginInput{Username: "dave", Password: "wrong"})
	require.Error(t, err)
	assert.Contains(t, fieldErrors(t, err), "non_field_errors")

	_, err = f.auth.Login(ctx, &usecase.LoginInput{Username: "nobody", Password: "secret-pass"})
	require.Error(t, err)
	assert.Contains(t, fieldErrors(t, err), "non_field_errors")

	_, err = f.auth.Login(ctx, &usecase.LoginInput{})
	require.Error(t, err)
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newFixtures(t)
	caller := f.register(t, "erin", entity.ProfileTypeBusiness)
	ctx := context.Background()

	user, err := f.auth.Authenticate(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, user.ID)
	assert.Equal(t, entity.ProfileTypeBusiness, user.Type())

	_, err = f.auth.Authenticate(ctx, "garbage")
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))

	_, err = f.auth.Authenticate(ctx, "token-99")
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))
}
