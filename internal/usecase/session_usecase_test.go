package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/usecase"
	"github.com/popcornsocial/popcorn/internal/usecase/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.SessionToReturn = &entity.Session{UserID: "user-1", AccessToken: "tok"}
	uc := usecase.NewSessionUsecase(backend, &mocks.MockValidator{}, mocks.NewMockLogger())

	sess, err := uc.SignIn(context.Background(), " Ann@Example.com ", "Password123!")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)
}

func TestSignIn_Fail(t *testing.T) {
	backend := mocks.NewMockBackend()
	uc := usecase.NewSessionUsecase(backend, &mocks.MockValidator{}, mocks.NewMockLogger())
	_, err := uc.SignIn(context.Background(), "ann@example.com", "wrong")
	assert.Error(t, err)

	_, err = uc.SignIn(context.Background(), "ann@example.com", "")
	assert.EqualError(t, err, "password is required")

	strict := usecase.NewSessionUsecase(backend, &mocks.MockValidator{ShouldFailEmail: true}, mocks.NewMockLogger())
	_, err = strict.SignIn(context.Background(), "nope", "x")
	assert.ErrorContains(t, err, "invalid email")
}

func TestRegister_NormalizesInput(t *testing.T) {
	backend := mocks.NewMockBackend()
	uc := usecase.NewSessionUsecase(backend, &mocks.MockValidator{}, mocks.NewMockLogger())

	user, err := uc.Register(context.Background(), entity.Registration{
		Email:    " Bob@Example.com",
		Password: "Secret#123",
		Username: "@Bob_R",
		Name:     " Bob ",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob_r", user.Username)
	require.Len(t, backend.SignUps, 1)
	assert.Equal(t, "bob@example.com", backend.SignUps[0].Email)
	assert.Equal(t, "Bob", backend.SignUps[0].Name)
}

func TestRegister_Rejected(t *testing.T) {
	backend := mocks.NewMockBackend()
	weak := usecase.NewSessionUsecase(backend, &mocks.MockValidator{ShouldFailPassword: true}, mocks.NewMockLogger())
	_, err := weak.Register(context.Background(), entity.Registration{Email: "bob@example.com", Password: "x", Username: "bob", Name: "Bob"})
	assert.EqualError(t, err, "password too weak")

	badHandle := usecase.NewSessionUsecase(backend, &mocks.MockValidator{ShouldFailStruct: true}, mocks.NewMockLogger())
	_, err = badHandle.Register(context.Background(), entity.Registration{Email: "bob@example.com", Password: "x", Username: "b", Name: "Bob"})
	assert.ErrorContains(t, err, "invalid profile")
	assert.Empty(t, backend.SignUps)

	backend.SignUpErr = entity.NewMutationError(entity.ErrorKindNetwork, "sign up", errors.New("email already registered"))
	uc := usecase.NewSessionUsecase(backend, &mocks.MockValidator{}, mocks.NewMockLogger())
	_, err = uc.Register(context.Background(), entity.Registration{Email: "bob@example.com", Password: "x", Username: "bob", Name: "Bob"})
	assert.ErrorContains(t, err, "email already registered")
}

func TestUpdateProfile(t *testing.T) {
	backend := mocks.NewMockBackend()
	uc := usecase.NewSessionUsecase(backend, &mocks.MockValidator{}, mocks.NewMockLogger())

	handle := " @Annie"
	user, err := uc.UpdateProfile(signedIn(), entity.ProfileUpdate{Username: &handle})
	require.NoError(t, err)
	assert.Equal(t, "annie", user.Username)

	_, err = uc.UpdateProfile(signedIn(), entity.ProfileUpdate{})
	assert.EqualError(t, err, "nothing to update")
	_, err = uc.UpdateProfile(context.Background(), entity.ProfileUpdate{Username: &handle})
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
	assert.Len(t, backend.ProfileUpdates, 1)

	backend.UpdateProfileErr = entity.ErrPermissionDenied
	_, err = uc.UpdateProfile(signedIn(), entity.ProfileUpdate{Username: &handle})
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)
}
