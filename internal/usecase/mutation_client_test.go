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

func TestMutate_LikeSendsIncrementedCount(t *testing.T) {
	backend := mocks.NewMockBackend()
	client := usecase.NewMutationClient(backend)

	got, err := client.Mutate(signedIn(), entity.MutationRequest{
		Target:             postLike,
		Kind:               entity.MutationLike,
		ExpectedPriorValue: entity.InteractionValue{Count: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, backend.SetLikeCountCalls)
	assert.Equal(t, entity.InteractionValue{Active: true, Count: 11}, got)
}

func TestMutate_UnlikeClampsBeforeSending(t *testing.T) {
	for _, prior := range []int64{0, 1, 7} {
		backend := mocks.NewMockBackend()
		client := usecase.NewMutationClient(backend)

		got, err := client.Mutate(signedIn(), entity.MutationRequest{
			Target:             postLike,
			Kind:               entity.MutationUnlike,
			ExpectedPriorValue: entity.InteractionValue{Active: true, Count: prior},
		})
		require.NoError(t, err)
		require.Len(t, backend.SetLikeCountCalls, 1)
		assert.GreaterOrEqual(t, backend.SetLikeCountCalls[0], int64(0))
		assert.Equal(t, entity.ClampCount(prior-1), got.Count)
		assert.False(t, got.Active)
	}
}

func TestMutate_NegativeBackendCountIsFloored(t *testing.T) {
	backend := mocks.NewMockBackend()
	negative := int64(-3)
	backend.LikeCountOverride = &negative
	client := usecase.NewMutationClient(backend)

	got, err := client.Mutate(signedIn(), entity.MutationRequest{Target: postLike, Kind: entity.MutationUnlike})
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Count)
}

func TestMutate_UsersCannotBeLiked(t *testing.T) {
	client := usecase.NewMutationClient(mocks.NewMockBackend())
	_, err := client.Mutate(signedIn(), entity.MutationRequest{
		Target: entity.TargetKey{Kind: entity.TargetKindUser, ID: "u", Interaction: entity.InteractionLike},
		Kind:   entity.MutationLike,
	})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestMutate_RequiresSession(t *testing.T) {
	backend := mocks.NewMockBackend()
	client := usecase.NewMutationClient(backend)

	for _, kind := range []entity.MutationKind{entity.MutationLike, entity.MutationFollow, entity.MutationSave} {
		_, err := client.Mutate(context.Background(), entity.MutationRequest{Target: postLike, Kind: kind})
		assert.ErrorIs(t, err, entity.ErrAuthRequired, "kind=%s", kind)
	}
	assert.Empty(t, backend.SetLikeCountCalls)
	assert.Empty(t, backend.SetFollowingCalls)
	assert.Empty(t, backend.SetSavedCalls)
}

func TestMutate_NormalizesBackendErrors(t *testing.T) {
	cases := map[string]struct {
		backendErr error
		want       error
	}{
		"plain error":       {errors.New("eof"), entity.ErrNetwork},
		"permission denied": {entity.ErrPermissionDenied, entity.ErrPermissionDenied},
		"not found":         {entity.NewMutationError(entity.ErrorKindNotFound, "patch", nil), entity.ErrNotFound},
		"auth required":     {entity.ErrAuthRequired, entity.ErrAuthRequired},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			backend := mocks.NewMockBackend()
			backend.SetFollowingErr = tc.backendErr
			client := usecase.NewMutationClient(backend)

			_, err := client.Mutate(signedIn(), entity.MutationRequest{
				Target: entity.TargetKey{Kind: entity.TargetKindUser, ID: "u2", Interaction: entity.InteractionFollow},
				Kind:   entity.MutationFollow,
			})
			var me *entity.MutationError
			require.ErrorAs(t, err, &me)
			assert.ErrorIs(t, err, tc.want)
			assert.Len(t, backend.SetFollowingCalls, 1, "never retried")
		})
	}
}

func TestMutate_SaveReturnsRecordID(t *testing.T) {
	backend := mocks.NewMockBackend()
	client := usecase.NewMutationClient(backend)
	key := entity.TargetKey{Kind: entity.TargetKindCollection, ID: "c1", Interaction: entity.InteractionSave}

	got, err := client.Mutate(signedIn(), entity.MutationRequest{Target: key, Kind: entity.MutationSave})
	require.NoError(t, err)
	assert.Equal(t, "saved-user-1-c1", got.RecordID)

	got, err = client.Mutate(signedIn(), entity.MutationRequest{Target: key, Kind: entity.MutationUnsave, ExpectedPriorValue: got})
	require.NoError(t, err)
	assert.Equal(t, entity.InteractionValue{}, got)
}
