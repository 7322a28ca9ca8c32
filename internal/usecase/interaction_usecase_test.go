package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/usecase"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
	"github.com/popcornsocial/popcorn/internal/usecase/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var postLike = entity.TargetKey{Kind: entity.TargetKindPost, ID: "42", Interaction: entity.InteractionLike}

func signedIn() context.Context {
	return entity.ContextWithSession(context.Background(), entity.Session{
		UserID:      "user-1",
		Username:    "ann",
		Name:        "Ann",
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
}

func newController(backend *mocks.MockBackend) (*usecase.InteractionUsecase, *mocks.MockMetrics) {
	metrics := mocks.NewMockMetrics()
	return usecase.NewInteractionUsecase(usecase.NewMutationClient(backend), mocks.NewMockLogger(), metrics), metrics
}

type toggleOutcome struct {
	result usecasecontract.ToggleResult
	err    error
}

func toggleAsync(ctx context.Context, c *usecase.InteractionUsecase, key entity.TargetKey) <-chan toggleOutcome {
	done := make(chan toggleOutcome, 1)
	go func() {
		res, err := c.Toggle(ctx, key)
		done <- toggleOutcome{res, err}
	}()
	return done
}

func gatedBackend() *mocks.MockBackend {
	backend := mocks.NewMockBackend()
	backend.Gate = make(chan struct{})
	backend.Entered = make(chan struct{})
	return backend
}

func TestToggle_LikeAppliesOptimisticallyThenReconciles(t *testing.T) {
	backend := gatedBackend()
	c, metrics := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Active: false, Count: 10})

	done := toggleAsync(signedIn(), c, postLike)
	<-backend.Entered

	st, ok := c.State(postLike)
	require.True(t, ok)
	assert.True(t, st.InFlight)
	assert.Equal(t, entity.InteractionValue{Active: true, Count: 11}, st.Displayed())
	assert.Equal(t, entity.InteractionValue{Active: false, Count: 10}, st.Committed)

	backend.Gate <- struct{}{}
	out := <-done
	require.NoError(t, out.err)
	assert.False(t, out.result.State.InFlight)
	assert.Equal(t, entity.InteractionValue{Active: true, Count: 11}, out.result.State.Committed)
	assert.Equal(t, out.result.State.Committed, out.result.State.Pending)
	assert.Equal(t, []int64{11}, backend.SetLikeCountCalls)
	assert.Equal(t, 1, metrics.Applied)
	assert.Equal(t, 1, metrics.Reconciled)
}

func TestToggle_BackendValueOverridesOptimisticGuess(t *testing.T) {
	backend := mocks.NewMockBackend()
	authoritative := int64(15)
	backend.LikeCountOverride = &authoritative
	c, _ := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Active: false, Count: 10})

	res, err := c.Toggle(signedIn(), postLike)
	require.NoError(t, err)
	assert.Equal(t, entity.InteractionValue{Active: true, Count: 15}, res.State.Committed)

	shown, _ := c.Displayed(postLike)
	assert.Equal(t, int64(15), shown.Count)
}

func TestToggle_FailureRollsBackExactly(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.SetLikeCountErr = entity.NewMutationError(entity.ErrorKindNetwork, "patch", errors.New("timeout"))
	c, metrics := newController(backend)
	start := entity.InteractionValue{Active: false, Count: 10}
	c.Mount(postLike, start)

	res, err := c.Toggle(signedIn(), postLike)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNetwork)
	assert.False(t, res.State.InFlight)
	assert.Equal(t, start, res.State.Committed)

	shown, _ := c.Displayed(postLike)
	assert.Equal(t, start, shown)
	assert.Equal(t, 1, metrics.RolledBack[string(entity.ErrorKindNetwork)])
}

func TestToggle_UnknownBackendErrorIsNetworkError(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.SetLikeCountErr = errors.New("dial tcp: connection refused")
	c, _ := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Count: 3})

	_, err := c.Toggle(signedIn(), postLike)
	assert.ErrorIs(t, err, entity.ErrNetwork)
}

func TestToggle_RapidClicksWhileInFlightAreIgnored(t *testing.T) {
	backend := gatedBackend()
	c, metrics := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Active: false, Count: 10})
	ctx := signedIn()

	done := toggleAsync(ctx, c, postLike)
	<-backend.Entered

	for i := 0; i < 3; i++ {
		res, err := c.Toggle(ctx, postLike)
		require.NoError(t, err)
		assert.True(t, res.Ignored, "click %d should be ignored", i+2)
		assert.Equal(t, entity.InteractionValue{Active: true, Count: 11}, res.State.Displayed())
	}

	backend.Gate <- struct{}{}
	out := <-done
	require.NoError(t, out.err)

	assert.Len(t, backend.SetLikeCountCalls, 1)
	assert.Equal(t, 3, metrics.Ignored)
	assert.Equal(t, entity.InteractionValue{Active: true, Count: 11}, out.result.State.Committed)

	// once settled, the next click is a real toggle again
	backend.Gate = nil
	res, err := c.Toggle(ctx, postLike)
	require.NoError(t, err)
	assert.False(t, res.Ignored)
	assert.Equal(t, entity.InteractionValue{Active: false, Count: 10}, res.State.Committed)
	assert.Len(t, backend.SetLikeCountCalls, 2)
}

func TestToggle_UnlikeAtZeroIsClamped(t *testing.T) {
	backend := mocks.NewMockBackend()
	c, _ := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Active: true, Count: 0})

	res, err := c.Toggle(signedIn(), postLike)
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, backend.SetLikeCountCalls)
	assert.Equal(t, entity.InteractionValue{Active: false, Count: 0}, res.State.Committed)
}

func TestToggle_NoSessionRollsBackWithoutNetworkCall(t *testing.T) {
	backend := mocks.NewMockBackend()
	c, _ := newController(backend)
	start := entity.InteractionValue{Active: false, Count: 4}
	c.Mount(postLike, start)

	var prompted []entity.TargetKey
	c.OnAuthRequired(func(key entity.TargetKey) { prompted = append(prompted, key) })

	_, err := c.Toggle(context.Background(), postLike)
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
	assert.Empty(t, backend.SetLikeCountCalls)
	assert.Equal(t, []entity.TargetKey{postLike}, prompted)

	shown, _ := c.Displayed(postLike)
	assert.Equal(t, start, shown)
}

func TestToggle_PermissionDeniedDoesNotPromptReauth(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.SetLikeCountErr = entity.ErrPermissionDenied
	c, _ := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Count: 1})

	prompted := false
	c.OnAuthRequired(func(entity.TargetKey) { prompted = true })

	_, err := c.Toggle(signedIn(), postLike)
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)
	assert.False(t, prompted)
}

func TestToggle_ResponseForUnmountedTargetIsDropped(t *testing.T) {
	backend := gatedBackend()
	c, _ := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Count: 1})

	done := toggleAsync(signedIn(), c, postLike)
	<-backend.Entered
	c.Unmount(postLike)
	backend.Gate <- struct{}{}

	out := <-done
	require.NoError(t, out.err)
	assert.True(t, out.result.Dropped)
	_, ok := c.State(postLike)
	assert.False(t, ok)
}

func TestToggle_FailureForRemountedTargetDoesNotTouchNewState(t *testing.T) {
	backend := gatedBackend()
	backend.SetLikeCountErr = entity.ErrNotFound
	c, _ := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Count: 1})

	done := toggleAsync(signedIn(), c, postLike)
	<-backend.Entered
	c.Unmount(postLike)
	c.Mount(postLike, entity.InteractionValue{Count: 7})
	backend.Gate <- struct{}{}

	out := <-done
	require.NoError(t, out.err)
	assert.True(t, out.result.Dropped)
	st, ok := c.State(postLike)
	require.True(t, ok)
	assert.Equal(t, int64(7), st.Committed.Count)
}

func TestToggle_NotMounted(t *testing.T) {
	c, _ := newController(mocks.NewMockBackend())
	_, err := c.Toggle(signedIn(), postLike)
	assert.ErrorIs(t, err, usecase.ErrTargetNotMounted)
}

func TestToggle_ListenerSeesOptimisticValueBeforeNetwork(t *testing.T) {
	backend := gatedBackend()
	c, _ := newController(backend)
	c.Mount(postLike, entity.InteractionValue{Active: false, Count: 10})

	var mu sync.Mutex
	var seen []entity.InteractionValue
	c.OnChange(func(_ entity.TargetKey, v entity.InteractionValue) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, v)
	})

	done := toggleAsync(signedIn(), c, postLike)
	<-backend.Entered
	mu.Lock()
	assert.Equal(t, []entity.InteractionValue{{Active: true, Count: 11}}, seen)
	mu.Unlock()

	backend.SetLikeCountErr = entity.ErrNetwork
	backend.Gate <- struct{}{}
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []entity.InteractionValue{{Active: true, Count: 11}, {Active: false, Count: 10}}, seen)
}

func TestToggle_FollowAndUnfollow(t *testing.T) {
	backend := mocks.NewMockBackend()
	c, _ := newController(backend)
	key := entity.TargetKey{Kind: entity.TargetKindUser, ID: "user-2", Interaction: entity.InteractionFollow}
	c.Mount(key, entity.InteractionValue{Active: false})
	ctx := signedIn()

	res, err := c.Toggle(ctx, key)
	require.NoError(t, err)
	assert.True(t, res.State.Committed.Active)

	res, err = c.Toggle(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.State.Committed.Active)
	assert.Equal(t, []bool{true, false}, backend.SetFollowingCalls)
}

func TestToggle_FollowFailureReverts(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.SetFollowingErr = entity.ErrNetwork
	c, _ := newController(backend)
	key := entity.TargetKey{Kind: entity.TargetKindUser, ID: "user-2", Interaction: entity.InteractionFollow}
	c.Mount(key, entity.InteractionValue{Active: false})

	_, err := c.Toggle(signedIn(), key)
	assert.Error(t, err)
	shown, _ := c.Displayed(key)
	assert.False(t, shown.Active)
}

func TestToggle_SaveKeepsRecordID(t *testing.T) {
	backend := mocks.NewMockBackend()
	c, _ := newController(backend)
	key := entity.TargetKey{Kind: entity.TargetKindCollection, ID: "col-9", Interaction: entity.InteractionSave}
	c.Mount(key, entity.InteractionValue{Active: false})
	ctx := signedIn()

	res, err := c.Toggle(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, entity.InteractionValue{Active: true, RecordID: "saved-user-1-col-9"}, res.State.Committed)

	res, err = c.Toggle(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, entity.InteractionValue{Active: false}, res.State.Committed)
}

func TestToggle_DifferentTargetsAreIndependent(t *testing.T) {
	backend := gatedBackend()
	c, _ := newController(backend)
	other := entity.TargetKey{Kind: entity.TargetKindCollection, ID: "7", Interaction: entity.InteractionLike}
	c.Mount(postLike, entity.InteractionValue{Count: 1})
	c.Mount(other, entity.InteractionValue{Count: 5})
	ctx := signedIn()

	first := toggleAsync(ctx, c, postLike)
	<-backend.Entered
	second := toggleAsync(ctx, c, other)
	<-backend.Entered

	a, _ := c.State(postLike)
	b, _ := c.State(other)
	assert.True(t, a.InFlight)
	assert.True(t, b.InFlight)

	backend.Gate <- struct{}{}
	backend.Gate <- struct{}{}
	require.NoError(t, (<-first).err)
	require.NoError(t, (<-second).err)

	a, _ = c.State(postLike)
	b, _ = c.State(other)
	assert.Equal(t, int64(2), a.Committed.Count)
	assert.Equal(t, int64(6), b.Committed.Count)
}
