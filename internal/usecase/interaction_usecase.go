package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

// ErrTargetNotMounted is returned when toggling a target that was never mounted.
var ErrTargetNotMounted = errors.New("target not mounted")

// ChangeListener is called with the value to display whenever a target changes.
type ChangeListener func(key entity.TargetKey, displayed entity.InteractionValue)

// AuthRequiredHandler is called when a mutation fails because the session is missing or expired.
type AuthRequiredHandler func(key entity.TargetKey)

// InteractionUsecase is the optimistic interaction controller for likes, follows and saves.
// Each mounted target carries its own toggle state; at most one mutation per target is in flight.
type InteractionUsecase struct {
	client  usecasecontract.IMutationClient
	logger  usecasecontract.IAppLogger
	metrics contract.IInteractionMetrics

	mu      sync.Mutex
	targets map[entity.TargetKey]*entity.ToggleState

	onChange       ChangeListener
	onAuthRequired AuthRequiredHandler
}

var _ usecasecontract.IInteractionUseCase = (*InteractionUsecase)(nil)

// NewInteractionUsecase creates the controller. metrics may be nil.
func NewInteractionUsecase(client usecasecontract.IMutationClient, logger usecasecontract.IAppLogger, metrics contract.IInteractionMetrics) *InteractionUsecase {
	return &InteractionUsecase{
		client:  client,
		logger:  logger,
		metrics: metrics,
		targets: make(map[entity.TargetKey]*entity.ToggleState),
	}
}

// OnChange registers the listener used to render state changes.
func (u *InteractionUsecase) OnChange(fn ChangeListener) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onChange = fn
}

// OnAuthRequired registers the re-authentication prompt.
func (u *InteractionUsecase) OnAuthRequired(fn AuthRequiredHandler) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onAuthRequired = fn
}

// Mount starts tracking key in the settled state with initial as the committed value.
// Mounting an already mounted key resets it.
func (u *InteractionUsecase) Mount(key entity.TargetKey, initial entity.InteractionValue) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.targets[key] = &entity.ToggleState{Committed: initial, Pending: initial}
}

// Unmount forgets key. A response still in flight for it is dropped.
func (u *InteractionUsecase) Unmount(key entity.TargetKey) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.targets, key)
}

// State returns a copy of key's toggle state.
func (u *InteractionUsecase) State(key entity.TargetKey) (entity.ToggleState, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	st, ok := u.targets[key]
	if !ok {
		return entity.ToggleState{}, false
	}
	return *st, true
}

// Displayed returns the value currently shown for key.
func (u *InteractionUsecase) Displayed(key entity.TargetKey) (entity.InteractionValue, bool) {
	st, ok := u.State(key)
	return st.Displayed(), ok
}

// Toggle flips key optimistically and reconciles with the backend.
//
// The new value is applied before the network call. On success the backend value
// replaces it; on failure the previous value is restored and the error returned.
// A toggle while another one is in flight for the same key is ignored.
func (u *InteractionUsecase) Toggle(ctx context.Context, key entity.TargetKey) (usecasecontract.ToggleResult, error) {
	u.mu.Lock()
	st, ok := u.targets[key]
	if !ok {
		u.mu.Unlock()
		return usecasecontract.ToggleResult{}, ErrTargetNotMounted
	}
	if st.InFlight {
		snapshot := *st
		u.mu.Unlock()
		u.logger.Debugf("toggle ignored for %s: mutation in flight", key)
		u.recordIgnored(key)
		return usecasecontract.ToggleResult{State: snapshot, Ignored: true}, nil
	}

	prior := st.Committed
	next := prior.Toggled(key.Interaction)
	kind, err := entity.MutationKindFor(key.Interaction, next.Active)
	if err != nil {
		u.mu.Unlock()
		return usecasecontract.ToggleResult{}, err
	}
	st.Pending = next
	st.InFlight = true
	listener := u.onChange
	u.mu.Unlock()

	u.recordApplied(key)
	if listener != nil {
		listener(key, next)
	}

	value, mutateErr := u.client.Mutate(ctx, entity.MutationRequest{
		Target:             key,
		Kind:               kind,
		ExpectedPriorValue: prior,
	})

	u.mu.Lock()
	cur, still := u.targets[key]
	if !still || cur != st {
		u.mu.Unlock()
		u.logger.Debugf("dropping %s response for unmounted target %s", kind, key)
		return usecasecontract.ToggleResult{Dropped: true}, nil
	}
	if mutateErr != nil {
		st.Pending = st.Committed
		st.InFlight = false
		snapshot := *st
		listener = u.onChange
		authHook := u.onAuthRequired
		u.mu.Unlock()

		kindOf := entity.ErrorKindOf(mutateErr)
		u.logger.Warnf("%s on %s rolled back: %v", kind, key, mutateErr)
		u.recordRolledBack(key, kindOf)
		if listener != nil {
			listener(key, snapshot.Committed)
		}
		if kindOf == entity.ErrorKindAuthRequired && authHook != nil {
			authHook(key)
		}
		return usecasecontract.ToggleResult{State: snapshot}, mutateErr
	}

	st.Committed = value
	st.Pending = value
	st.InFlight = false
	snapshot := *st
	listener = u.onChange
	u.mu.Unlock()

	u.recordReconciled(key)
	if listener != nil && value != next {
		listener(key, value)
	}
	return usecasecontract.ToggleResult{State: snapshot}, nil
}

func (u *InteractionUsecase) recordApplied(key entity.TargetKey) {
	if u.metrics != nil {
		u.metrics.ToggleApplied(string(key.Interaction))
	}
}

func (u *InteractionUsecase) recordIgnored(key entity.TargetKey) {
	if u.metrics != nil {
		u.metrics.ToggleIgnored(string(key.Interaction))
	}
}

func (u *InteractionUsecase) recordReconciled(key entity.TargetKey) {
	if u.metrics != nil {
		u.metrics.ToggleReconciled(string(key.Interaction))
	}
}

func (u *InteractionUsecase) recordRolledBack(key entity.TargetKey, kind entity.MutationErrorKind) {
	if u.metrics != nil {
		u.metrics.ToggleRolledBack(string(key.Interaction), string(kind))
	}
}
