package usecasecontract

import (
	"context"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// ToggleResult describes how a toggle call settled.
type ToggleResult struct {
	State   entity.ToggleState
	Ignored bool // another mutation for the target was in flight
	Dropped bool // the target was unmounted before the response arrived
}

// IInteractionUseCase is the optimistic interaction controller.
type IInteractionUseCase interface {
	Mount(key entity.TargetKey, initial entity.InteractionValue)
	Unmount(key entity.TargetKey)
	State(key entity.TargetKey) (entity.ToggleState, bool)
	Toggle(ctx context.Context, key entity.TargetKey) (ToggleResult, error)
}
