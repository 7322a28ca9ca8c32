package entity

import "fmt"

// Interaction is the toggle-able affordance exposed by a target.
type Interaction string

const (
	InteractionLike   Interaction = "like"
	InteractionFollow Interaction = "follow"
	InteractionSave   Interaction = "save"
)

// TargetKey identifies one interactive affordance, e.g. the like button of post 42.
type TargetKey struct {
	Kind        TargetKind
	ID          string
	Interaction Interaction
}

func (k TargetKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Kind, k.ID, k.Interaction)
}

// InteractionValue is the client-side view of a target's server state.
// Count is only meaningful for likes, RecordID only for saves.
type InteractionValue struct {
	Active   bool   `json:"active"`
	Count    int64  `json:"count"`
	RecordID string `json:"record_id,omitempty"`
}

// Toggled returns the value one unit away from v: Active flipped and, for likes,
// the counter moved by exactly one and never below zero.
func (v InteractionValue) Toggled(interaction Interaction) InteractionValue {
	next := v
	next.Active = !v.Active
	if interaction == InteractionLike {
		if next.Active {
			next.Count = v.Count + 1
		} else {
			next.Count = ClampCount(v.Count - 1)
		}
	}
	return next
}

// ClampCount floors a counter at zero.
func ClampCount(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// ToggleState is the ephemeral per-target state held by the interaction controller.
type ToggleState struct {
	Committed InteractionValue `json:"committed"`
	Pending   InteractionValue `json:"pending"`
	InFlight  bool             `json:"in_flight"`
}

// Displayed is what the user currently sees.
func (s ToggleState) Displayed() InteractionValue {
	if s.InFlight {
		return s.Pending
	}
	return s.Committed
}

// MutationKind is the state transition requested by one user gesture.
type MutationKind string

const (
	MutationLike     MutationKind = "like"
	MutationUnlike   MutationKind = "unlike"
	MutationFollow   MutationKind = "follow"
	MutationUnfollow MutationKind = "unfollow"
	MutationSave     MutationKind = "save"
	MutationUnsave   MutationKind = "unsave"
)

// MutationKindFor maps an interaction and the desired active flag to a mutation kind.
func MutationKindFor(interaction Interaction, active bool) (MutationKind, error) {
	switch interaction {
	case InteractionLike:
		if active {
			return MutationLike, nil
		}
		return MutationUnlike, nil
	case InteractionFollow:
		if active {
			return MutationFollow, nil
		}
		return MutationUnfollow, nil
	case InteractionSave:
		if active {
			return MutationSave, nil
		}
		return MutationUnsave, nil
	}
	return "", fmt.Errorf("unsupported interaction %q", interaction)
}

// Activates reports whether the mutation turns the affordance on.
func (k MutationKind) Activates() bool {
	return k == MutationLike || k == MutationFollow || k == MutationSave
}

// MutationRequest is sent once per gesture. It is never batched and never retried.
type MutationRequest struct {
	Target             TargetKey
	Kind               MutationKind
	ExpectedPriorValue InteractionValue
}
