package usecase

import (
	"context"
	"fmt"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

// MutationClient translates one toggle intent into a single backend call.
// It holds no UI state and never retries.
type MutationClient struct {
	backend contract.ISocialBackend
}

var _ usecasecontract.IMutationClient = (*MutationClient)(nil)

// NewMutationClient creates a MutationClient over the given backend capabilities.
func NewMutationClient(backend contract.ISocialBackend) *MutationClient {
	return &MutationClient{backend: backend}
}

// Mutate performs req and returns the authoritative value reported by the backend.
// Every failure is a *entity.MutationError.
func (c *MutationClient) Mutate(ctx context.Context, req entity.MutationRequest) (entity.InteractionValue, error) {
	op := fmt.Sprintf("%s %s %s", req.Kind, req.Target.Kind, req.Target.ID)

	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return entity.InteractionValue{}, err
	}

	switch req.Kind {
	case entity.MutationLike, entity.MutationUnlike:
		return c.setLike(ctx, op, req)
	case entity.MutationFollow, entity.MutationUnfollow:
		following := req.Kind == entity.MutationFollow
		if err := c.backend.SetFollowing(ctx, sess.UserID, req.Target.ID, following); err != nil {
			return entity.InteractionValue{}, entity.AsMutationError(op, err)
		}
		return entity.InteractionValue{Active: following}, nil
	case entity.MutationSave, entity.MutationUnsave:
		saved := req.Kind == entity.MutationSave
		recordID, err := c.backend.SetSaved(ctx, sess.UserID, req.Target.ID, saved)
		if err != nil {
			return entity.InteractionValue{}, entity.AsMutationError(op, err)
		}
		if !saved {
			recordID = ""
		}
		return entity.InteractionValue{Active: saved, RecordID: recordID}, nil
	}
	return entity.InteractionValue{}, entity.NewMutationError(entity.ErrorKindNotFound, op, fmt.Errorf("unknown mutation kind %q", req.Kind))
}

func (c *MutationClient) setLike(ctx context.Context, op string, req entity.MutationRequest) (entity.InteractionValue, error) {
	if req.Target.Kind != entity.TargetKindPost && req.Target.Kind != entity.TargetKindCollection {
		return entity.InteractionValue{}, entity.NewMutationError(entity.ErrorKindNotFound, op, fmt.Errorf("%s targets cannot be liked", req.Target.Kind))
	}

	liked := req.Kind == entity.MutationLike
	next := req.ExpectedPriorValue.Count + 1
	if !liked {
		next = entity.ClampCount(req.ExpectedPriorValue.Count - 1)
	}

	count, err := c.backend.SetLikeCount(ctx, req.Target.Kind, req.Target.ID, next)
	if err != nil {
		return entity.InteractionValue{}, entity.AsMutationError(op, err)
	}
	return entity.InteractionValue{Active: liked, Count: entity.ClampCount(count)}, nil
}
