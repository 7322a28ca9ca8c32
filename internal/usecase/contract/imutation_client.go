package usecasecontract

import (
	"context"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// IMutationClient turns one state transition into exactly one backend exchange.
type IMutationClient interface {
	Mutate(ctx context.Context, req entity.MutationRequest) (entity.InteractionValue, error)
}
