package mongodb

import (
	"testing"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestCheckCountable(t *testing.T) {
	assert.NoError(t, CheckCountable(entity.CountQuery{Resource: "followers", Field: "following_id", Value: "u1"}))
	assert.NoError(t, CheckCountable(entity.CountQuery{Resource: "posts"}))
	assert.ErrorIs(t, CheckCountable(entity.CountQuery{Resource: "users", Field: "email"}), contract.ErrUnsupportedCount)
	assert.ErrorIs(t, CheckCountable(entity.CountQuery{Resource: "posts", Field: "password_hash"}), contract.ErrUnsupportedCount)
}

func TestParentFilter(t *testing.T) {
	f, err := parentFilter(entity.ParentRef{Kind: entity.TargetKindCollection, ID: "c1"})
	assert.NoError(t, err)
	assert.Equal(t, "c1", f["collection_id"])

	_, err = parentFilter(entity.ParentRef{Kind: entity.TargetKindUser, ID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidParent)
}
