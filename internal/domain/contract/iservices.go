package contract

import (
	"context"
	"time"
)

// IHasher hashes and checks passwords.
type IHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordHash(password, hashedPassword string) error
}

// IUUIDGenerator produces record ids.
type IUUIDGenerator interface {
	NewUUID() string
}

// ITokenIssuer signs and verifies access tokens of the mock backend.
type ITokenIssuer interface {
	GenerateAccessToken(userID, username string) (string, time.Time, error)
	VerifyAccessToken(token string) (userID string, err error)
}

// IListCache caches list responses of the mock backend.
type IListCache interface {
	GetList(ctx context.Context, key string, dest interface{}) (bool, error)
	SetList(ctx context.Context, key string, value interface{}) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// IInteractionMetrics records controller outcomes.
type IInteractionMetrics interface {
	ToggleApplied(interaction string)
	ToggleIgnored(interaction string)
	ToggleReconciled(interaction string)
	ToggleRolledBack(interaction, errorKind string)
}
