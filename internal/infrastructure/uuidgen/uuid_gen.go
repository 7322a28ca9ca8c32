package uuidgen

import (
	"github.com/google/uuid"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
)

// Generator hands out time-ordered record ids, so ids sort in insertion order.
type Generator struct{}

// Ensure Generator implements the contract.IUUIDGenerator interface
var _ contract.IUUIDGenerator = (*Generator)(nil)

// NewGenerator creates a new UUID generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// NewUUID generates a version 7 UUID, falling back to a random one.
func (g *Generator) NewUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
