// Package uuid provides UUID-based identifier generation.
package uuid

import "github.com/google/uuid"

// Generator issues random UUID strings.
type Generator struct{}

// New returns a Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a random UUIDv4 string.
func (g *Generator) NewID() string {
	return uuid.NewString()
}
