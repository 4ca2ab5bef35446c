package mocks

import (
	"fmt"
	"sync"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/dependencies/idgen"
)

// MockIDGenerator is a mock implementation of Generator for testing
type MockIDGenerator struct {
	mu sync.Mutex

	// queued is returned in order before falling back to sequential IDs
	queued []string
	next   int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a new MockIDGenerator
func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

// NewID returns the next queued ID, or player-N once the queue is empty
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	return fmt.Sprintf("player-%d", g.next)
}

// Queue adds IDs to the result queue
func (g *MockIDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, ids...)
}

// Reset clears the queue and restarts the sequence
func (g *MockIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = nil
	g.next = 0
}
