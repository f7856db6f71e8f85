package testfixtures

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// fixtureNamespace seeds deterministic UUIDs produced by IDGenerator.NextUUID.
var fixtureNamespace = uuid.MustParse("5b0c9f3e-2b7a-4c1e-9d55-3f7f2a1c0e11")

// IDGenerator produces deterministic identifiers for tests.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator returns a generator yielding "<prefix>-N". An empty prefix
// becomes "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextUUID returns the next identifier as a name-based UUID, matching the shape
// of production ids while staying reproducible across runs.
func (g *IDGenerator) NextUUID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return uuid.NewSHA1(fixtureNamespace, []byte(g.prefix+"/"+strconv.FormatUint(g.counter, 10))).String()
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// UUIDFunc exposes NextUUID as a function suitable for dependency injection.
func (g *IDGenerator) UUIDFunc() func() string {
	if g == nil {
		return uuid.NewString
	}
	return g.NextUUID
}

// SetPrefix updates the generator prefix.
func (g *IDGenerator) SetPrefix(prefix string) {
	g.mu.Lock()
	g.prefix = prefix
	g.mu.Unlock()
}

// SetCounter overrides the internal counter.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}
