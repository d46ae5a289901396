package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out readable record ids with one counter per prefix, so
// bookings read booking-1, booking-2 while contacts start at contact-1.
type IDGenerator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewIDGenerator returns a generator with every sequence at zero.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{counters: make(map[string]int)}
}

// Next returns the next id of the prefix sequence.
func (g *IDGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.counters == nil {
		g.counters = make(map[string]int)
	}
	g.counters[prefix]++
	return fmt.Sprintf("%s-%d", prefix, g.counters[prefix])
}

// For binds Next to prefix for injection into a service.
func (g *IDGenerator) For(prefix string) func() string {
	if g == nil {
		return func() string { return "" }
	}
	return func() string { return g.Next(prefix) }
}

// Issued reports how many ids of prefix were handed out.
func (g *IDGenerator) Issued(prefix string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counters[prefix]
}

// Reset restarts every sequence.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.counters = make(map[string]int)
	g.mu.Unlock()
}
