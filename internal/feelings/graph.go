// Package feelings maintains a graph of named scalar feelings that influence each
// other through weighted effects.
//
// Applying a delta to one feeling cascades along its outgoing effects depth-first,
// scaling the delta by each ratio. Every feeling is updated at most once per
// ApplyFeeling call, which keeps propagation finite on cyclic graphs: when two paths
// reach the same feeling only the first one counts.
package feelings

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// DefaultSnapshotVersion tags snapshots unless WithVersion overrides it.
const DefaultSnapshotVersion = "1"

// Graph is safe for concurrent use; every operation runs under one mutex.
type Graph struct {
	mu       sync.Mutex
	feelings map[string]*feeling
	order    []string
	now      func() time.Time
	version  string
}

// Option configures a Graph.
type Option func(*Graph)

// WithClock sets the clock used to timestamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) {
		if now != nil {
			g.now = now
		}
	}
}

// WithVersion sets the version tag written into snapshots.
func WithVersion(version string) Option {
	return func(g *Graph) {
		g.version = version
	}
}

// NewGraph returns an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		feelings: make(map[string]*feeling),
		now:      time.Now,
		version:  DefaultSnapshotVersion,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetFeeling returns the current value of name, or 0 if the feeling was never
// materialized.
func (g *Graph) GetFeeling(name string) (float64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if f, ok := g.feelings[name]; ok {
		return f.value, nil
	}
	return 0, nil
}

// ApplyFeeling adds delta to name, cascades along its effects and returns the new
// value of name.
func (g *Graph) ApplyFeeling(name string, delta float64) (float64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	if err := ValidateDelta(delta); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	handled := make(map[string]struct{})
	g.propagate(name, delta, handled)
	return g.feelings[name].value, nil
}

// propagate must be called with g.mu held.
func (g *Graph) propagate(name string, delta float64, handled map[string]struct{}) {
	f := g.ensure(name)
	f.value = Clamp(f.value + delta)
	handled[name] = struct{}{}

	for _, e := range f.effects {
		if _, ok := handled[e.Target]; ok {
			continue
		}
		g.propagate(e.Target, delta*e.Ratio, handled)
	}
}

// SetEffect makes changes to source push target by ratio times the change.
// Setting an existing pair replaces its ratio.
func (g *Graph) SetEffect(source, target string, ratio float64) error {
	if err := ValidateName(source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := ValidateName(target); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if err := ValidateDelta(ratio); err != nil {
		return fmt.Errorf("ratio: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.setEffect(source, target, ratio)
	return nil
}

func (g *Graph) setEffect(source, target string, ratio float64) {
	g.ensure(source).setEffect(target, ratio)
	g.ensure(target)
}

// Effects returns a copy of the outgoing effects of source in the order they were
// first configured.
func (g *Graph) Effects(source string) ([]Effect, error) {
	if err := ValidateName(source); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := g.feelings[source]
	if !ok {
		return nil, nil
	}
	return slices.Clone(f.effects), nil
}

// Names returns every materialized feeling in creation order.
func (g *Graph) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.order)
}

// Len returns the number of materialized feelings.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

func (g *Graph) ensure(name string) *feeling {
	if f, ok := g.feelings[name]; ok {
		return f
	}
	f := &feeling{}
	g.feelings[name] = f
	g.order = append(g.order, name)
	return f
}
