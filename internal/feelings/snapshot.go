package feelings

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// Snapshot is a self-contained copy of a graph for persistence collaborators.
type Snapshot struct {
	Version   string
	Timestamp time.Time
	Feelings  []FeelingValue
	Effects   []EffectGroup
}

// FeelingValue pairs a feeling with its value.
type FeelingValue struct {
	Name  string
	Value float64
}

// EffectGroup lists the outgoing effects of one source feeling.
type EffectGroup struct {
	Source  string
	Effects []Effect
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Version:   s.Version,
		Timestamp: s.Timestamp,
		Feelings:  slices.Clone(s.Feelings),
		Effects:   make([]EffectGroup, 0, len(s.Effects)),
	}
	for _, group := range s.Effects {
		out.Effects = append(out.Effects, EffectGroup{
			Source:  group.Source,
			Effects: slices.Clone(group.Effects),
		})
	}
	return out
}

// CreateSnapshot captures every feeling and every effect. Entries follow feeling
// creation order.
func (g *Graph) CreateSnapshot() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := &Snapshot{
		Version:   g.version,
		Timestamp: g.now(),
		Feelings:  make([]FeelingValue, 0, len(g.order)),
	}
	for _, name := range g.order {
		f := g.feelings[name]
		snap.Feelings = append(snap.Feelings, FeelingValue{Name: name, Value: f.value})
		if len(f.effects) > 0 {
			snap.Effects = append(snap.Effects, EffectGroup{
				Source:  name,
				Effects: slices.Clone(f.effects),
			})
		}
	}
	return snap
}

// RestoreFromSnapshot replaces the whole graph with the contents of snap. A nil
// snapshot leaves the graph untouched. An invalid snapshot is rejected before
// anything is cleared.
func (g *Graph) RestoreFromSnapshot(snap *Snapshot) error {
	if snap == nil {
		slog.Warn("restore skipped: snapshot is nil")
		return nil
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.feelings = make(map[string]*feeling, len(snap.Feelings))
	g.order = nil
	for _, fv := range snap.Feelings {
		g.ensure(fv.Name).value = Clamp(fv.Value)
	}
	for _, group := range snap.Effects {
		for _, e := range group.Effects {
			g.setEffect(group.Source, e.Target, e.Ratio)
		}
	}
	return nil
}

// Validate checks every name, value and ratio in s.
func (s *Snapshot) Validate() error {
	for i, fv := range s.Feelings {
		if err := ValidateName(fv.Name); err != nil {
			return fmt.Errorf("feelings[%d]: %w", i, err)
		}
		if err := validateValue(fv.Value); err != nil {
			return fmt.Errorf("feelings[%d] %s: %w", i, fv.Name, err)
		}
	}
	for i, group := range s.Effects {
		if err := ValidateName(group.Source); err != nil {
			return fmt.Errorf("effects[%d] source: %w", i, err)
		}
		for j, e := range group.Effects {
			if err := ValidateName(e.Target); err != nil {
				return fmt.Errorf("effects[%d][%d] target: %w", i, j, err)
			}
			if err := ValidateDelta(e.Ratio); err != nil {
				return fmt.Errorf("effects[%d][%d] %s->%s: %w", i, j, group.Source, e.Target, err)
			}
		}
	}
	return nil
}
