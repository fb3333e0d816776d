package feelings

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
)

func mustSetEffect(t *testing.T, g *Graph, source, target string, ratio float64) {
	t.Helper()
	if err := g.SetEffect(source, target, ratio); err != nil {
		t.Fatalf("SetEffect(%s, %s, %v) returned error: %v", source, target, ratio, err)
	}
}

func mustApply(t *testing.T, g *Graph, name string, delta float64) float64 {
	t.Helper()
	value, err := g.ApplyFeeling(name, delta)
	if err != nil {
		t.Fatalf("ApplyFeeling(%s, %v) returned error: %v", name, delta, err)
	}
	return value
}

func mustGet(t *testing.T, g *Graph, name string) float64 {
	t.Helper()
	value, err := g.GetFeeling(name)
	if err != nil {
		t.Fatalf("GetFeeling(%s) returned error: %v", name, err)
	}
	return value
}

func TestGetFeelingUnknownReturnsZero(t *testing.T) {
	g := NewGraph()

	if got := mustGet(t, g, "Joy"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if g.Len() != 0 {
		t.Fatalf("expected read to leave graph empty, got %d feelings", g.Len())
	}
}

func TestApplyFeelingDirectEffect(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "A", "B", -1)

	if got := mustApply(t, g, "A", 10); got != 10 {
		t.Fatalf("expected A to be 10, got %v", got)
	}
	if got := mustGet(t, g, "B"); got != -10 {
		t.Fatalf("expected B to be -10, got %v", got)
	}
}

func TestApplyFeelingReturnsRootValueOnly(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "A", "B", 2)

	if got := mustApply(t, g, "A", 5); got != 5 {
		t.Fatalf("expected root value 5, got %v", got)
	}
	if got := mustGet(t, g, "B"); got != 10 {
		t.Fatalf("expected B to be 10, got %v", got)
	}
}

func TestApplyFeelingCycleAppliesEachNodeOnce(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "A", "B", 1)
	mustSetEffect(t, g, "A", "C", 1)
	mustSetEffect(t, g, "B", "C", 1)
	mustSetEffect(t, g, "C", "B", 1)

	mustApply(t, g, "A", 10)

	for name, want := range map[string]float64{"A": 10, "B": 10, "C": 10} {
		if got := mustGet(t, g, name); got != want {
			t.Fatalf("expected %s to be %v, got %v", name, want, got)
		}
	}
}

func TestApplyFeelingSelfLoopTerminates(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "Rage", "Rage", 2)

	if got := mustApply(t, g, "Rage", 10); got != 10 {
		t.Fatalf("expected self loop to be ignored, got %v", got)
	}
}

// A diamond only propagates along the first path to reach the shared node.
func TestApplyFeelingDiamondUnderPropagates(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "A", "B", 1)
	mustSetEffect(t, g, "A", "C", 1)
	mustSetEffect(t, g, "B", "D", 1)
	mustSetEffect(t, g, "C", "D", 1)

	mustApply(t, g, "A", 10)

	if got := mustGet(t, g, "D"); got != 10 {
		t.Fatalf("expected D to receive one contribution (10), got %v", got)
	}
}

func TestApplyFeelingEdgeOrderDecidesFirstClaim(t *testing.T) {
	tests := []struct {
		name  string
		links [][3]any
		wantC float64
	}{
		{
			name:  "through B first",
			links: [][3]any{{"A", "B", 1.0}, {"A", "C", 0.5}, {"B", "C", 2.0}},
			wantC: 20,
		},
		{
			name:  "direct C first",
			links: [][3]any{{"A", "C", 0.5}, {"A", "B", 1.0}, {"B", "C", 2.0}},
			wantC: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			for _, l := range tt.links {
				mustSetEffect(t, g, l[0].(string), l[1].(string), l[2].(float64))
			}
			mustApply(t, g, "A", 10)
			if got := mustGet(t, g, "C"); got != tt.wantC {
				t.Fatalf("expected C to be %v, got %v", tt.wantC, got)
			}
		})
	}
}

func TestApplyFeelingJoySadScenario(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "Joy", "Sad", -1)
	mustSetEffect(t, g, "Sad", "Joy", -1)

	if got := mustApply(t, g, "Joy", 30); got != 30 {
		t.Fatalf("expected Joy 30, got %v", got)
	}
	if got := mustGet(t, g, "Sad"); got != -30 {
		t.Fatalf("expected Sad -30, got %v", got)
	}

	if got := mustApply(t, g, "Sad", 50); got != 20 {
		t.Fatalf("expected Sad 20, got %v", got)
	}
	if got := mustGet(t, g, "Joy"); got != -20 {
		t.Fatalf("expected Joy -20, got %v", got)
	}
}

func TestApplyFeelingClampsEveryNode(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "Anger", "Calm", -2)

	if got := mustApply(t, g, "Anger", 1000); got != MaxValue {
		t.Fatalf("expected Anger clamped to %v, got %v", MaxValue, got)
	}
	if got := mustGet(t, g, "Calm"); got != MinValue {
		t.Fatalf("expected Calm clamped to %v, got %v", MinValue, got)
	}

	// No overflow is carried: one step back leaves the boundary.
	if got := mustApply(t, g, "Anger", -1); got != MaxValue-1 {
		t.Fatalf("expected %v, got %v", MaxValue-1, got)
	}
	if got := mustGet(t, g, "Calm"); got != MinValue+2 {
		t.Fatalf("expected %v, got %v", MinValue+2, got)
	}
}

func TestApplyFeelingSequenceStaysInRange(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "A", "B", 1.5)
	mustSetEffect(t, g, "B", "C", -2)
	mustSetEffect(t, g, "C", "A", 0.7)

	deltas := []float64{90, 75, -400, 999, -1000, 33.3, 0.001, -12}
	names := []string{"A", "B", "C"}
	for i, d := range deltas {
		mustApply(t, g, names[i%len(names)], d)
		for _, name := range names {
			v := mustGet(t, g, name)
			if v < MinValue || v > MaxValue {
				t.Fatalf("step %d: %s out of range: %v", i, name, v)
			}
		}
	}
}

func TestApplyFeelingRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		feeling string
		delta   float64
		wantErr error
	}{
		{"empty name", "", 1, ErrInvalidName},
		{"long name", strings.Repeat("x", MaxNameLength+1), 1, ErrInvalidName},
		{"nan", "Joy", math.NaN(), ErrInvalidDelta},
		{"positive infinity", "Joy", math.Inf(1), ErrInvalidDelta},
		{"negative infinity", "Joy", math.Inf(-1), ErrInvalidDelta},
		{"too large", "Joy", 1000.5, ErrInvalidDelta},
		{"too small", "Joy", -1001, ErrInvalidDelta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			mustSetEffect(t, g, "Joy", "Sad", -1)
			mustApply(t, g, "Joy", 5)

			_, err := g.ApplyFeeling(tt.feeling, tt.delta)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := mustGet(t, g, "Joy"); got != 5 {
				t.Fatalf("expected Joy unchanged at 5, got %v", got)
			}
			if got := mustGet(t, g, "Sad"); got != -5 {
				t.Fatalf("expected Sad unchanged at -5, got %v", got)
			}
			if g.Len() != 2 {
				t.Fatalf("expected no new feelings, got %v", g.Names())
			}
		})
	}
}

func TestApplyFeelingAcceptsBoundaryDelta(t *testing.T) {
	g := NewGraph()
	if got := mustApply(t, g, "Joy", -MaxDelta); got != MinValue {
		t.Fatalf("expected %v, got %v", MinValue, got)
	}
}

func TestNameLengthCountsCharacters(t *testing.T) {
	name := strings.Repeat("é", MaxNameLength)
	if err := ValidateName(name); err != nil {
		t.Fatalf("expected %d runes to be accepted, got %v", MaxNameLength, err)
	}
}

func TestGetFeelingRejectsInvalidName(t *testing.T) {
	g := NewGraph()
	if _, err := g.GetFeeling(""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestSetEffectOverwritesRatio(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "A", "B", 0.5)
	mustSetEffect(t, g, "A", "C", 1)
	mustSetEffect(t, g, "A", "B", 0.9)

	effects, err := g.Effects("A")
	if err != nil {
		t.Fatalf("Effects returned error: %v", err)
	}
	if len(effects) != 2 {
		t.Fatalf("expected 2 effects, got %v", effects)
	}
	if effects[0] != (Effect{Target: "B", Ratio: 0.9}) {
		t.Fatalf("expected A->B 0.9 to keep first position, got %v", effects[0])
	}
}

func TestSetEffectMaterializesBothFeelings(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "Insulted", "Anger", 0.8)

	names := g.Names()
	if len(names) != 2 || names[0] != "Insulted" || names[1] != "Anger" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestSetEffectRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name           string
		source, target string
		ratio          float64
		wantErr        error
	}{
		{"empty source", "", "B", 1, ErrInvalidName},
		{"empty target", "A", "", 1, ErrInvalidName},
		{"nan ratio", "A", "B", math.NaN(), ErrInvalidDelta},
		{"huge ratio", "A", "B", 1e6, ErrInvalidDelta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			if err := g.SetEffect(tt.source, tt.target, tt.ratio); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if g.Len() != 0 {
				t.Fatalf("expected graph untouched, got %v", g.Names())
			}
		})
	}
}

func TestEffectsReturnsCopy(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "A", "B", 1)

	effects, _ := g.Effects("A")
	effects[0].Ratio = 42

	again, _ := g.Effects("A")
	if again[0].Ratio != 1 {
		t.Fatalf("expected stored ratio to stay 1, got %v", again[0].Ratio)
	}
	if unknown, err := g.Effects("Nobody"); err != nil || len(unknown) != 0 {
		t.Fatalf("expected no effects for unknown source, got %v / %v", unknown, err)
	}
}

func TestGraphConcurrentApply(t *testing.T) {
	g := NewGraph()
	mustSetEffect(t, g, "A", "B", -1)

	var wg sync.WaitGroup
	for range 80 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.ApplyFeeling("A", 0.5); err != nil {
				t.Errorf("ApplyFeeling returned error: %v", err)
			}
			_ = g.CreateSnapshot()
		}()
	}
	wg.Wait()

	if got := mustGet(t, g, "A"); got != 40 {
		t.Fatalf("expected 40, got %v", got)
	}
	if got := mustGet(t, g, "B"); got != -40 {
		t.Fatalf("expected -40, got %v", got)
	}
}
