package feelings

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	// MinValue and MaxValue bound every stored feeling value.
	MinValue = -100.0
	MaxValue = 100.0
	// MaxDelta bounds the magnitude of deltas and effect ratios.
	MaxDelta = 1000.0
	// MaxNameLength caps feeling names.
	MaxNameLength = 100
)

// Effect is a directed weighted influence owned by a source feeling.
type Effect struct {
	Target string
	Ratio  float64
}

type feeling struct {
	value   float64
	effects []Effect
}

// setEffect inserts or overwrites the edge to target, keeping its position.
func (f *feeling) setEffect(target string, ratio float64) {
	for i := range f.effects {
		if f.effects[i].Target == target {
			f.effects[i].Ratio = ratio
			return
		}
	}
	f.effects = append(f.effects, Effect{Target: target, Ratio: ratio})
}

// Clamp bounds value to [MinValue, MaxValue].
func Clamp(value float64) float64 {
	switch {
	case value < MinValue:
		return MinValue
	case value > MaxValue:
		return MaxValue
	default:
		return value
	}
}

// ValidateName reports whether name can identify a feeling.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// ValidateDelta reports whether d can be used as a delta or effect ratio.
func ValidateDelta(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %v is not finite", ErrInvalidDelta, d)
	}
	if math.Abs(d) > MaxDelta {
		return fmt.Errorf("%w: |%v| exceeds %v", ErrInvalidDelta, d, MaxDelta)
	}
	return nil
}

func validateValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v is not finite", ErrInvalidValue, v)
	}
	return nil
}
