// Package appraisal turns free text into feeling stimuli with a language model
// and feeds them into a feelings graph.
package appraisal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/feelings/internal/feelings"
)

var ErrNotConfigured = errors.New("appraiser not configured")

const defaultInstruction = `You appraise events for a game character's emotional state.
Given an event and the list of known feelings, reply with JSON only:
{"stimuli":[{"feeling":"<known feeling>","delta":<number between -1000 and 1000>}]}
Use only feelings from the list. Positive deltas strengthen a feeling, negative weaken it.
Reply {"stimuli":[]} when the event does not affect any known feeling.`

// Stimulus is a change to one feeling derived from text.
type Stimulus struct {
	Feeling string  `json:"feeling"`
	Delta   float64 `json:"delta"`
}

// Outcome is a stimulus after it has been applied to a graph.
type Outcome struct {
	Stimulus
	Value float64
}

// Appraiser asks a model which feelings a piece of text should move.
type Appraiser struct {
	model       model.LLM
	instruction string
	maxStimuli  int
}

// Option configures an Appraiser.
type Option func(*Appraiser)

// WithInstruction replaces the system instruction sent with every request.
func WithInstruction(instruction string) Option {
	return func(a *Appraiser) {
		if strings.TrimSpace(instruction) != "" {
			a.instruction = instruction
		}
	}
}

// WithMaxStimuli caps how many stimuli one appraisal may return. Zero means no cap.
func WithMaxStimuli(n int) Option {
	return func(a *Appraiser) {
		if n >= 0 {
			a.maxStimuli = n
		}
	}
}

// NewAppraiser returns an Appraiser backed by m.
func NewAppraiser(m model.LLM, opts ...Option) *Appraiser {
	a := &Appraiser{model: m, instruction: defaultInstruction}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Appraise returns the stimuli text implies for the known feelings. Stimuli for
// unknown feelings or with a zero delta are dropped.
func (a *Appraiser) Appraise(ctx context.Context, text string, known []string) ([]Stimulus, error) {
	if a == nil || a.model == nil {
		return nil, ErrNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" || len(known) == 0 {
		return nil, nil
	}

	req := &model.LLMRequest{
		Model: a.model.Name(),
		Contents: []*genai.Content{
			genai.NewContentFromText(buildPrompt(text, known), "user"),
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(a.instruction, "system"),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0.2),
		},
	}

	seq := a.model.GenerateContent(ctx, req, false)
	var resp *model.LLMResponse
	var err error
	seq(func(r *model.LLMResponse, e error) bool {
		resp = r
		err = e
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate appraisal: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty appraisal response")
	}

	raw, err := parseReply(extractText(resp))
	if err != nil {
		return nil, err
	}
	return a.filter(raw, known), nil
}

// Apply appraises text against the feelings already in g and applies each
// stimulus in order.
func (a *Appraiser) Apply(ctx context.Context, g *feelings.Graph, text string) ([]Outcome, error) {
	if g == nil {
		return nil, fmt.Errorf("graph cannot be nil")
	}
	stimuli, err := a.Appraise(ctx, text, g.Names())
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(stimuli))
	for _, s := range stimuli {
		value, err := g.ApplyFeeling(s.Feeling, s.Delta)
		if err != nil {
			return outcomes, fmt.Errorf("failed to apply %s: %w", s.Feeling, err)
		}
		outcomes = append(outcomes, Outcome{Stimulus: s, Value: value})
	}
	slog.Debug("appraisal applied", "stimuli", len(outcomes))
	return outcomes, nil
}

func (a *Appraiser) filter(raw []Stimulus, known []string) []Stimulus {
	canonical := make(map[string]string, len(known))
	for _, name := range known {
		canonical[strings.ToLower(name)] = name
	}

	out := make([]Stimulus, 0, len(raw))
	for _, s := range raw {
		name, ok := canonical[strings.ToLower(strings.TrimSpace(s.Feeling))]
		if !ok {
			slog.Warn("dropping stimulus for unknown feeling", "feeling", s.Feeling)
			continue
		}
		if s.Delta == 0 {
			continue
		}
		delta := math.Max(-feelings.MaxDelta, math.Min(feelings.MaxDelta, s.Delta))
		out = append(out, Stimulus{Feeling: name, Delta: delta})
		if a.maxStimuli > 0 && len(out) == a.maxStimuli {
			break
		}
	}
	return out
}

func buildPrompt(text string, known []string) string {
	var sb strings.Builder
	sb.WriteString("Known feelings: ")
	sb.WriteString(strings.Join(known, ", "))
	sb.WriteString("\n\nEvent:\n")
	sb.WriteString(text)
	return sb.String()
}

func extractText(resp *model.LLMResponse) string {
	if resp == nil || resp.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
