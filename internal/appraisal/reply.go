package appraisal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

type reply struct {
	Stimuli []Stimulus `json:"stimuli"`
}

var replySchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	schema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"stimuli"},
		Properties: map[string]*jsonschema.Schema{
			"stimuli": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"feeling", "delta"},
					Properties: map[string]*jsonschema.Schema{
						"feeling": {Type: "string", MinLength: ptr(1)},
						"delta":   {Type: "number"},
					},
				},
			},
		},
	}
	return schema.Resolve(nil)
})

// parseReply extracts the JSON object from a model reply, tolerating code
// fences and surrounding prose.
func parseReply(raw string) ([]Stimulus, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in appraisal reply")
	}
	clean = clean[start : end+1]

	var instance any
	if err := json.Unmarshal([]byte(clean), &instance); err != nil {
		return nil, fmt.Errorf("failed to parse appraisal reply: %w", err)
	}
	resolved, err := replySchema()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve appraisal schema: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("invalid appraisal reply: %w", err)
	}

	var out reply
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("failed to parse appraisal reply: %w", err)
	}
	return out.Stimuli, nil
}

func ptr[T any](v T) *T {
	return &v
}
