package storage

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/easeaico/feelings/internal/feelings"
)

var resolvedSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return snapshotSchema().Resolve(nil)
})

// snapshotSchema describes the JSON snapshot document.
func snapshotSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"version", "timestamp", "feelings", "effects"},
		Properties: map[string]*jsonschema.Schema{
			"version":   {Type: "string"},
			"timestamp": {Type: "string", Format: "date-time"},
			"feelings": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"name", "value"},
					Properties: map[string]*jsonschema.Schema{
						"name":  nameSchema(),
						"value": {Type: "number"},
					},
				},
			},
			"effects": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"source", "targets"},
					Properties: map[string]*jsonschema.Schema{
						"source": nameSchema(),
						"targets": {
							Type: "array",
							Items: &jsonschema.Schema{
								Type:     "object",
								Required: []string{"target", "ratio"},
								Properties: map[string]*jsonschema.Schema{
									"target": nameSchema(),
									"ratio": {
										Type:    "number",
										Minimum: ptr(-feelings.MaxDelta),
										Maximum: ptr(feelings.MaxDelta),
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

// nameSchema returns a fresh node each call; resolved schemas must form a tree.
func nameSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:      "string",
		MinLength: ptr(1),
		MaxLength: ptr(feelings.MaxNameLength),
	}
}

func validateDocument(instance any) error {
	resolved, err := resolvedSchema()
	if err != nil {
		return fmt.Errorf("failed to resolve snapshot schema: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("snapshot does not match schema: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
