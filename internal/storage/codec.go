package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/easeaico/feelings/internal/feelings"
)

// Codec converts snapshots to and from a file format.
type Codec interface {
	Name() string
	Extension() string
	Encode(w io.Writer, snap *feelings.Snapshot) error
	Decode(r io.Reader) (*feelings.Snapshot, error)
}

// CodecByName returns the codec for "json" or "yaml".
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", name)
	}
}

// JSONCodec writes indented JSON and validates input against the snapshot schema.
type JSONCodec struct{}

func (JSONCodec) Name() string      { return "json" }
func (JSONCodec) Extension() string { return ".json" }

func (JSONCodec) Encode(w io.Writer, snap *feelings.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(documentFromSnapshot(snap)); err != nil {
		return fmt.Errorf("failed to encode json snapshot: %w", err)
	}
	return nil
}

func (JSONCodec) Decode(r io.Reader) (*feelings.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read json snapshot: %w", err)
	}
	return decodeJSONDocument(raw)
}

func decodeJSONDocument(raw []byte) (*feelings.Snapshot, error) {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("failed to decode json snapshot: %w", err)
	}
	if err := validateDocument(instance); err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode json snapshot: %w", err)
	}
	return doc.snapshot(), nil
}

// YAMLCodec reads and writes YAML documents.
type YAMLCodec struct{}

func (YAMLCodec) Name() string      { return "yaml" }
func (YAMLCodec) Extension() string { return ".yaml" }

func (YAMLCodec) Encode(w io.Writer, snap *feelings.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(documentFromSnapshot(snap)); err != nil {
		return fmt.Errorf("failed to encode yaml snapshot: %w", err)
	}
	return enc.Close()
}

func (YAMLCodec) Decode(r io.Reader) (*feelings.Snapshot, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode yaml snapshot: %w", err)
	}
	snap := doc.snapshot()
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}
