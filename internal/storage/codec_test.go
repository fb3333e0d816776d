package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/easeaico/feelings/internal/feelings"
)

var emptySnapshot = feelings.Snapshot{Version: "1", Timestamp: takenAt}

func TestCodecsRoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, YAMLCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			snap := sampleSnapshot(t)

			var buf bytes.Buffer
			if err := codec.Encode(&buf, snap); err != nil {
				t.Fatalf("Encode returned error: %v", err)
			}
			got, err := codec.Decode(&buf)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if diff := diffSnapshots(snap, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodecByName(t *testing.T) {
	tests := map[string]string{"json": ".json", "JSON": ".json", "": ".json", "yaml": ".yaml", "yml": ".yaml"}
	for name, ext := range tests {
		codec, err := CodecByName(name)
		if err != nil {
			t.Fatalf("CodecByName(%q) returned error: %v", name, err)
		}
		if codec.Extension() != ext {
			t.Fatalf("expected %s for %q, got %s", ext, name, codec.Extension())
		}
	}
	if _, err := CodecByName("toml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestJSONCodecEncodesEmptyListsAsArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONCodec{}).Encode(&buf, &emptySnapshot); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"effects": []`) {
		t.Fatalf("expected empty effects array, got %s", buf.String())
	}
	if _, err := (JSONCodec{}).Decode(&buf); err != nil {
		t.Fatalf("expected empty snapshot to decode, got %v", err)
	}
}

func TestJSONCodecRejectsInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"not json":        `{"version": `,
		"missing effects": `{"version":"1","timestamp":"2026-01-01T00:00:00Z","feelings":[]}`,
		"empty name":      `{"version":"1","timestamp":"2026-01-01T00:00:00Z","feelings":[{"name":"","value":1}],"effects":[]}`,
		"string value":    `{"version":"1","timestamp":"2026-01-01T00:00:00Z","feelings":[{"name":"Joy","value":"high"}],"effects":[]}`,
		"ratio too big": `{"version":"1","timestamp":"2026-01-01T00:00:00Z","feelings":[],
			"effects":[{"source":"Joy","targets":[{"target":"Sad","ratio":1000.5}]}]}`,
		"long name": `{"version":"1","timestamp":"2026-01-01T00:00:00Z","feelings":[{"name":"` +
			strings.Repeat("n", 101) + `","value":1}],"effects":[]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := (JSONCodec{}).Decode(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected decode error")
			}
		})
	}
}

func TestYAMLCodecRejectsInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"unknown field": "version: \"1\"\nmood: grumpy\n",
		"bad ratio":     "version: \"1\"\neffects:\n  - source: Joy\n    targets:\n      - {target: Sad, ratio: 2000}\n",
		"empty target":  "version: \"1\"\neffects:\n  - source: Joy\n    targets:\n      - {target: \"\", ratio: 1}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := (YAMLCodec{}).Decode(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected decode error")
			}
		})
	}
}
