package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/easeaico/feelings/internal/config"
)

func TestFileStoreRoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, YAMLCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			store, err := NewFileStore(dir, codec)
			if err != nil {
				t.Fatalf("NewFileStore returned error: %v", err)
			}

			snap := sampleSnapshot(t)
			if err := store.Save(ctx, "guard.captain", snap); err != nil {
				t.Fatalf("Save returned error: %v", err)
			}
			if _, err := os.Stat(filepath.Join(dir, "guard.captain"+codec.Extension())); err != nil {
				t.Fatalf("expected snapshot file to exist: %v", err)
			}

			got, err := store.Load(ctx, "guard.captain")
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if diff := diffSnapshots(snap, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileStoreOverwriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, JSONCodec{})
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	for range 3 {
		if err := store.Save(ctx, "npc", sampleSnapshot(t)); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "npc.json" {
		t.Fatalf("expected only npc.json, got %v", entries)
	}
}

func TestFileStoreKeysAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, YAMLCodec{})
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	for _, key := range []string{"innkeeper", "bard"} {
		if err := store.Save(ctx, key, sampleSnapshot(t)); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"bard", "innkeeper"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete(ctx, "bard"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Load(ctx, "bard"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "bard"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"file", config.Config{StoreDriver: config.DriverFile, StoreFormat: "yaml", WorkDir: dir}, "*storage.FileStore"},
		{"memory", config.Config{StoreDriver: config.DriverMemory}, "*storage.MemoryStore"},
		{"sqlite", config.Config{StoreDriver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "f.db")}, "*storage.SQLiteStore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := Open(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("Open returned error: %v", err)
			}
			defer backend.Close()
			if got := typeName(backend); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}

	if _, err := Open(ctx, config.Config{StoreDriver: "etcd"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
