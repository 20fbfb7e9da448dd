package client

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestBoltMirrorRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	mirror, err := NewBoltMirror(path)
	if err != nil {
		t.Fatalf("NewBoltMirror failed: %v", err)
	}
	defer mirror.Close()

	ctx := context.Background()
	if _, err := mirror.Get(ctx, "siteContent"); !errors.Is(err, ErrMirrorMiss) {
		t.Fatalf("expected ErrMirrorMiss on empty mirror, got %v", err)
	}

	if err := mirror.Set(ctx, "siteContent", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, err := mirror.Get(ctx, "siteContent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != `{"v":1}` {
		t.Fatalf("unexpected mirror data: %s", data)
	}

	if err := mirror.Set(ctx, "siteContent", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, err = mirror.Get(ctx, "siteContent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != `{"v":2}` {
		t.Fatalf("expected latest value, got %s", data)
	}
}

func TestBoltMirrorPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	ctx := context.Background()

	mirror, err := NewBoltMirror(path)
	if err != nil {
		t.Fatalf("NewBoltMirror failed: %v", err)
	}
	if err := mirror.Set(ctx, "siteContent", []byte("persisted")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := mirror.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBoltMirror(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	data, err := reopened.Get(ctx, "siteContent")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(data) != "persisted" {
		t.Fatalf("unexpected data after reopen: %s", data)
	}
}
