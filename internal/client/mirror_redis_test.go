package client

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisMirror(t *testing.T) *RedisMirror {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisMirrorWithClient(client)
}

func TestRedisMirrorRoundtrip(t *testing.T) {
	mirror := newTestRedisMirror(t)
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
}

func TestRedisMirrorKeysArePrefixed(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mirror := NewRedisMirrorWithClient(client)

	ctx := context.Background()
	if err := mirror.Set(ctx, "siteContent", []byte("doc")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := srv.Get("mirror:siteContent")
	if err != nil {
		t.Fatalf("expected prefixed key in redis: %v", err)
	}
	if got != "doc" {
		t.Fatalf("unexpected stored value: %s", got)
	}
}

func TestRedisMirrorFromURL(t *testing.T) {
	srv := miniredis.RunT(t)
	mirror, err := NewRedisMirror("redis://" + srv.Addr())
	if err != nil {
		t.Fatalf("NewRedisMirror failed: %v", err)
	}
	defer mirror.Close()

	ctx := context.Background()
	if err := mirror.Set(ctx, "siteContent", []byte("via-url")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, err := mirror.Get(ctx, "siteContent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "via-url" {
		t.Fatalf("unexpected data: %s", data)
	}
}
