package infra

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClientSelectsDatabaseAndName(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, "redis://"+mr.Addr()+"/3", WithApplicationName("zetctl"), WithMaxConns(2))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	if got := client.Options().PoolSize; got != 2 {
		t.Fatalf("expected pool size 2, got %d", got)
	}
	if err := client.Set(ctx, "zet:cart", "[]", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.DB(3).Exists("zet:cart") {
		t.Fatal("expected key in db 3")
	}
	if mr.DB(0).Exists("zet:cart") {
		t.Fatal("key leaked into db 0")
	}
	name, err := client.ClientGetName(ctx).Result()
	if err != nil {
		t.Fatalf("client getname: %v", err)
	}
	if name != "zetctl" {
		t.Fatalf("expected client name zetctl, got %q", name)
	}
}

func TestNewRedisClientFailsFastWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	start := time.Now()
	_, err := NewRedisClient(context.Background(), "redis://"+addr, WithConnectTimeout(200*time.Millisecond))
	if err == nil {
		t.Fatal("expected ping error")
	}
	if !strings.Contains(err.Error(), "ping redis db 0") {
		t.Fatalf("unexpected error %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("connect timeout not applied, took %s", time.Since(start))
	}
}

func TestConnectorsRejectBadURLs(t *testing.T) {
	ctx := context.Background()
	if _, err := NewRedisClient(ctx, ""); err == nil {
		t.Fatal("expected error for empty redis url")
	}
	if _, err := NewRedisClient(ctx, "http://localhost:6379"); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
	if _, err := NewPostgresPool(ctx, ""); err == nil {
		t.Fatal("expected error for empty database url")
	}
	if _, err := NewPostgresPool(ctx, "postgres://zet@localhost:notaport/zet"); err == nil {
		t.Fatal("expected error for malformed database url")
	}
}

func TestBuildOptionsIgnoresNonPositive(t *testing.T) {
	o := buildOptions([]Option{WithConnectTimeout(0), WithMaxConns(-1)})
	if o.connectTimeout != defaultConnectTimeout {
		t.Fatalf("expected default timeout, got %s", o.connectTimeout)
	}
	if o.maxConns != 0 {
		t.Fatalf("expected driver default conns, got %d", o.maxConns)
	}
}
