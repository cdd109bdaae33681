package otp

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func sequence(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func stores(t *testing.T) map[string]func() (Store, func(time.Duration)) {
	return map[string]func() (Store, func(time.Duration)){
		"memory": func() (Store, func(time.Duration)) {
			now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			st := NewMemoryStore(func() time.Time { return now })
			return st, func(d time.Duration) { now = now.Add(d) }
		},
		"redis": func() (Store, func(time.Duration)) {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisStore(client), mr.FastForward
		},
	}
}

func TestIssueAndVerify(t *testing.T) {
	for name, build := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, _ := build()
			svc := NewService(st, time.Minute, WithBcryptCost(bcrypt.MinCost), WithGenerator(sequence("135790")))
			ctx := context.Background()

			code, err := svc.Issue(ctx, "9876543210")
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			if code != "135790" {
				t.Fatalf("unexpected code %q", code)
			}
			if err := svc.Verify(ctx, "9876543210", "135790"); err != nil {
				t.Fatalf("verify: %v", err)
			}
			if err := svc.Verify(ctx, "9876543210", "135790"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected consumed code, got %v", err)
			}
		})
	}
}

func TestReissueReplacesEarlierCode(t *testing.T) {
	for name, build := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, _ := build()
			svc := NewService(st, time.Minute, WithBcryptCost(bcrypt.MinCost), WithGenerator(sequence("111111", "222222")))
			ctx := context.Background()

			first, _ := svc.Issue(ctx, "9876543210")
			second, _ := svc.Issue(ctx, "9876543210")
			if err := svc.Verify(ctx, "9876543210", first); !errors.Is(err, ErrMismatch) {
				t.Fatalf("expected first code rejected, got %v", err)
			}
			if err := svc.Verify(ctx, "9876543210", second); err != nil {
				t.Fatalf("verify second: %v", err)
			}
		})
	}
}

func TestCodeExpires(t *testing.T) {
	for name, build := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, advance := build()
			svc := NewService(st, 5*time.Minute, WithBcryptCost(bcrypt.MinCost), WithGenerator(sequence("123456")))
			ctx := context.Background()

			if _, err := svc.Issue(ctx, "9876543210"); err != nil {
				t.Fatalf("issue: %v", err)
			}
			advance(5*time.Minute + time.Second)
			if err := svc.Verify(ctx, "9876543210", "123456"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected expiry, got %v", err)
			}
		})
	}
}

func TestTooManyAttemptsBurnsCode(t *testing.T) {
	for name, build := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, _ := build()
			svc := NewService(st, time.Minute, WithBcryptCost(bcrypt.MinCost), WithMaxAttempts(2), WithGenerator(sequence("123456")))
			ctx := context.Background()

			if _, err := svc.Issue(ctx, "9876543210"); err != nil {
				t.Fatalf("issue: %v", err)
			}
			if err := svc.Verify(ctx, "9876543210", "000000"); !errors.Is(err, ErrMismatch) {
				t.Fatalf("expected mismatch, got %v", err)
			}
			if err := svc.Verify(ctx, "9876543210", "000001"); !errors.Is(err, ErrTooManyAttempts) {
				t.Fatalf("expected lockout, got %v", err)
			}
			if err := svc.Verify(ctx, "9876543210", "123456"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected burned code, got %v", err)
			}
		})
	}
}

func TestRandomCodeShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := randomCode()
		if err != nil {
			t.Fatalf("random code: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("bad code %q", code)
		}
	}
}
