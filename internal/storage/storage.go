// Package storage is the durable key-value port shared by the session,
// location, cart and address stores. Presentation code never touches it
// directly; each store owns the keys it reads and writes.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Durable storage keys.
const (
	KeyToken            = "token"
	KeyUserMobile       = "user_mobile"
	KeyLoginResponse    = "loginResponse"
	KeySelectedLocation = "selectedLocation"
	KeyCart             = "cart"
	KeyCurrentAddress   = "current_address"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a process-wide string-keyed store that outlives a single run.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// GetJSON decodes the value stored under key into dst. It returns ErrNotFound
// when the key is absent.
func GetJSON(ctx context.Context, s Storage, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(payload))
}
