// Package address manages the user's saved collection addresses and which
// one the next booking goes to.
package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/zet-health/zet_booking/internal/apiclient"
	"github.com/zet-health/zet_booking/internal/notification"
	"github.com/zet-health/zet_booking/internal/storage"
)

// ErrNoAddressSelected is returned by Current when nothing is selected.
var ErrNoAddressSelected = errors.New("no address selected")

// API is the part of the HTTP adapter the address book uses.
type API interface {
	ListAddresses(ctx context.Context) ([]apiclient.Address, error)
	AddAddress(ctx context.Context, addr apiclient.Address) error
	DeleteAddress(ctx context.Context, id string) error
}

// ValidationError names the first invalid field of an address.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var fieldMessages = map[string]map[string]string{
	"Address":  {"required": "Please enter complete address"},
	"Location": {"required": "Please enter area"},
	"Pincode":  {"required": "Please enter pincode", "len": "Please enter valid 6-digit pincode", "numeric": "Please enter valid 6-digit pincode"},
	"City":     {"required": "Please select city"},
}

// Book owns the current_address storage key.
type Book struct {
	api      API
	storage  storage.Storage
	notifier notification.Notifier
	validate *validator.Validate
	logger   *slog.Logger

	mu      sync.Mutex
	current *apiclient.Address
}

// NewBook creates an address book.
func NewBook(api API, st storage.Storage, notifier notification.Notifier, logger *slog.Logger) *Book {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Book{api: api, storage: st, notifier: notifier, validate: validator.New(), logger: logger}
}

// List fetches the saved addresses.
func (b *Book) List(ctx context.Context) ([]apiclient.Address, error) {
	list, err := b.api.ListAddresses(ctx)
	if err != nil {
		b.notify(ctx, notification.LevelError, err.Error())
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return list, nil
}

// Add validates and saves a new address.
func (b *Book) Add(ctx context.Context, addr apiclient.Address) error {
	addr.Address = strings.TrimSpace(addr.Address)
	addr.Location = strings.TrimSpace(addr.Location)
	addr.Pincode = strings.TrimSpace(addr.Pincode)
	if err := b.check(addr); err != nil {
		b.notify(ctx, notification.LevelError, err.Error())
		return err
	}
	if err := b.api.AddAddress(ctx, addr); err != nil {
		b.notify(ctx, notification.LevelError, err.Error())
		return fmt.Errorf("add address: %w", err)
	}
	b.notify(ctx, notification.LevelSuccess, "Address added successfully")
	return nil
}

// Delete removes a saved address and drops it as the current selection.
func (b *Book) Delete(ctx context.Context, id string) error {
	if err := b.api.DeleteAddress(ctx, id); err != nil {
		b.notify(ctx, notification.LevelError, err.Error())
		return fmt.Errorf("delete address: %w", err)
	}

	cur, err := b.Current(ctx)
	switch {
	case errors.Is(err, ErrNoAddressSelected):
	case err != nil:
		return err
	case cur.ID.String() == id:
		if err := b.clear(ctx); err != nil {
			return err
		}
	}
	b.notify(ctx, notification.LevelSuccess, "Address deleted successfully")
	return nil
}

// Select makes addr the destination of the next booking.
func (b *Book) Select(ctx context.Context, addr apiclient.Address) error {
	if err := storage.SetJSON(ctx, b.storage, storage.KeyCurrentAddress, addr); err != nil {
		return fmt.Errorf("persist current address: %w", err)
	}
	b.mu.Lock()
	b.current = &addr
	b.mu.Unlock()
	return nil
}

// SelectByID looks id up in the saved addresses and selects it.
func (b *Book) SelectByID(ctx context.Context, id string) (apiclient.Address, error) {
	list, err := b.List(ctx)
	if err != nil {
		return apiclient.Address{}, err
	}
	for _, a := range list {
		if a.ID.String() == id {
			return a, b.Select(ctx, a)
		}
	}
	return apiclient.Address{}, fmt.Errorf("address %s not found", id)
}

// Current returns the selected address, hydrating it from storage on first use.
// A corrupt stored selection is discarded as ErrNoAddressSelected; read errors
// from the backend are returned.
func (b *Book) Current(ctx context.Context) (apiclient.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		return *b.current, nil
	}

	var addr apiclient.Address
	err := storage.GetJSON(ctx, b.storage, storage.KeyCurrentAddress, &addr)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apiclient.Address{}, ErrNoAddressSelected
	case isDecodeError(err):
		b.logger.Warn("discarding stored address", slog.Any("error", err))
		return apiclient.Address{}, ErrNoAddressSelected
	case err != nil:
		return apiclient.Address{}, fmt.Errorf("load current address: %w", err)
	}
	b.current = &addr
	return addr, nil
}

func isDecodeError(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ)
}

func (b *Book) clear(ctx context.Context) error {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
	return b.storage.Delete(ctx, storage.KeyCurrentAddress)
}

func (b *Book) check(addr apiclient.Address) error {
	err := b.validate.Struct(addr)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate address: %w", err)
	}
	fe := fieldErrs[0]
	msg := fieldMessages[fe.Field()][fe.Tag()]
	if msg == "" {
		msg = "Please enter valid " + strings.ToLower(fe.Field())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

func (b *Book) notify(ctx context.Context, level, text string) {
	if err := b.notifier.Send(ctx, notification.Toast{Level: level, Text: text}); err != nil {
		b.logger.Warn("toast delivery failed", slog.Any("error", err))
	}
}
