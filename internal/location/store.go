// Package location keeps the service city the user books collections in.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zet-health/zet_booking/internal/notification"
	"github.com/zet-health/zet_booking/internal/storage"
)

// CityManual marks a selection typed in by the user or taken from detection
// rather than picked from the catalog.
const CityManual = "manual"

// DefaultLabel is shown while nothing is selected.
const DefaultLabel = "Select Location"

var (
	ErrUnknownCity         = errors.New("unknown city")
	ErrEmptyLocation       = errors.New("location name is required")
	ErrServiceUnavailable  = errors.New("Service is not available in your current location")
	ErrDetectionInProgress = errors.New("location detection already in progress")
	ErrDetectionDisabled   = errors.New("location detection is not configured")
)

// SelectedLocation is persisted under the selectedLocation key.
type SelectedLocation struct {
	CityKey     string `json:"city"`
	SubLocation string `json:"subLocation"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// DetectedLocation is the last geolocation result.
type DetectedLocation struct {
	Coordinates
	City               string
	State              string
	IsServiceAvailable bool
}

// State is a copy of the store's fields.
type State struct {
	Selected  *SelectedLocation
	Detected  *DetectedLocation
	Detecting bool
	Error     string
}

// Store owns the selectedLocation storage key.
type Store struct {
	storage    storage.Storage
	geolocator Geolocator
	geocoder   ReverseGeocoder
	notifier   notification.Notifier
	logger     *slog.Logger

	mu       sync.RWMutex
	selected *SelectedLocation
	detected *DetectedLocation
	loading  bool
	err      string
}

// Option configures a Store.
type Option func(*Store)

// WithDetection enables DetectLocation.
func WithDetection(g Geolocator, rg ReverseGeocoder) Option {
	return func(s *Store) {
		s.geolocator = g
		s.geocoder = rg
	}
}

// WithNotifier sets where detection results are announced.
func WithNotifier(n notification.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// NewStore creates an empty location store.
func NewStore(st storage.Storage, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{storage: st, logger: logger, notifier: notification.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := State{Detecting: s.loading, Error: s.err}
	if s.selected != nil {
		sel := *s.selected
		out.Selected = &sel
	}
	if s.detected != nil {
		det := *s.detected
		out.Detected = &det
	}
	return out
}

// SetLocation selects a catalog city. An empty sub-location selects the
// city's first area.
func (s *Store) SetLocation(ctx context.Context, cityKey, subLocation string) (SelectedLocation, error) {
	city, ok := LookupCity(cityKey)
	if !ok {
		return SelectedLocation{}, fmt.Errorf("%w: %q", ErrUnknownCity, cityKey)
	}
	sel := SelectedLocation{CityKey: city.Key, SubLocation: subLocation, Name: city.Name, DisplayName: city.Name}
	if subLocation == "" {
		sel.SubLocation = city.SubLocations[0]
	} else {
		sel.DisplayName = subLocation + ", " + city.Name
	}
	return sel, s.selectLocation(ctx, sel)
}

// SetManualLocation selects a free-form location name.
func (s *Store) SetManualLocation(ctx context.Context, name string) (SelectedLocation, error) {
	if normalize(name) == "" {
		return SelectedLocation{}, ErrEmptyLocation
	}
	sel := manual(name)
	return sel, s.selectLocation(ctx, sel)
}

// DetectLocation resolves the device position to a city and selects it when
// the city is serviceable. Only one detection runs at a time.
func (s *Store) DetectLocation(ctx context.Context) (DetectedLocation, error) {
	if s.geolocator == nil || s.geocoder == nil {
		return DetectedLocation{}, ErrDetectionDisabled
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return DetectedLocation{}, ErrDetectionInProgress
	}
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	det, err := s.detect(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		s.mu.Unlock()
		s.notify(ctx, notification.LevelError, err.Error())
		return DetectedLocation{}, err
	}
	s.detected = &det
	s.mu.Unlock()

	if !det.IsServiceAvailable {
		s.setError(ErrServiceUnavailable.Error())
		s.notify(ctx, notification.LevelError, ErrServiceUnavailable.Error())
		return det, ErrServiceUnavailable
	}
	if err := s.selectLocation(ctx, manual(det.City)); err != nil {
		return det, err
	}
	s.notify(ctx, notification.LevelSuccess, "Location detected: "+det.City)
	return det, nil
}

func (s *Store) detect(ctx context.Context) (DetectedLocation, error) {
	at, err := s.geolocator.Locate(ctx)
	if err != nil {
		return DetectedLocation{}, err
	}
	place, err := s.geocoder.Reverse(ctx, at)
	if err != nil {
		s.logger.Warn("reverse geocode failed", slog.Any("error", err))
		return DetectedLocation{}, errors.New("Failed to get location details")
	}
	_, available := MatchCity(place.City)
	return DetectedLocation{
		Coordinates:        at,
		City:               place.City,
		State:              place.State,
		IsServiceAvailable: available,
	}, nil
}

// ClearLocation drops the selection and detection result.
func (s *Store) ClearLocation(ctx context.Context) error {
	s.mu.Lock()
	s.selected = nil
	s.detected = nil
	s.err = ""
	s.mu.Unlock()
	return s.storage.Delete(ctx, storage.KeySelectedLocation)
}

// LoadPersisted hydrates the selection. A corrupt value is logged and left
// unselected.
func (s *Store) LoadPersisted(ctx context.Context) error {
	var sel SelectedLocation
	err := storage.GetJSON(ctx, s.storage, storage.KeySelectedLocation, &sel)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		s.logger.Warn("discarding persisted location", slog.Any("error", err))
		return nil
	}
	s.mu.Lock()
	s.selected = &sel
	s.mu.Unlock()
	return nil
}

// CurrentLabel is the header text: the selected area, else the detected
// city, else DefaultLabel.
func (s *Store) CurrentLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.selected != nil && s.selected.SubLocation != "":
		return s.selected.SubLocation
	case s.selected != nil && s.selected.DisplayName != "":
		return s.selected.DisplayName
	case s.detected != nil && s.detected.City != "":
		return s.detected.City
	default:
		return DefaultLabel
	}
}

func (s *Store) selectLocation(ctx context.Context, sel SelectedLocation) error {
	if err := storage.SetJSON(ctx, s.storage, storage.KeySelectedLocation, sel); err != nil {
		return fmt.Errorf("persist location: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &sel
	s.err = ""
	return nil
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

func (s *Store) notify(ctx context.Context, level, text string) {
	if err := s.notifier.Send(ctx, notification.Toast{Level: level, Text: text}); err != nil {
		s.logger.Warn("toast delivery failed", slog.Any("error", err))
	}
}

func manual(name string) SelectedLocation {
	return SelectedLocation{CityKey: CityManual, SubLocation: name, Name: name, DisplayName: name}
}
