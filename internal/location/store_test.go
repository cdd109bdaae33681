package location

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zet-health/zet_booking/internal/logging"
	"github.com/zet-health/zet_booking/internal/storage"
)

type stubGeocoder struct {
	place Place
	err   error
	calls int
	block chan struct{}
}

func (g *stubGeocoder) Reverse(ctx context.Context, at Coordinates) (Place, error) {
	g.calls++
	if g.block != nil {
		<-g.block
	}
	return g.place, g.err
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *storage.Memory) {
	t.Helper()
	st := storage.NewMemory()
	return NewStore(st, logging.Discard(), opts...), st
}

func TestSetLocationDefaultsToFirstSubLocation(t *testing.T) {
	ctx := context.Background()
	s, st := newTestStore(t)

	sel, err := s.SetLocation(ctx, "odisha", "")
	require.NoError(t, err)
	assert.Equal(t, "Bhubaneswar", sel.SubLocation)
	assert.Equal(t, "Odisha", sel.DisplayName)

	raw, err := st.Get(ctx, storage.KeySelectedLocation)
	require.NoError(t, err)
	var persisted SelectedLocation
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, sel, persisted)
	assert.Equal(t, "Bhubaneswar", s.CurrentLabel())
}

func TestSetLocationWithSubLocation(t *testing.T) {
	s, _ := newTestStore(t)
	sel, err := s.SetLocation(context.Background(), "mumbai", "Thane")
	require.NoError(t, err)
	assert.Equal(t, "Thane, Mumbai", sel.DisplayName)
	assert.Equal(t, "mumbai", sel.CityKey)
}

func TestSetLocationUnknownCity(t *testing.T) {
	s, st := newTestStore(t)
	_, err := s.SetLocation(context.Background(), "chennai", "")
	require.ErrorIs(t, err, ErrUnknownCity)
	assert.Empty(t, st.Keys())
	assert.Equal(t, DefaultLabel, s.CurrentLabel())
}

func TestSetManualLocation(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.SetManualLocation(context.Background(), "  ")
	require.ErrorIs(t, err, ErrEmptyLocation)

	sel, err := s.SetManualLocation(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, CityManual, sel.CityKey)
	assert.Equal(t, "Pune", s.CurrentLabel())
}

func TestMatchCity(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "New Delhi", want: "delhi", ok: true},
		{in: "Bangalore Urban", want: "bangalore", ok: true},
		{in: "Hyder", want: "hyderabad", ok: true},
		{in: "Mumbai", want: "mumbai", ok: true},
		{in: "Chennai", ok: false},
		{in: "", ok: false},
		{in: "   ", ok: false},
	}
	for _, tc := range cases {
		city, ok := MatchCity(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, city.Key, tc.in)
		}
	}
}

func TestDetectLocationSelectsServiceableCity(t *testing.T) {
	ctx := context.Background()
	geo := &stubGeocoder{place: Place{City: "New Delhi", State: "Delhi"}}
	s, _ := newTestStore(t, WithDetection(FixedGeolocator{At: Coordinates{28.61, 77.2}, Set: true}, geo))

	det, err := s.DetectLocation(ctx)
	require.NoError(t, err)
	assert.True(t, det.IsServiceAvailable)

	state := s.State()
	require.NotNil(t, state.Selected)
	assert.Equal(t, "New Delhi", state.Selected.DisplayName)
	assert.Equal(t, CityManual, state.Selected.CityKey)
	assert.False(t, state.Detecting)
	assert.Empty(t, state.Error)
}

func TestDetectLocationOutsideServiceArea(t *testing.T) {
	geo := &stubGeocoder{place: Place{City: "Chennai", State: "Tamil Nadu"}}
	s, st := newTestStore(t, WithDetection(FixedGeolocator{At: Coordinates{13.08, 80.27}, Set: true}, geo))

	det, err := s.DetectLocation(context.Background())
	require.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, "Chennai", det.City)

	state := s.State()
	assert.Nil(t, state.Selected)
	assert.Equal(t, "Service is not available in your current location", state.Error)
	assert.Equal(t, "Chennai", s.CurrentLabel())
	assert.Empty(t, st.Keys())
}

func TestDetectLocationWithoutPosition(t *testing.T) {
	geo := &stubGeocoder{}
	s, _ := newTestStore(t, WithDetection(FixedGeolocator{}, geo))

	_, err := s.DetectLocation(context.Background())
	require.ErrorIs(t, err, ErrPositionUnavailable)
	assert.Equal(t, 0, geo.calls)
}

func TestDetectLocationGeocoderFailure(t *testing.T) {
	geo := &stubGeocoder{err: errors.New("dial tcp: refused")}
	s, _ := newTestStore(t, WithDetection(FixedGeolocator{Set: true}, geo))

	_, err := s.DetectLocation(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to get location details", s.State().Error)
}

func TestDetectLocationSingleFlight(t *testing.T) {
	geo := &stubGeocoder{place: Place{City: "Mumbai"}, block: make(chan struct{})}
	s, _ := newTestStore(t, WithDetection(FixedGeolocator{Set: true}, geo))

	done := make(chan error, 1)
	go func() {
		_, err := s.DetectLocation(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return s.State().Detecting }, time.Second, time.Millisecond)

	_, err := s.DetectLocation(context.Background())
	require.ErrorIs(t, err, ErrDetectionInProgress)

	close(geo.block)
	require.NoError(t, <-done)
}

func TestDetectLocationDisabled(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.DetectLocation(context.Background())
	require.ErrorIs(t, err, ErrDetectionDisabled)
}

func TestClearAndLoadPersisted(t *testing.T) {
	ctx := context.Background()
	s, st := newTestStore(t)
	_, err := s.SetLocation(ctx, "hyderabad", "Gachibowli")
	require.NoError(t, err)

	reloaded := NewStore(st, logging.Discard())
	require.NoError(t, reloaded.LoadPersisted(ctx))
	assert.Equal(t, "Gachibowli", reloaded.CurrentLabel())

	require.NoError(t, reloaded.ClearLocation(ctx))
	assert.Equal(t, DefaultLabel, reloaded.CurrentLabel())
	_, err = st.Get(ctx, storage.KeySelectedLocation)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoadPersistedIgnoresCorruptValue(t *testing.T) {
	ctx := context.Background()
	s, st := newTestStore(t)
	require.NoError(t, st.Set(ctx, storage.KeySelectedLocation, "{not json"))
	require.NoError(t, s.LoadPersisted(ctx))
	assert.Nil(t, s.State().Selected)
}

func TestHTTPGeocoder(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"latitude":         q.Get("latitude"),
			"longitude":        q.Get("longitude"),
			"localityLanguage": q.Get("localityLanguage"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"","locality":"Secunderabad","principalSubdivision":"Telangana"}`))
	}))
	defer server.Close()

	g := NewHTTPGeocoder(server.URL+"/data/reverse-geocode-client", time.Second)
	place, err := g.Reverse(context.Background(), Coordinates{Latitude: 17.44, Longitude: 78.5})
	require.NoError(t, err)
	assert.Equal(t, Place{City: "Secunderabad", State: "Telangana"}, place)
	assert.Equal(t, "17.44", gotQuery["latitude"])
	assert.Equal(t, "78.5", gotQuery["longitude"])
	assert.Equal(t, "en", gotQuery["localityLanguage"])
}

func TestHTTPGeocoderStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewHTTPGeocoder(server.URL, time.Second).Reverse(context.Background(), Coordinates{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
}
