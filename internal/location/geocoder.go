package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Coordinates is a point reported by a Geolocator.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geolocator reports the device position.
type Geolocator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// ReverseGeocoder resolves coordinates to a city and state name.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, at Coordinates) (Place, error)
}

// Place is the result of a reverse geocode.
type Place struct {
	City  string
	State string
}

// ErrPositionUnavailable is returned by a Geolocator that cannot produce a
// position.
var ErrPositionUnavailable = errors.New("location information is unavailable")

// FixedGeolocator returns a preconfigured position. The CLI uses it with
// coordinates passed as flags.
type FixedGeolocator struct {
	At  Coordinates
	Set bool
}

// Locate implements Geolocator.
func (g FixedGeolocator) Locate(context.Context) (Coordinates, error) {
	if !g.Set {
		return Coordinates{}, ErrPositionUnavailable
	}
	return g.At, nil
}

// HTTPGeocoder calls a bigdatacloud-compatible reverse-geocode endpoint.
type HTTPGeocoder struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPGeocoder creates a geocoder for endpoint. A zero timeout falls back
// to ten seconds.
func NewHTTPGeocoder(endpoint string, timeout time.Duration) *HTTPGeocoder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGeocoder{endpoint: endpoint, httpClient: &http.Client{Timeout: timeout}}
}

type reverseGeocodeResponse struct {
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
}

// Reverse implements ReverseGeocoder. The city falls back to the locality
// when the provider leaves it empty.
func (g *HTTPGeocoder) Reverse(ctx context.Context, at Coordinates) (Place, error) {
	u, err := url.Parse(g.endpoint)
	if err != nil {
		return Place{}, fmt.Errorf("parse geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Set("localityLanguage", "en")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Place{}, fmt.Errorf("reverse geocode: HTTP %d", resp.StatusCode)
	}

	var body reverseGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Place{}, fmt.Errorf("decode geocoder response: %w", err)
	}
	city := body.City
	if city == "" {
		city = body.Locality
	}
	return Place{City: city, State: body.PrincipalSubdivision}, nil
}
