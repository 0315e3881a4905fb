package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// NominatimConfig holds configuration for the Nominatim client.
type NominatimConfig struct {
	BaseURL   string
	UserAgent string // Required by the Nominatim usage policy
	Timeout   time.Duration
}

// Nominatim geocodes through an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatim creates a new Nominatim client.
func NewNominatim(cfg NominatimConfig) *Nominatim {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Nominatim{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the best match for q.
func (n *Nominatim) Geocode(ctx context.Context, q Query) (Point, error) {
	if q.IsEmpty() {
		return Point{}, ErrNotFound
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if street := strings.TrimSpace(q.HouseNumber + " " + q.Street); street != "" {
		params.Set("street", street)
	}
	if q.City != "" {
		params.Set("city", q.City)
	}
	if q.PostalCode != "" {
		params.Set("postalcode", q.PostalCode)
	}
	if q.CountryCode != "" {
		params.Set("countrycodes", strings.ToLower(q.CountryCode))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Point{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Point{}, fmt.Errorf("geocode: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Point{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(places) == 0 {
		return Point{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: invalid latitude %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: invalid longitude %q: %w", places[0].Lon, err)
	}
	return Point{Lng: lng, Lat: lat}, nil
}

var _ Geocoder = (*Nominatim)(nil)
