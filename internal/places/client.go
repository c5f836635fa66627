package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/teamup-app/teamup-backend/internal/domain"
)

const (
	defaultLimit = 5
	userAgent    = "TeamUp/1.0"
)

// Place is a geocoding match usable as an event location
type Place struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Client queries a Nominatim-compatible search endpoint
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a geocoding client. transport is typically the offline
// caching transport so repeated lookups are served from cache.
func NewClient(baseURL string, transport http.RoundTripper) *Client {
	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   10 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(defaultLimit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoder request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: geocoder request failed: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: geocoder returned %d", domain.ErrServiceUnavailable, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lng, errLng := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		places = append(places, Place{Address: r.DisplayName, Lat: lat, Lng: lng})
	}
	return places, nil
}
