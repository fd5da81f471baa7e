// README: OpenStreetMap Nominatim geocoder with the public instance's 1 req/s policy.
package location

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

	"golang.org/x/time/rate"

	"transferair/internal/types"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewNominatimClient builds a client. Nominatim rejects requests without a
// User-Agent, so an empty one is an error.
func NewNominatimClient(httpClient *http.Client, baseURL, userAgent string, timeout time.Duration) (*NominatimClient, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, fmt.Errorf("nominatim: user agent is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &NominatimClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

func (c *NominatimClient) Geocode(ctx context.Context, query string) (types.Point, error) {
	if strings.TrimSpace(query) == "" {
		return types.Point{}, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return types.Point{}, fmt.Errorf("nominatim: rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return types.Point{}, fmt.Errorf("nominatim: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.Point{}, fmt.Errorf("nominatim: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return types.Point{}, fmt.Errorf("nominatim: http %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return types.Point{}, fmt.Errorf("nominatim: decode: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return types.Point{}, fmt.Errorf("nominatim: bad coordinates %q,%q", results[0].Lat, results[0].Lon)
	}
	p := types.Point{Lat: lat, Lng: lng}
	if !validPoint(p) {
		return types.Point{}, fmt.Errorf("nominatim: coordinates out of range: %s", p)
	}
	return p, nil
}
