// README: OSRM driving-distance router.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"transferair/internal/types"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

type OSRMRouter struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

func NewOSRMRouter(httpClient *http.Client, baseURL string, timeout time.Duration) *OSRMRouter {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OSRMRouter{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (r *OSRMRouter) RoadDistanceKm(ctx context.Context, from, to types.Point) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// OSRM takes lon,lat pairs.
	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		r.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("osrm: build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("osrm: do request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Routes  []struct {
			Distance float64 `json:"distance"`
		} `json:"routes"`
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return 0, fmt.Errorf("osrm: http %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("osrm: decode: %w", err)
	}
	if payload.Code != "Ok" || len(payload.Routes) == 0 {
		return 0, fmt.Errorf("%w: osrm code %s %s", ErrNoRoute, payload.Code, payload.Message)
	}
	return payload.Routes[0].Distance / 1000, nil
}
