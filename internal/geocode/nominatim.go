package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BearBump/LockerBox/internal/cache"
	"github.com/pkg/errors"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "LockerBox/1.0"
	rlKey          = "rl:geocode"
)

// Result is one forward-geocoding candidate.
type Result struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Client resolves free-text addresses against Nominatim. Responses are
// cached and outbound calls are rate limited; Nominatim's usage policy
// bans burst traffic.
type Client struct {
	httpc   *http.Client
	baseURL string

	cache    cache.BytesCache
	cacheTTL time.Duration

	rl       RateLimiter
	rlPerMin int64
}

func New(httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpc:   httpc,
		baseURL: defaultBaseURL,
	}
}

func (c *Client) WithBaseURL(u string) *Client {
	if u != "" {
		c.baseURL = u
	}
	return c
}

func (c *Client) WithCache(bc cache.BytesCache, ttl time.Duration) *Client {
	c.cache = bc
	c.cacheTTL = ttl
	return c
}

func (c *Client) WithRateLimit(rl RateLimiter, perMinute int64) *Client {
	c.rl = rl
	c.rlPerMin = perMinute
	return c
}

// ErrRateLimited is returned when the local limiter refuses the call.
// Callers should surface it as a retry-later condition, not a failure.
var ErrRateLimited = errors.New("geocode rate limit exceeded")

func (c *Client) Geocode(ctx context.Context, query string) ([]Result, error) {
	if query == "" {
		return nil, errors.New("query is empty")
	}

	cacheKey := "lockerbox:geocode:" + query
	if c.cache != nil && c.cacheTTL > 0 {
		if b, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok {
			var cached []Result
			if json.Unmarshal(b, &cached) == nil {
				return cached, nil
			}
		}
	}

	if c.rl != nil && c.rlPerMin > 0 {
		minuteKey := rlKey + ":" + time.Now().UTC().Format("200601021504")
		allowed, _, err := c.rl.Allow(ctx, minuteKey, c.rlPerMin, 70*time.Second)
		if err == nil && !allowed {
			return nil, ErrRateLimited
		}
	}

	results, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if b, err := json.Marshal(results); err == nil {
			_ = c.cache.Set(ctx, cacheKey, b, c.cacheTTL)
		}
	}
	return results, nil
}

func (c *Client) search(ctx context.Context, query string) ([]Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build geocode request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "geocode request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read geocode response")
	}

	// Nominatim returns lat/lon as strings.
	var raw []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "decode geocode response")
	}

	results := make([]Result, 0, len(raw))
	for _, r := range raw {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		results = append(results, Result{Lat: lat, Lon: lon, DisplayName: r.DisplayName})
	}
	return results, nil
}
