package vendors

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"
)

const userAgent = "LockerBox/1.0"

// NewHTTPClient builds the client every adapter shares: bounded connect and
// total-transfer budgets, redirects followed, TLS verified.
func NewHTTPClient(connectTimeout, totalTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	if totalTimeout <= 0 {
		totalTimeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: totalTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			TLSHandshakeTimeout: connectTimeout,
		},
	}
}

// Get performs a single GET and returns the body. Any transport error or
// non-2xx status comes back as *FetchError; callers never retry here.
func Get(ctx context.Context, httpc *http.Client, vendor, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Vendor: vendor, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, &FetchError{Vendor: vendor, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, &FetchError{Vendor: vendor, URL: url, Status: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Vendor: vendor, URL: url, Err: err}
	}
	return b, nil
}
