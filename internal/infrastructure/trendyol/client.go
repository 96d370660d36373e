package trendyol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/profitlens/backend/internal/domain"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a gateway response is read; detail payloads
// are large but bounded.
const maxBodyBytes = 8 << 20

// Client handles communication with the product-detail gateway. The gateway
// exposes two endpoint shapes for the same document; the first one that
// returns a parseable response wins.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new product-detail client. requestsPerSecond bounds
// load on the gateway across a whole listing scrape.
func NewClient(baseURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 10),
	}
}

// SetDebug toggles verbose request logging.
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[TRENDYOL] "+format, args...)
	}
}

// FetchProductDetail looks up one product and returns its seller records.
// It tries the primary endpoint shape, then the secondary; transient
// failures (5xx, 429) are retried once per endpoint with a short backoff.
// When neither shape yields a parseable document the caller gets
// ErrAPIFailure and proceeds without API sellers.
func (c *Client) FetchProductDetail(ctx context.Context, productID int64) ([]domain.SellerRecord, error) {
	endpoints := []string{
		fmt.Sprintf("%s/api/productDetail/%d", c.baseURL, productID),
		fmt.Sprintf("%s/api/productDetail?contentId=%d", c.baseURL, productID),
	}

	var lastErr error
	for _, reqURL := range endpoints {
		for attempt := 1; attempt <= 2; attempt++ {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter error: %w", err)
			}

			resp, err := c.doRequest(ctx, reqURL)
			if err != nil {
				c.debugLog("request error (attempt %d): %v", attempt, err)
				lastErr = err
				break // endpoint unreachable, try the other shape
			}

			body, readErr := readLimitedBody(resp.Body, maxBodyBytes)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: %v", domain.ErrAPIFailure, readErr)
				break
			}

			if resp.StatusCode != http.StatusOK {
				c.debugLog("status %d from %s (attempt %d)", resp.StatusCode, reqURL, attempt)
				lastErr = fmt.Errorf("%w: status %d", domain.ErrAPIFailure, resp.StatusCode)
				if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
					time.Sleep(exponentialBackoff(attempt))
					continue
				}
				break // 4xx on this shape, try the other one
			}

			var parsed productDetailResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				c.debugLog("decode error from %s: %v", reqURL, err)
				lastErr = fmt.Errorf("failed to decode response: %w", err)
				break
			}

			sellers := extractSellers(&parsed)
			c.debugLog("product %d: %d sellers from %s", productID, len(sellers), reqURL)
			return sellers, nil
		}
	}

	if lastErr == nil {
		lastErr = domain.ErrAPIFailure
	}
	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ProfitLens/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAPIFailure, err)
	}
	return resp, nil
}

// exponentialBackoff returns the delay before the given retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250*(1<<attempt)) * time.Millisecond
}

// readLimitedBody reads at most limit bytes of the response body
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
