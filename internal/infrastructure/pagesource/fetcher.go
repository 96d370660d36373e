package pagesource

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/profitlens/backend/internal/domain"
)

// couponSelector locates the rendered coupon badge inside the buy-box area.
// The amount inside it is localized (1.234,56 style).
const couponSelector = `.coupons [data-testid='coupon-container'] .coupon-discount span`

// localizedNumberPattern matches a thousands-dotted decimal-comma amount
// first, falling back to a plain number with either separator.
var localizedNumberPattern = regexp.MustCompile(`\d{1,3}(?:\.\d{3})*(?:,\d+)?|\d+(?:[.,]\d+)?`)

// productPathPattern recognizes product links on listing pages.
var productPathPattern = regexp.MustCompile(`-p-\d+`)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Fetcher retrieves retailer pages over plain HTTP and reads what the page
// markup exposes: product links on listings and the rendered coupon badge.
type Fetcher struct {
	client        *resty.Client
	couponRetries int
	couponDelay   time.Duration
	debug         bool
}

type Config struct {
	Timeout       time.Duration
	CouponRetries int
	CouponDelay   time.Duration
}

func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.CouponRetries <= 0 {
		cfg.CouponRetries = 5
	}
	if cfg.CouponDelay <= 0 {
		cfg.CouponDelay = 300 * time.Millisecond
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", browserUserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")

	return &Fetcher{
		client:        client,
		couponRetries: cfg.CouponRetries,
		couponDelay:   cfg.CouponDelay,
	}
}

// SetDebug toggles verbose fetch logging.
func (f *Fetcher) SetDebug(enabled bool) {
	f.debug = enabled
}

func (f *Fetcher) debugLog(format string, args ...interface{}) {
	if f.debug {
		log.Printf("[PAGE] "+format, args...)
	}
}

// FetchPageSource downloads the raw HTML of a page.
func (f *Fetcher) FetchPageSource(ctx context.Context, pageURL string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPageFetchFailure, err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("%w: status %d", domain.ErrPageFetchFailure, resp.StatusCode())
	}
	f.debugLog("fetched %s (%d bytes)", pageURL, len(resp.Body()))
	return string(resp.Body()), nil
}

// CollectProductURLs extracts up to limit distinct product links from a
// listing page's HTML. Relative hrefs are resolved against the listing URL
// and links pointing off-host are dropped.
func (f *Fetcher) CollectProductURLs(html, baseURL string, limit int) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string

	doc.Find(`a[href*='-p-']`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || !productPathPattern.MatchString(href) {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			return true
		}

		full := resolved.String()
		if seen[full] {
			return true
		}
		seen[full] = true
		out = append(out, full)
		return limit <= 0 || len(out) < limit
	})

	f.debugLog("collected %d product links from %s", len(out), baseURL)
	return out
}

// ReadCollectableCoupon re-fetches the page and reads the coupon badge the
// storefront renders inside the buy-box. The badge is populated late, so the
// read is retried a few times with a short delay. A nil return means no
// rendered coupon could be found.
func (f *Fetcher) ReadCollectableCoupon(ctx context.Context, pageURL string) *float64 {
	for attempt := 0; attempt < f.couponRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(f.couponDelay):
			}
		}

		html, err := f.FetchPageSource(ctx, pageURL)
		if err != nil {
			f.debugLog("coupon read attempt %d: %v", attempt+1, err)
			continue
		}

		if v := couponFromDocument(html); v != nil {
			return v
		}
	}
	return nil
}

// couponFromDocument finds the coupon badge in rendered markup and parses its
// localized amount.
func couponFromDocument(html string) *float64 {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	text := strings.TrimSpace(doc.Find(couponSelector).First().Text())
	if text == "" {
		return nil
	}
	return parseLocalizedNumber(text)
}

// parseLocalizedNumber reads the first amount out of a localized string like
// "250 TL Kupon" or "1.234,56 TL". Thousands dots are stripped and the
// decimal comma becomes a point.
func parseLocalizedNumber(text string) *float64 {
	match := localizedNumberPattern.FindString(text)
	if match == "" {
		return nil
	}

	normalized := match
	if strings.Contains(normalized, ",") {
		normalized = strings.ReplaceAll(normalized, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
	} else if dots := strings.Count(normalized, "."); dots > 1 {
		normalized = strings.ReplaceAll(normalized, ".", "")
	} else if dots == 1 {
		// A single dot with exactly three trailing digits is a thousands
		// separator in this locale, not a decimal point.
		if idx := strings.Index(normalized, "."); len(normalized)-idx-1 == 3 {
			normalized = strings.ReplaceAll(normalized, ".", "")
		}
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}
