package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/profitlens/backend/internal/domain"
)

// productIDPattern recovers the numeric product id from a product-detail
// URL path segment.
var productIDPattern = regexp.MustCompile(`-p-(\d+)`)

// ScrapeServiceConfig holds configuration for the scrape service
type ScrapeServiceConfig struct {
	Timeout      time.Duration
	ListingLimit int
}

// ScrapeService orchestrates one scrape request: page snapshot, per-product
// detail lookups and reconciliation. A request runs as a single sequential
// flow; detail fetches are never fanned out, to bound load on the remote
// gateway.
type ScrapeService struct {
	pages        domain.PageSource
	detail       domain.ProductDetailClient
	snapshots    domain.SnapshotStore
	extraction   *ExtractionService
	reconciler   *ReconcileService
	timeout      time.Duration
	listingLimit int
}

// NewScrapeService creates a new scrape service with dependencies
func NewScrapeService(
	pages domain.PageSource,
	detail domain.ProductDetailClient,
	snapshots domain.SnapshotStore,
	config ScrapeServiceConfig,
) *ScrapeService {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 12 * time.Second
	}
	limit := config.ListingLimit
	if limit <= 0 {
		limit = 10
	}

	return &ScrapeService{
		pages:        pages,
		detail:       detail,
		snapshots:    snapshots,
		extraction:   NewExtractionService(),
		reconciler:   NewReconcileService(),
		timeout:      timeout,
		listingLimit: limit,
	}
}

// ProductIDFromURL parses the product id out of a product-detail URL.
func ProductIDFromURL(pageURL string) (int64, bool) {
	s, ok := firstMatch(productIDPattern, pageURL)
	if !ok {
		return 0, false
	}
	return parseIDField(s)
}

// Scrape runs one scrape request against the given page URL. URLs matching
// a product-detail path yield one product's reconciled sellers; any other
// URL is treated as a listing and scraped product by product. One deadline
// bounds the whole exchange; on expiry the caller gets a single terminal
// failure and no partial rows.
func (s *ScrapeService) Scrape(ctx context.Context, pageURL string, cost float64, limit int) (*domain.ScrapeResult, error) {
	if pageURL == "" {
		return nil, domain.ErrInvalidRequest
	}
	if limit <= 0 || limit > s.listingLimit {
		limit = s.listingLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The page source is fetched once; extraction failures degrade to an
	// empty embedded view rather than failing the scrape, because the API
	// path can still produce rows.
	html, err := s.pages.FetchPageSource(ctx, pageURL)
	if err != nil {
		log.Printf("[SCRAPE] page source unavailable for %s: %v", pageURL, err)
		html = ""
	}

	snapshot, err := s.snapshots.GetOrBuild(pageURL, func() (*domain.ExtractionSnapshot, error) {
		return s.extraction.BuildSnapshot(html, pageURL, func() *float64 {
			return s.pages.ReadCollectableCoupon(ctx, pageURL)
		}), nil
	})
	if err != nil {
		snapshot = &domain.ExtractionSnapshot{}
	}

	var result *domain.ScrapeResult
	if _, ok := ProductIDFromURL(pageURL); ok {
		result, err = s.scrapeProduct(ctx, pageURL, snapshot, cost)
	} else {
		result, err = s.scrapeListing(ctx, pageURL, html, snapshot, cost, limit)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", domain.ErrScrapeTimeout, err)
		}
		return nil, err
	}
	return result, nil
}

func (s *ScrapeService) scrapeProduct(ctx context.Context, pageURL string, snapshot *domain.ExtractionSnapshot, cost float64) (*domain.ScrapeResult, error) {
	productID, ok := ProductIDFromURL(pageURL)
	if !ok {
		return nil, fmt.Errorf("%w: no product id in %s", domain.ErrProductNotFound, pageURL)
	}

	rows := s.reconcileOne(ctx, productID, pageURL, snapshot, cost)
	if len(rows) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrNoSellers
	}

	return &domain.ScrapeResult{
		Mode:      domain.ScrapeModeProductDetail,
		RowsCount: len(rows),
		Rows:      rows,
	}, nil
}

// scrapeListing collects product URLs from the listing page and reconciles
// each product sequentially. The embedded view comes from the listing page
// snapshot; rows preserve the order in which product URLs were discovered.
func (s *ScrapeService) scrapeListing(ctx context.Context, pageURL, html string, snapshot *domain.ExtractionSnapshot, cost float64, limit int) (*domain.ScrapeResult, error) {
	urls := s.pages.CollectProductURLs(html, pageURL, limit)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no product links on %s", domain.ErrProductNotFound, pageURL)
	}

	var rows []domain.ScrapeRow
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		productID, ok := ProductIDFromURL(u)
		if !ok {
			continue
		}
		rows = append(rows, s.reconcileOne(ctx, productID, u, snapshot, cost)...)
	}

	if len(rows) == 0 {
		return nil, domain.ErrNoSellers
	}
	return &domain.ScrapeResult{
		Mode:      domain.ScrapeModeListing,
		RowsCount: len(rows),
		Rows:      rows,
	}, nil
}

// reconcileOne merges one product's API sellers with the embedded view. A
// detail fetch failure means "no sellers from API"; the embedded path may
// still yield rows.
func (s *ScrapeService) reconcileOne(ctx context.Context, productID int64, productURL string, snapshot *domain.ExtractionSnapshot, cost float64) []domain.ScrapeRow {
	apiRows, err := s.detail.FetchProductDetail(ctx, productID)
	if err != nil {
		log.Printf("[SCRAPE] detail fetch failed for product %d: %v", productID, err)
		apiRows = nil
	}

	merged := s.reconciler.Merge(apiRows, snapshot, productURL)

	rows := make([]domain.ScrapeRow, 0, len(merged))
	for _, rec := range merged {
		price := 0.0
		if rec.Price != nil {
			price = *rec.Price
		}
		rows = append(rows, domain.ScrapeRow{
			ProductID:    productID,
			ProductURL:   productURL,
			SellerRecord: rec,
			Profit:       round2(price - cost),
		})
	}
	return rows
}

// Invalidate drops the cached page snapshot; the caller signals navigation
// to a different page.
func (s *ScrapeService) Invalidate() {
	s.snapshots.Invalidate()
}
