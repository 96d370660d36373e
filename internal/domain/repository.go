package domain

import "context"

// ProductDetailClient defines the interface for the remote product-detail
// lookup. A nil result with a nil error means neither endpoint shape
// produced a parseable document; the caller proceeds without API sellers.
type ProductDetailClient interface {
	FetchProductDetail(ctx context.Context, productID int64) ([]SellerRecord, error)
}

// PageSource defines the interface for reading the raw page and the pieces
// of it the extraction engine cannot recover from text alone.
type PageSource interface {
	FetchPageSource(ctx context.Context, pageURL string) (string, error)
	CollectProductURLs(html, baseURL string, limit int) []string
	ReadCollectableCoupon(ctx context.Context, pageURL string) *float64
}

// SnapshotStore holds the extraction snapshot for the page currently being
// scraped. It has exactly two states: empty, or populated for one URL.
type SnapshotStore interface {
	GetOrBuild(pageURL string, build func() (*ExtractionSnapshot, error)) (*ExtractionSnapshot, error)
	Invalidate()
}
