package domain

import "math"

// NormalizeScore maps a raw seller score onto the 0-10 scale. Sources report
// either 0-5 or 0-10; a value at or below 5 is assumed to be 5-point and
// doubled, rounded to one decimal.
func NormalizeScore(raw float64) float64 {
	if raw <= 5 {
		return math.Round(raw*2*10) / 10
	}
	return raw
}

// SellerRecord represents one seller's offer for a product. Optional fields
// are pointers; nil means the source never produced a usable value.
type SellerRecord struct {
	MerchantID    int64    `json:"merchantId"`
	MerchantName  string   `json:"merchantName,omitempty"`
	MerchantScore *float64 `json:"merchantScore,omitempty"` // normalized to a 0-10 scale
	Price         *float64 `json:"price,omitempty"`
	Coupon        *float64 `json:"coupon,omitempty"` // collectible/auto-applied discount, positive or absent
	Quantity      *int     `json:"quantity,omitempty"`
	SourceURL     string   `json:"url,omitempty"` // listing URL variant carrying this seller's id
	IsBuybox      bool     `json:"isBuybox"`
	DisplayOrder  *int     `json:"-"` // embedded-source position hint; -1 is the buy-box block itself
}

// ExtractionSnapshot is the per-page result of scanning the embedded page
// source. It is built as a whole unit and never partially mutated; a
// navigation to a different URL invalidates it entirely.
type ExtractionSnapshot struct {
	// Rows maps merchant id to the seller record recovered from the page
	// markup. No two entries share an id.
	Rows map[int64]SellerRecord

	// Quantities maps merchant id to the effective stock quantity.
	Quantities map[int64]int

	// Coupons is the page-wide collectable coupon fallback map (maximum
	// value seen per merchant).
	Coupons map[int64]float64

	// DisplayOrder maps merchant id to its position in the embedded seller
	// array. -1 marks the buy-box block.
	DisplayOrder map[int64]int

	// BuyboxID is the resolved buy-box merchant id for the page; values
	// <= 0 mean the page did not resolve one.
	BuyboxID int64
}

// ScrapeRow is one output row of a scrape: a merged seller record tied to the
// product it was scraped for, with the simple per-row profit attached.
type ScrapeRow struct {
	ProductID  int64  `json:"productId"`
	ProductURL string `json:"productUrl"`
	SellerRecord
	Profit float64 `json:"profit"`
}

// ScrapeResult is the response payload for one scrape request.
type ScrapeResult struct {
	Mode      string      `json:"mode"` // "productDetail" or "listing"
	RowsCount int         `json:"rowsCount"`
	Rows      []ScrapeRow `json:"rows"`
}

const (
	ScrapeModeProductDetail = "productDetail"
	ScrapeModeListing       = "listing"
)
