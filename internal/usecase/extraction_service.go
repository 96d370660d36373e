package usecase

import (
	"encoding/json"
	"net/url"
	"regexp"

	"github.com/profitlens/backend/internal/domain"
)

// sellerArrayKeys are the embedded array field names that carry generic
// seller objects. Each occurrence of each key is scanned independently.
var sellerArrayKeys = []string{"otherMerchants", "sellers", "merchants", "merchantListings"}

// buyboxBlockKeys are the embedded object field names probed, in order, for
// the page-level buy-box merchant id.
var buyboxBlockKeys = []string{"buyboxMerchant", "merchantListing", "merchantInfo", "merchant"}

var buyboxIDFieldPattern = regexp.MustCompile(`"(?:merchantId|id)"\s*:\s*(\d{1,12})`)

// ExtractionService recovers the embedded-source seller view from a page's
// raw HTML/script text. It is a best-effort lexical engine: malformed or
// missing blocks degrade to absent fields, never to errors.
type ExtractionService struct{}

func NewExtractionService() *ExtractionService {
	return &ExtractionService{}
}

// embeddedRow pairs a seller record with its collectable-only coupon value,
// which decides duplicate-block replacement but never reaches an output row.
type embeddedRow struct {
	rec         domain.SellerRecord
	collectable *float64
}

// BuildSnapshot scans the page text once and returns the whole embedded
// view: seller rows, quantity/coupon/display-order maps and the resolved
// buy-box id. renderedCoupon reads the live coupon element; it is invoked
// only when the buy-box row still has no coupon after every cheaper source
// (it may block for several retry rounds).
func (s *ExtractionService) BuildSnapshot(html, pageURL string, renderedCoupon func() *float64) *domain.ExtractionSnapshot {
	buyboxID := buyboxMerchantIDFromURL(pageURL)
	if buyboxID <= 0 {
		buyboxID = extractBuyboxMerchantID(html)
	}

	collectables := BuildCollectableCouponMap(html)
	quantities := BuildMerchantQuantityMap(html, buyboxID)

	rows := make(map[int64]embeddedRow)
	order := make(map[int64]int)

	if buybox, ok := s.extractBuyboxRow(html, quantities); ok {
		id := buybox.rec.MerchantID
		if buybox.collectable == nil {
			if v, ok := collectables[id]; ok {
				buybox.collectable = &v
			}
		}
		if buybox.rec.Coupon == nil && buybox.collectable != nil && *buybox.collectable > 0 {
			c := round2(*buybox.collectable)
			buybox.rec.Coupon = &c
		}
		if buybox.rec.Coupon == nil && renderedCoupon != nil {
			buybox.rec.Coupon = renderedCoupon()
		}

		if buybox.rec.Quantity != nil {
			if prev, ok := quantities[id]; !ok || *buybox.rec.Quantity > prev {
				quantities[id] = *buybox.rec.Quantity
			}
		}

		existing, ok := rows[id]
		if !ok || lowerPrice(buybox.rec.Price, existing.rec.Price) {
			rows[id] = buybox
		}
		if _, ok := order[id]; !ok {
			order[id] = -1 // the buy-box block sorts before every array hint
		}
	}

	var blocks []string
	for _, key := range sellerArrayKeys {
		blocks = append(blocks, ExtractObjectBlocksFromArray(html, key)...)
	}

	for idx, block := range blocks {
		if !isSellerBlock(block) {
			continue
		}
		h, ok := harvestSellerBlock(block)
		if !ok {
			continue
		}

		var quantity *int
		if q, ok := quantities[h.merchantID]; ok {
			quantity = &q
		}

		coupon := couponFromPrices(h.selling, h.discounted)
		if coupon == nil && h.collectable != nil && *h.collectable > 0 {
			c := round2(*h.collectable)
			coupon = &c
		}
		if coupon == nil {
			if v, ok := collectables[h.merchantID]; ok && v > 0 {
				c := round2(v)
				coupon = &c
			}
		}

		// A row needs at least a name and a price to count as a seller.
		if h.name == "" || h.price == nil {
			continue
		}

		next := embeddedRow{
			rec: domain.SellerRecord{
				MerchantID:    h.merchantID,
				MerchantName:  h.name,
				MerchantScore: h.score,
				Price:         h.price,
				Coupon:        coupon,
				Quantity:      quantity,
				SourceURL:     h.url,
			},
			collectable: h.collectable,
		}

		existing, ok := rows[h.merchantID]
		switch {
		case !ok:
			rows[h.merchantID] = next
		case lowerPrice(next.rec.Price, existing.rec.Price),
			existing.collectable == nil && next.collectable != nil:
			rows[h.merchantID] = next
		}
		if _, ok := order[h.merchantID]; !ok {
			order[h.merchantID] = idx
		}
	}

	snapshot := &domain.ExtractionSnapshot{
		Rows:         make(map[int64]domain.SellerRecord, len(rows)),
		Quantities:   quantities,
		Coupons:      collectables,
		DisplayOrder: order,
		BuyboxID:     buyboxID,
	}
	for id, row := range rows {
		snapshot.Rows[id] = row.rec
	}
	return snapshot
}

// extractBuyboxRow recovers the showcased seller from the merchantListing
// block, whose merchant identity lives one level down in a merchant
// sub-object while prices and URL sit on the outer block.
func (s *ExtractionService) extractBuyboxRow(html string, quantities map[int64]int) (embeddedRow, bool) {
	listing, ok := ExtractObjectBlock(html, "merchantListing")
	if !ok {
		return embeddedRow{}, false
	}
	merchant, ok := ExtractObjectBlock(listing, "merchant")
	if !ok {
		return embeddedRow{}, false
	}

	idText, ok := firstMatch(merchantIDFieldPattern, merchant)
	if !ok {
		return embeddedRow{}, false
	}
	id, ok := parseIDField(idText)
	if !ok {
		return embeddedRow{}, false
	}

	name, ok := firstMatch(merchantNamePattern, merchant)
	if !ok || name == "" {
		return embeddedRow{}, false
	}

	var score *float64
	if raw, ok := firstMatch(sellerScorePattern, merchant); ok {
		if v := parseFloatField(raw); v != nil {
			normalized := domain.NormalizeScore(*v)
			score = &normalized
		}
	}

	discounted, selling := blockPrices(listing)
	var price *float64
	if discounted != nil {
		price = discounted
	} else if selling != nil {
		price = selling
	}

	var collectable *float64
	if raw, ok := firstMatch(collectableCouponField, listing); ok {
		collectable = parseFloatField(raw)
	}

	coupon := couponFromPrices(selling, discounted)
	if coupon == nil && collectable != nil && *collectable > 0 {
		c := round2(*collectable)
		coupon = &c
	}

	var quantity *int
	if q, ok := quantities[id]; ok {
		quantity = &q
	}

	var sourceURL string
	if u, ok := firstMatch(listingURLPattern, listing); ok {
		sourceURL = u
	}

	return embeddedRow{
		rec: domain.SellerRecord{
			MerchantID:    id,
			MerchantName:  name,
			MerchantScore: score,
			Price:         price,
			Coupon:        coupon,
			Quantity:      quantity,
			SourceURL:     sourceURL,
		},
		collectable: collectable,
	}, true
}

// buyboxMerchantIDFromURL reads an explicit merchantId query parameter off
// the page URL; it takes precedence over anything in the page text.
func buyboxMerchantIDFromURL(pageURL string) int64 {
	u, err := url.Parse(pageURL)
	if err != nil {
		return 0
	}
	id, ok := parseIDField(u.Query().Get("merchantId"))
	if !ok {
		return 0
	}
	return id
}

// extractBuyboxMerchantID probes the buy-box-adjacent blocks in order and
// returns the first numeric merchant id found, trying strict JSON first and
// a field pattern as the fallback. The id may sit one level down in a
// merchant sub-object.
func extractBuyboxMerchantID(html string) int64 {
	for _, key := range buyboxBlockKeys {
		block, ok := ExtractObjectBlock(html, key)
		if !ok {
			continue
		}

		var parsed struct {
			MerchantID json.Number `json:"merchantId"`
			ID         json.Number `json:"id"`
			Merchant   *struct {
				MerchantID json.Number `json:"merchantId"`
				ID         json.Number `json:"id"`
			} `json:"merchant"`
		}
		if err := json.Unmarshal([]byte(block), &parsed); err == nil {
			candidates := []json.Number{parsed.MerchantID, parsed.ID}
			if parsed.Merchant != nil {
				candidates = append(candidates, parsed.Merchant.MerchantID, parsed.Merchant.ID)
			}
			for _, n := range candidates {
				if id, err := n.Int64(); err == nil && id > 0 {
					return id
				}
			}
		}

		if s, ok := firstMatch(buyboxIDFieldPattern, block); ok {
			if id, ok := parseIDField(s); ok {
				return id
			}
		}
	}
	return 0
}

// lowerPrice reports whether a is a finite price strictly below b.
func lowerPrice(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}
