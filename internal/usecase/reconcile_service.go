package usecase

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/profitlens/backend/internal/domain"
)

// ReconcileService merges the API-sourced seller list with the embedded
// page view. The API is the more complete source for which sellers exist;
// the embedded source preserves the site's own display order and carries
// stock/coupon detail the API omits. The merge favors API completeness and
// borrows embedded-only signals field by field.
type ReconcileService struct{}

func NewReconcileService() *ReconcileService {
	return &ReconcileService{}
}

// Merge produces the final ordered seller list, one row per unique merchant.
func (s *ReconcileService) Merge(apiRows []domain.SellerRecord, snap *domain.ExtractionSnapshot, pageURL string) []domain.SellerRecord {
	if snap == nil {
		snap = &domain.ExtractionSnapshot{}
	}

	merged := make(map[int64]domain.SellerRecord)
	var insertion []int64

	for _, api := range apiRows {
		id := api.MerchantID
		if id <= 0 {
			continue
		}
		embedded, hasEmbedded := snap.Rows[id]

		row := api
		row.Quantity = nil
		if hasEmbedded && embedded.Quantity != nil {
			row.Quantity = embedded.Quantity
		} else if q, ok := snap.Quantities[id]; ok {
			row.Quantity = &q
		}

		row.Coupon = nil
		if hasEmbedded && embedded.Coupon != nil {
			row.Coupon = embedded.Coupon
		} else if c, ok := snap.Coupons[id]; ok && c > 0 {
			c := round2(c)
			row.Coupon = &c
		}

		if hasEmbedded && row.SourceURL == "" {
			row.SourceURL = embedded.SourceURL
		}
		row.IsBuybox = isBuyboxSeller(id, snap.BuyboxID, row.SourceURL, pageURL)
		if o, ok := snap.DisplayOrder[id]; ok {
			order := o
			row.DisplayOrder = &order
		}

		existing, ok := merged[id]
		if !ok {
			merged[id] = row
			insertion = append(insertion, id)
		} else if lowerPrice(row.Price, existing.Price) {
			merged[id] = row
		}
	}

	// Sellers visible in the page markup but absent from the API response
	// are recovered as synthesized rows.
	for _, id := range sortedEmbeddedIDs(snap) {
		if _, ok := merged[id]; ok {
			continue
		}
		embedded := snap.Rows[id]

		row := embedded
		if row.Quantity == nil {
			if q, ok := snap.Quantities[id]; ok {
				row.Quantity = &q
			}
		}
		row.IsBuybox = isBuyboxSeller(id, snap.BuyboxID, embedded.SourceURL, pageURL)
		if o, ok := snap.DisplayOrder[id]; ok {
			order := o
			row.DisplayOrder = &order
		}

		merged[id] = row
		insertion = append(insertion, id)
	}

	rows := make([]domain.SellerRecord, 0, len(insertion))
	for _, id := range insertion {
		rows = append(rows, merged[id])
	}
	sortSellerRows(rows)
	enforceSingleBuybox(rows)
	return rows
}

// sortSellerRows orders rows: buy-box first, then embedded display order
// ascending (rows with a hint before rows without one), then price
// ascending, ties preserving insertion order.
func sortSellerRows(rows []domain.SellerRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.IsBuybox != b.IsBuybox {
			return a.IsBuybox
		}
		switch {
		case a.DisplayOrder != nil && b.DisplayOrder != nil:
			if *a.DisplayOrder != *b.DisplayOrder {
				return *a.DisplayOrder < *b.DisplayOrder
			}
		case a.DisplayOrder != nil:
			return true
		case b.DisplayOrder != nil:
			return false
		}
		ap, bp := priceOrInf(a.Price), priceOrInf(b.Price)
		return ap < bp
	})
}

// enforceSingleBuybox keeps the flag on the first flagged row only. The
// URL-substring conditions can in pathological markup flag a second row;
// the final list must showcase at most one seller.
func enforceSingleBuybox(rows []domain.SellerRecord) {
	seen := false
	for i := range rows {
		if !rows[i].IsBuybox {
			continue
		}
		if seen {
			rows[i].IsBuybox = false
		}
		seen = true
	}
}

// isBuyboxSeller reports whether this merchant is the one the page is
// showcasing: its id equals the resolved buy-box id, or its recorded listing
// URL or the page URL itself carries a matching merchantId parameter.
func isBuyboxSeller(merchantID, buyboxID int64, sourceURL, pageURL string) bool {
	if buyboxID <= 0 {
		return false
	}
	if merchantID == buyboxID {
		return true
	}
	param := "merchantId=" + strconv.FormatInt(buyboxID, 10)
	if sourceURL != "" && strings.Contains(sourceURL, param) {
		return true
	}
	if pageURL != "" && strings.Contains(pageURL, param) {
		return true
	}
	return false
}

// sortedEmbeddedIDs yields the embedded row ids in display order (rows
// without a hint after rows with one, then by id) so synthesized rows enter
// the merge deterministically.
func sortedEmbeddedIDs(snap *domain.ExtractionSnapshot) []int64 {
	ids := make([]int64, 0, len(snap.Rows))
	for id := range snap.Rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		oi, okI := snap.DisplayOrder[ids[i]]
		oj, okJ := snap.DisplayOrder[ids[j]]
		switch {
		case okI && okJ && oi != oj:
			return oi < oj
		case okI != okJ:
			return okI
		}
		return ids[i] < ids[j]
	})
	return ids
}

func priceOrInf(p *float64) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return *p
}
