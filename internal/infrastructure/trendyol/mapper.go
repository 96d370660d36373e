package trendyol

import (
	"encoding/json"
	"math"

	"github.com/profitlens/backend/internal/domain"
)

// extractSellers converts one product-detail response into seller records.
// The showcased merchant (result.merchant + result.price) comes first and
// requires both a name and a finite price; otherMerchants rows follow,
// skipping ids already emitted. The API carries no quantity.
func extractSellers(resp *productDetailResponse) []domain.SellerRecord {
	var out []domain.SellerRecord
	if resp == nil || resp.Result == nil {
		return out
	}
	r := resp.Result

	if r.Merchant != nil && r.Merchant.ID > 0 && r.Merchant.Name != "" && r.Price != nil {
		rec := sellerFromAPI(r.Merchant, r.Price)
		if rec.Price != nil {
			out = append(out, rec)
		}
	}

	seen := make(map[int64]bool, len(out))
	for _, rec := range out {
		seen[rec.MerchantID] = true
	}

	for _, it := range r.OtherMerchants {
		if it.Merchant == nil || it.Merchant.ID <= 0 || it.Merchant.Name == "" || it.Price == nil {
			continue
		}
		if seen[it.Merchant.ID] {
			continue
		}
		out = append(out, sellerFromAPI(it.Merchant, it.Price))
		seen[it.Merchant.ID] = true
	}

	return out
}

func sellerFromAPI(m *apiMerchant, p *apiPrice) domain.SellerRecord {
	rec := domain.SellerRecord{
		MerchantID:    m.ID,
		MerchantName:  m.Name,
		MerchantScore: normalizeScoreRaw(m.SellerScore),
	}

	var selling, discounted *float64
	if p.SellingPrice != nil {
		selling = p.SellingPrice.Value
	}
	if p.DiscountedPrice != nil {
		discounted = p.DiscountedPrice.Value
	}

	if discounted != nil {
		rec.Price = discounted
	} else if selling != nil {
		rec.Price = selling
	}

	if selling != nil && discounted != nil && *selling > *discounted {
		coupon := math.Round((*selling-*discounted)*100) / 100
		rec.Coupon = &coupon
	}

	return rec
}

// normalizeScoreRaw decodes a sellerScore field that is either a bare number
// or an object probed for value, then averageRating, then rating. Whatever
// is found goes through the 0-10 normalization; anything else is absent.
func normalizeScoreRaw(raw json.RawMessage) *float64 {
	// json.Unmarshal treats a literal null into float64 as a no-op success.
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		score := domain.NormalizeScore(number)
		return &score
	}

	var nested struct {
		Value         *float64 `json:"value"`
		AverageRating *float64 `json:"averageRating"`
		Rating        *float64 `json:"rating"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil
	}
	for _, candidate := range []*float64{nested.Value, nested.AverageRating, nested.Rating} {
		if candidate != nil {
			score := domain.NormalizeScore(*candidate)
			return &score
		}
	}
	return nil
}
