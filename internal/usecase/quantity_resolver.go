package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Window sizes for anchored text scans. Generic quantity scans leak variant
// and global stock figures across sellers, so every fallback scan is scoped
// to a bounded window behind a merchant-identifying anchor.
const (
	buyboxAnchorWindow   = 1200
	variantsLookahead    = 5000
	couponLookaheadChars = 5000
)

var (
	buyboxObjectAnchors = []*regexp.Regexp{
		regexp.MustCompile(`"buyboxMerchant"\s*:\s*\{`),
		regexp.MustCompile(`"merchantInfo"\s*:\s*\{`),
		regexp.MustCompile(`"merchant"\s*:\s*\{`),
	}
	merchantIDKeyPattern = regexp.MustCompile(`"merchantId"\s*:\s*(\d{1,12})`)
	plainQuantityPattern = regexp.MustCompile(`"quantity"\s*:\s*(\d{1,9})`)
)

// merchantStock mirrors one element of the seller-scoped otherMerchants
// array. Only the fields the quantity rule consumes are declared.
type merchantStock struct {
	ID       json.Number    `json:"id"`
	Variants []variantStock `json:"variants"`
}

type variantStock struct {
	Quantity           *float64 `json:"quantity"`
	IsRunningOut       bool     `json:"isRunningOut"`
	RunningOutQuantity *float64 `json:"runningOutQuantity"`
}

// pickQuantityFromVariants computes the effective stock for one merchant:
// per variant, runningOutQuantity when isRunningOut is true and positive,
// else the plain quantity; the maximum candidate across variants wins
// (the most optimistic/current stock figure).
func pickQuantityFromVariants(variants []variantStock) *int {
	var maxQty *int
	for _, v := range variants {
		var candidate *float64
		if v.IsRunningOut && v.RunningOutQuantity != nil && *v.RunningOutQuantity > 0 {
			candidate = v.RunningOutQuantity
		} else {
			candidate = v.Quantity
		}
		if candidate == nil {
			continue
		}
		q := int(*candidate)
		if maxQty == nil || q > *maxQty {
			maxQty = &q
		}
	}
	return maxQty
}

// BuildMerchantQuantityMap resolves per-merchant stock from the embedded
// page text. Primary path: the otherMerchants array parsed as JSON; a parse
// failure yields no quantities from that path. The buy-box merchant may live
// outside otherMerchants, so it gets a narrower dedicated path.
func BuildMerchantQuantityMap(html string, buyboxID int64) map[int64]int {
	quantities := make(map[int64]int)

	if arrayText, ok := ExtractArrayBlock(html, "otherMerchants"); ok {
		var merchants []merchantStock
		if err := json.Unmarshal([]byte(arrayText), &merchants); err == nil {
			for _, m := range merchants {
				id, err := m.ID.Int64()
				if err != nil || id <= 0 {
					continue
				}
				qty := pickQuantityFromVariants(m.Variants)
				if qty == nil {
					continue
				}
				if prev, ok := quantities[id]; !ok || *qty > prev {
					quantities[id] = *qty
				}
			}
		}
	}

	if buyboxID > 0 {
		// winnerVariant.quantity is preferred for the buy-box when present.
		if qty := extractWinnerVariantQuantity(html); qty != nil {
			quantities[buyboxID] = *qty
		} else if _, ok := quantities[buyboxID]; !ok {
			if qty := extractBuyboxQuantity(html, buyboxID); qty != nil {
				quantities[buyboxID] = *qty
			}
		}
	}

	return quantities
}

func extractWinnerVariantQuantity(html string) *int {
	block, ok := ExtractObjectBlock(html, "winnerVariant")
	if !ok {
		return nil
	}
	var winner struct {
		Quantity *float64 `json:"quantity"`
	}
	if err := json.Unmarshal([]byte(block), &winner); err != nil || winner.Quantity == nil {
		return nil
	}
	q := int(*winner.Quantity)
	return &q
}

// extractBuyboxQuantity scans text windows anchored at buy-box-adjacent
// keys (or any bare occurrence of the buy-box id), looks ahead a bounded
// distance for a variants array and applies the variant rule to it. The
// array is parsed as JSON; a single-field regex on the span is the last
// resort.
func extractBuyboxQuantity(html string, buyboxID int64) *int {
	idPattern := regexp.MustCompile(fmt.Sprintf(`"(?:id|merchantId)"\s*:\s*%d\b`, buyboxID))

	var starts []int
	for _, anchor := range buyboxObjectAnchors {
		for _, loc := range anchor.FindAllStringIndex(html, -1) {
			window := html[loc[1]:min(loc[1]+buyboxAnchorWindow, len(html))]
			idLoc := idPattern.FindStringIndex(window)
			if idLoc == nil {
				continue
			}
			starts = append(starts, loc[1]+idLoc[1])
		}
	}
	for _, loc := range idPattern.FindAllStringIndex(html, -1) {
		starts = append(starts, loc[1])
	}

	for _, start := range starts {
		window := html[start:min(start+variantsLookahead, len(html))]
		variantsIdx := strings.Index(window, `"variants":[`)
		if variantsIdx == -1 {
			continue
		}

		arrayStart := start + variantsIdx + len(`"variants":`)
		variantsText, ok := ExtractArrayBlockAt(html, arrayStart)
		if !ok {
			continue
		}

		var variants []variantStock
		if err := json.Unmarshal([]byte(variantsText), &variants); err == nil {
			if qty := pickQuantityFromVariants(variants); qty != nil {
				return qty
			}
		}

		if s, ok := firstMatch(plainQuantityPattern, variantsText); ok {
			if v := parseFloatField(s); v != nil {
				q := int(*v)
				return &q
			}
		}
	}

	return nil
}

// BuildCollectableCouponMap scans the whole blob for merchantId fields
// followed within a bounded distance by a collectableCouponDiscount field,
// keeping the maximum value seen per merchant. This is the page-wide coupon
// fallback used when a seller block carries no coupon of its own.
func BuildCollectableCouponMap(html string) map[int64]float64 {
	coupons := make(map[int64]float64)

	for _, loc := range merchantIDKeyPattern.FindAllStringSubmatchIndex(html, -1) {
		id, ok := parseIDField(html[loc[2]:loc[3]])
		if !ok {
			continue
		}
		window := html[loc[1]:min(loc[1]+couponLookaheadChars, len(html))]
		s, ok := firstMatch(collectableCouponField, window)
		if !ok {
			continue
		}
		value := parseFloatField(s)
		if value == nil {
			continue
		}
		if prev, ok := coupons[id]; !ok || *value > prev {
			coupons[id] = *value
		}
	}

	return coupons
}
