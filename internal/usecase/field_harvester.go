package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/profitlens/backend/internal/domain"
)

// Package-level compiled field patterns. Blocks are text fragments, not
// parsed JSON, so every field is recovered by an anchored pattern. The id is
// bounded to 1-12 digits to reject implausible numbers (timestamps, hashes).
var (
	merchantIDFieldPattern = regexp.MustCompile(`"id"\s*:\s*(\d{1,12})`)
	merchantNamePattern    = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
	sellerScorePattern     = regexp.MustCompile(`"sellerScore"\s*:\s*\{[^}]*?"value"\s*:\s*([0-9]+(?:\.[0-9]+)?)`)
	discountedPricePattern = regexp.MustCompile(`"discountedPrice"\s*:\s*\{[^}]*?"value"\s*:\s*([0-9]+(?:\.[0-9]+)?)`)
	sellingPricePattern    = regexp.MustCompile(`"sellingPrice"\s*:\s*\{[^}]*?"value"\s*:\s*([0-9]+(?:\.[0-9]+)?)`)
	listingURLPattern      = regexp.MustCompile(`"url"\s*:\s*"([^"]+)"`)
	collectableCouponField = regexp.MustCompile(`"collectableCouponDiscount"\s*:\s*(\d+(?:\.\d+)?)`)
	merchantIDParamPattern = regexp.MustCompile(`merchantId=(\d{1,12})`)
)

// couponNoiseThreshold is the minimum sellingPrice-discountedPrice difference
// treated as a real coupon rather than float rounding noise.
const couponNoiseThreshold = 0.009

// harvestedSeller is the intermediate record pulled out of one candidate
// block, before quantity and coupon resolution.
type harvestedSeller struct {
	merchantID  int64
	name        string
	score       *float64
	price       *float64 // discounted wins over selling
	selling     *float64
	discounted  *float64
	url         string
	collectable *float64 // the block's own collectableCouponDiscount
}

// allMatches returns every captured value of the pattern in order of
// occurrence. Harvesting is built on "all matches, caller picks last":
// later field values in a block supersede earlier ones.
func allMatches(re *regexp.Regexp, text string) []string {
	groups := re.FindAllStringSubmatch(text, -1)
	if len(groups) == 0 {
		return nil
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g[1])
	}
	return out
}

func lastMatch(re *regexp.Regexp, text string) (string, bool) {
	m := allMatches(re, text)
	if len(m) == 0 {
		return "", false
	}
	return m[len(m)-1], true
}

func firstMatch(re *regexp.Regexp, text string) (string, bool) {
	g := re.FindStringSubmatch(text)
	if g == nil {
		return "", false
	}
	return g[1], true
}

func parseFloatField(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseIDField(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// isSellerBlock gates candidate blocks: a genuine seller object carries all
// three of these substrings. Fragments that matched the array-extraction
// heuristic without being seller objects (promo banners reuse similar field
// names) fail this check.
func isSellerBlock(block string) bool {
	return strings.Contains(block, `"variants"`) &&
		strings.Contains(block, `"price"`) &&
		strings.Contains(block, `"sellerScore"`)
}

// blockPrices harvests the discounted and selling price from a block. When a
// pattern occurs multiple times the last occurrence wins: later values are
// the more specific/final ones in these payloads.
func blockPrices(block string) (discounted, selling *float64) {
	if s, ok := lastMatch(discountedPricePattern, block); ok {
		discounted = parseFloatField(s)
	}
	if s, ok := lastMatch(sellingPricePattern, block); ok {
		selling = parseFloatField(s)
	}
	return discounted, selling
}

// couponFromPrices infers a coupon as sellingPrice-discountedPrice when both
// are present and the difference clears the noise threshold.
func couponFromPrices(selling, discounted *float64) *float64 {
	if selling == nil || discounted == nil {
		return nil
	}
	diff := *selling - *discounted
	if diff <= couponNoiseThreshold {
		return nil
	}
	diff = round2(diff)
	return &diff
}

// harvestSellerBlock pulls the typed fields out of one candidate block. It
// returns false for blocks without a plausible numeric id (expected for
// non-seller fragments, silently discarded) and for blocks whose listing URL
// carries a merchantId parameter disagreeing with the harvested id, which
// guards against cross-contamination from a neighboring block.
func harvestSellerBlock(block string) (harvestedSeller, bool) {
	var h harvestedSeller

	idText, ok := firstMatch(merchantIDFieldPattern, block)
	if !ok {
		return h, false
	}
	h.merchantID, ok = parseIDField(idText)
	if !ok {
		return h, false
	}

	if name, ok := firstMatch(merchantNamePattern, block); ok {
		h.name = name
	}
	if s, ok := firstMatch(sellerScorePattern, block); ok {
		if v := parseFloatField(s); v != nil {
			score := domain.NormalizeScore(*v)
			h.score = &score
		}
	}

	h.discounted, h.selling = blockPrices(block)
	if h.discounted != nil {
		h.price = h.discounted
	} else if h.selling != nil {
		h.price = h.selling
	}

	if u, ok := firstMatch(listingURLPattern, block); ok {
		h.url = u
	}
	if h.url != "" && strings.Contains(h.url, "merchantId=") {
		if idText, ok := firstMatch(merchantIDParamPattern, h.url); ok {
			if urlID, ok := parseIDField(idText); ok && urlID != h.merchantID {
				return harvestedSeller{}, false
			}
		}
	}

	if s, ok := firstMatch(collectableCouponField, block); ok {
		h.collectable = parseFloatField(s)
	}

	return h, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
