package usecase

import "testing"

// sellerBlock builds one embedded seller object carrying the three gate
// fields plus whatever extra fields the test needs.
func sellerBlock(extra string) string {
	return `{"variants":[],"price":{},"sellerScore":{"value":4.0},` + extra + `}`
}

func TestBuildSnapshot(t *testing.T) {
	t.Run("harvests generic seller rows", func(t *testing.T) {
		html := `"sellers":[` +
			sellerBlock(`"id":10,"name":"Shop A","discountedPrice":{"value":90},"sellingPrice":{"value":100}`) + `,` +
			sellerBlock(`"id":20,"name":"Shop B","sellingPrice":{"value":120}`) +
			`]`

		snap := NewExtractionService().BuildSnapshot(html, "https://www.trendyol.com/x/item-p-1", nil)

		a, ok := snap.Rows[10]
		if !ok {
			t.Fatal("row 10 missing")
		}
		if a.MerchantName != "Shop A" {
			t.Errorf("name = %q, want Shop A", a.MerchantName)
		}
		if a.Price == nil || *a.Price != 90 {
			t.Errorf("price = %v, want 90 (discounted wins)", a.Price)
		}
		if a.Coupon == nil || *a.Coupon != 10 {
			t.Errorf("coupon = %v, want 10 from price difference", a.Coupon)
		}
		if a.MerchantScore == nil || *a.MerchantScore != 8.0 {
			t.Errorf("score = %v, want 8.0 (4.0 doubled)", a.MerchantScore)
		}

		b, ok := snap.Rows[20]
		if !ok {
			t.Fatal("row 20 missing")
		}
		if b.Price == nil || *b.Price != 120 {
			t.Errorf("price = %v, want 120", b.Price)
		}
		if b.Coupon != nil {
			t.Errorf("coupon = %v, want nil", *b.Coupon)
		}
	})

	t.Run("rows without name or price are dropped", func(t *testing.T) {
		html := `"sellers":[` +
			sellerBlock(`"id":10,"sellingPrice":{"value":100}`) + `,` +
			sellerBlock(`"id":20,"name":"Shop B"`) +
			`]`
		snap := NewExtractionService().BuildSnapshot(html, "", nil)
		if len(snap.Rows) != 0 {
			t.Errorf("rows = %v, want none", snap.Rows)
		}
	})

	t.Run("duplicate merchant keeps the lower price", func(t *testing.T) {
		html := `"sellers":[` +
			sellerBlock(`"id":10,"name":"Shop A","sellingPrice":{"value":100}`) + `,` +
			sellerBlock(`"id":10,"name":"Shop A","sellingPrice":{"value":80}`) +
			`]`
		snap := NewExtractionService().BuildSnapshot(html, "", nil)
		row := snap.Rows[10]
		if row.Price == nil || *row.Price != 80 {
			t.Errorf("price = %v, want 80", row.Price)
		}
		if snap.DisplayOrder[10] != 0 {
			t.Errorf("display order = %d, want first occurrence index 0", snap.DisplayOrder[10])
		}
	})

	t.Run("page-wide coupon map fills sellers without own coupon", func(t *testing.T) {
		html := `{"merchantId":10,"collectableCouponDiscount":12.345}` +
			`"sellers":[` +
			sellerBlock(`"id":10,"name":"Shop A","sellingPrice":{"value":100}`) +
			`]`
		snap := NewExtractionService().BuildSnapshot(html, "", nil)
		row := snap.Rows[10]
		if row.Coupon == nil || *row.Coupon != 12.35 {
			t.Errorf("coupon = %v, want 12.35 from page-wide map", row.Coupon)
		}
	})

	t.Run("block's own collectable coupon beats the page-wide map", func(t *testing.T) {
		html := `{"merchantId":10,"collectableCouponDiscount":50}` +
			`"sellers":[` +
			sellerBlock(`"id":10,"name":"Shop A","sellingPrice":{"value":100},"collectableCouponDiscount":7`) +
			`]`
		snap := NewExtractionService().BuildSnapshot(html, "", nil)
		row := snap.Rows[10]
		// The id sits 5000 chars from the block's coupon too, so the map may
		// carry 50; the row must still take the block's own 7.
		if row.Coupon == nil || *row.Coupon != 7 {
			t.Errorf("coupon = %v, want the block's own 7", row.Coupon)
		}
	})

	t.Run("non-seller fragments are gated out", func(t *testing.T) {
		html := `"sellers":[{"id":10,"name":"Banner","price":{}}]`
		snap := NewExtractionService().BuildSnapshot(html, "", nil)
		if len(snap.Rows) != 0 {
			t.Errorf("rows = %v, want none for gated fragment", snap.Rows)
		}
	})
}

func TestBuildSnapshotBuybox(t *testing.T) {
	buyboxHTML := `"merchantListing":{` +
		`"merchant":{"id":99,"name":"Showcase","sellerScore":{"value":4.6}},` +
		`"discountedPrice":{"value":110},"sellingPrice":{"value":110},` +
		`"url":"/x/item-p-1?merchantId=99"}`

	t.Run("extracts the showcased seller", func(t *testing.T) {
		snap := NewExtractionService().BuildSnapshot(buyboxHTML, "https://www.trendyol.com/x/item-p-1", nil)

		if snap.BuyboxID != 99 {
			t.Errorf("BuyboxID = %d, want 99", snap.BuyboxID)
		}
		row, ok := snap.Rows[99]
		if !ok {
			t.Fatal("buy-box row missing")
		}
		if row.MerchantName != "Showcase" {
			t.Errorf("name = %q", row.MerchantName)
		}
		if row.Price == nil || *row.Price != 110 {
			t.Errorf("price = %v, want 110", row.Price)
		}
		if row.MerchantScore == nil || *row.MerchantScore != 9.2 {
			t.Errorf("score = %v, want 9.2", row.MerchantScore)
		}
		if snap.DisplayOrder[99] != -1 {
			t.Errorf("display order = %d, want -1 for the buy-box block", snap.DisplayOrder[99])
		}
	})

	t.Run("URL merchantId parameter overrides page text", func(t *testing.T) {
		snap := NewExtractionService().BuildSnapshot(buyboxHTML, "https://www.trendyol.com/x/item-p-1?merchantId=500", nil)
		if snap.BuyboxID != 500 {
			t.Errorf("BuyboxID = %d, want 500 from the page URL", snap.BuyboxID)
		}
	})

	t.Run("rendered coupon is the last resort", func(t *testing.T) {
		called := false
		rendered := func() *float64 {
			called = true
			v := 25.0
			return &v
		}

		snap := NewExtractionService().BuildSnapshot(buyboxHTML, "", rendered)
		row := snap.Rows[99]
		if !called {
			t.Fatal("rendered coupon reader was never invoked")
		}
		if row.Coupon == nil || *row.Coupon != 25 {
			t.Errorf("coupon = %v, want 25 from the rendered page", row.Coupon)
		}
	})

	t.Run("rendered coupon not consulted when prices already imply one", func(t *testing.T) {
		html := `"merchantListing":{` +
			`"merchant":{"id":99,"name":"Showcase","sellerScore":{"value":4.6}},` +
			`"discountedPrice":{"value":100},"sellingPrice":{"value":110},` +
			`"url":"/x/item-p-1?merchantId=99"}`
		rendered := func() *float64 {
			t.Fatal("rendered coupon reader must not be invoked")
			return nil
		}

		snap := NewExtractionService().BuildSnapshot(html, "", rendered)
		row := snap.Rows[99]
		if row.Coupon == nil || *row.Coupon != 10 {
			t.Errorf("coupon = %v, want 10 from the price difference", row.Coupon)
		}
	})

	t.Run("unresolved buy-box id stays non-positive", func(t *testing.T) {
		snap := NewExtractionService().BuildSnapshot(`no merchants here`, "https://example.com/listing", nil)
		if snap.BuyboxID > 0 {
			t.Errorf("BuyboxID = %d, want <= 0", snap.BuyboxID)
		}
	})
}
