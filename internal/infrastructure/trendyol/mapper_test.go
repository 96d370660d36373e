package trendyol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScoreRaw(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"bare five-point number", `4.8`, f(9.6)},
		{"bare ten-point number", `8.0`, f(8.0)},
		{"nested value", `{"value": 4.8}`, f(9.6)},
		{"nested averageRating", `{"averageRating": 4.0}`, f(8.0)},
		{"nested rating", `{"rating": 9.2}`, f(9.2)},
		{"value probed before averageRating", `{"value": 4.0, "averageRating": 1.0}`, f(8.0)},
		{"null averageRating is absent", `{"averageRating": null}`, nil},
		{"null score is absent", `null`, nil},
		{"empty object is absent", `{}`, nil},
		{"garbage is absent", `"high"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeScoreRaw(json.RawMessage(tt.raw))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func f(v float64) *float64 { return &v }

func TestExtractSellers(t *testing.T) {
	t.Run("showcased merchant comes first", func(t *testing.T) {
		var resp productDetailResponse
		require.NoError(t, json.Unmarshal([]byte(detailBody), &resp))

		sellers := extractSellers(&resp)
		require.Len(t, sellers, 2)
		assert.Equal(t, int64(99), sellers[0].MerchantID)
		assert.Equal(t, int64(10), sellers[1].MerchantID)
	})

	t.Run("showcased merchant requires a finite price", func(t *testing.T) {
		body := `{"result": {
			"merchant": {"id": 99, "name": "Showcase"},
			"price": {},
			"otherMerchants": []
		}}`
		var resp productDetailResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))

		assert.Empty(t, extractSellers(&resp))
	})

	t.Run("duplicate ids in otherMerchants are skipped", func(t *testing.T) {
		body := `{"result": {
			"merchant": {"id": 99, "name": "Showcase"},
			"price": {"sellingPrice": {"value": 100}},
			"otherMerchants": [
				{"merchant": {"id": 99, "name": "Showcase Again"}, "price": {"sellingPrice": {"value": 90}}},
				{"merchant": {"id": 10, "name": "Other"}, "price": {"sellingPrice": {"value": 80}}}
			]
		}}`
		var resp productDetailResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))

		sellers := extractSellers(&resp)
		require.Len(t, sellers, 2)
		assert.Equal(t, "Showcase", sellers[0].MerchantName)
		require.NotNil(t, sellers[0].Price)
		assert.Equal(t, 100.0, *sellers[0].Price)
	})

	t.Run("discounted price wins over selling price", func(t *testing.T) {
		body := `{"result": {
			"otherMerchants": [
				{"merchant": {"id": 10, "name": "Other"},
				 "price": {"discountedPrice": {"value": 90}, "sellingPrice": {"value": 100}}}
			]
		}}`
		var resp productDetailResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))

		sellers := extractSellers(&resp)
		require.Len(t, sellers, 1)
		require.NotNil(t, sellers[0].Price)
		assert.Equal(t, 90.0, *sellers[0].Price)
		require.NotNil(t, sellers[0].Coupon)
		assert.Equal(t, 10.0, *sellers[0].Coupon)
	})

	t.Run("rows without merchant name are dropped", func(t *testing.T) {
		body := `{"result": {
			"otherMerchants": [
				{"merchant": {"id": 10}, "price": {"sellingPrice": {"value": 80}}}
			]
		}}`
		var resp productDetailResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))

		assert.Empty(t, extractSellers(&resp))
	})

	t.Run("nil response yields nothing", func(t *testing.T) {
		assert.Empty(t, extractSellers(nil))
		assert.Empty(t, extractSellers(&productDetailResponse{}))
	})
}
