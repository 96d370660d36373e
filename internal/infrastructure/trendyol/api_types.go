package trendyol

import "encoding/json"

// Wire shapes of the product-detail gateway response. Only the fields the
// seller extraction consumes are declared; everything else is ignored.

type productDetailResponse struct {
	Result *productDetailResult `json:"result"`
}

type productDetailResult struct {
	Merchant       *apiMerchant       `json:"merchant"`
	Price          *apiPrice          `json:"price"`
	OtherMerchants []apiOtherMerchant `json:"otherMerchants"`
}

type apiMerchant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// SellerScore is a bare number on some endpoint shapes and a nested
	// object on others; it is decoded lazily.
	SellerScore json.RawMessage `json:"sellerScore"`
}

type apiPrice struct {
	DiscountedPrice *apiPriceValue `json:"discountedPrice"`
	SellingPrice    *apiPriceValue `json:"sellingPrice"`
}

type apiPriceValue struct {
	Value *float64 `json:"value"`
}

type apiOtherMerchant struct {
	Merchant *apiMerchant `json:"merchant"`
	Price    *apiPrice    `json:"price"`
}
