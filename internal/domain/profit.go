package domain

// ProfitInput carries the VAT-inclusive figures for one profit computation.
// Amounts default to VAT-inclusive; the DeductVATOn* flags default to true
// (nil means "deduct").
type ProfitInput struct {
	VATRate          *float64 `json:"vatRate,omitempty"` // e.g. 0.20; nil uses the configured default
	SalePrice        float64  `json:"salePrice"`
	BuyCost          float64  `json:"buyCost"`
	CommissionRate   float64  `json:"commissionRate"`             // percent of the VAT-inclusive sale
	CommissionAmount *float64 `json:"commissionAmount,omitempty"` // explicit override, VAT-inclusive
	ShippingCost     float64  `json:"shippingCost"`
	ServiceFee       *float64 `json:"serviceFee,omitempty"` // VAT-inclusive override of the fixed fee
	SameDayShipping  bool     `json:"sameDayShipping"`
	StopajRate       float64  `json:"stopajRate"` // withholding on the VAT-exclusive sale

	DeductVATOnBuy        *bool `json:"deductVatOnBuy,omitempty"`
	DeductVATOnShipping   *bool `json:"deductVatOnShipping,omitempty"`
	DeductVATOnCommission *bool `json:"deductVatOnCommission,omitempty"`
	DeductVATOnServiceFee *bool `json:"deductVatOnServiceFee,omitempty"`
}

// ProfitBreakdown is the full VAT decomposition of one sale.
type ProfitBreakdown struct {
	SaleIncl        float64  `json:"saleIncl"`
	SaleExcl        float64  `json:"saleExcl"`
	SaleVAT         float64  `json:"saleVat"`
	BuyIncl         float64  `json:"buyIncl"`
	BuyExcl         float64  `json:"buyExcl"`
	BuyVAT          float64  `json:"buyVat"`
	CommissionIncl  float64  `json:"commissionIncl"`
	CommissionVAT   float64  `json:"commissionVat"`
	ShippingIncl    float64  `json:"shippingIncl"`
	ShippingVAT     float64  `json:"cargoVat"`
	ServiceFeeIncl  float64  `json:"serviceFeeInclVat"`
	ServiceVAT      float64  `json:"serviceVat"`
	SameDayShipping bool     `json:"sameDayShipping"`
	Stopaj          float64  `json:"stopaj"`
	PayableVAT      float64  `json:"payableVat"`
	NetProfit       float64  `json:"netProfit"`
	MarginPercent   *float64 `json:"marginPercent"` // nil when the sale is zero
	ROIPercent      *float64 `json:"roiPercent"`    // nil when the buy cost is zero
}
