package usecase

import (
	"math"

	"github.com/profitlens/backend/internal/domain"
)

// ProfitServiceConfig holds configuration for the profit service
type ProfitServiceConfig struct {
	DefaultVATRate     float64
	ServiceFeeSameDay  float64
	ServiceFeeStandard float64
}

// ProfitService computes the VAT/profit breakdown for one sale. It is a pure
// calculation over the merged seller figures; nothing here touches the
// network or the page.
type ProfitService struct {
	defaultVATRate     float64
	serviceFeeSameDay  float64
	serviceFeeStandard float64
}

// NewProfitService creates a new profit service with the given defaults.
func NewProfitService(config ProfitServiceConfig) *ProfitService {
	vatRate := config.DefaultVATRate
	if vatRate <= 0 {
		vatRate = 0.20
	}
	sameDay := config.ServiceFeeSameDay
	if sameDay <= 0 {
		sameDay = 8.39
	}
	standard := config.ServiceFeeStandard
	if standard <= 0 {
		standard = 13.39
	}

	return &ProfitService{
		defaultVATRate:     vatRate,
		serviceFeeSameDay:  sameDay,
		serviceFeeStandard: standard,
	}
}

// Calculate decomposes one sale into its VAT parts and the resulting net
// profit. All monetary inputs are VAT-inclusive; deductible input VAT is
// subtracted from the sale VAT with the payable amount floored at zero.
func (s *ProfitService) Calculate(in domain.ProfitInput) domain.ProfitBreakdown {
	rate := s.defaultVATRate
	if in.VATRate != nil && !math.IsNaN(*in.VATRate) && *in.VATRate >= 0 {
		rate = *in.VATRate
	}

	excl := func(x float64) float64 { return x / (1 + rate) }
	vatPart := func(x float64) float64 { return x - excl(x) }

	saleIncl := in.SalePrice
	buyIncl := in.BuyCost
	shippingIncl := in.ShippingCost

	serviceFeeIncl := s.serviceFeeStandard
	if in.SameDayShipping {
		serviceFeeIncl = s.serviceFeeSameDay
	}
	if in.ServiceFee != nil {
		serviceFeeIncl = round2(*in.ServiceFee)
	}

	commissionIncl := saleIncl * (in.CommissionRate / 100)
	if in.CommissionAmount != nil {
		commissionIncl = *in.CommissionAmount
	}

	saleExcl := excl(saleIncl)
	saleVAT := vatPart(saleIncl)
	buyExcl := excl(buyIncl)

	var buyVAT, shippingVAT, commissionVAT, serviceVAT float64
	if deduct(in.DeductVATOnBuy) {
		buyVAT = vatPart(buyIncl)
	}
	if deduct(in.DeductVATOnShipping) {
		shippingVAT = vatPart(shippingIncl)
	}
	if deduct(in.DeductVATOnCommission) {
		commissionVAT = vatPart(commissionIncl)
	}
	if deduct(in.DeductVATOnServiceFee) {
		serviceVAT = vatPart(serviceFeeIncl)
	}

	stopaj := saleExcl * in.StopajRate

	payableVAT := saleVAT - (buyVAT + shippingVAT + commissionVAT + serviceVAT)
	if payableVAT < 0 {
		payableVAT = 0
	}

	profitBeforeVAT := saleIncl - buyIncl - commissionIncl - shippingIncl - serviceFeeIncl - stopaj
	netProfit := profitBeforeVAT - payableVAT

	breakdown := domain.ProfitBreakdown{
		SaleIncl:        saleIncl,
		SaleExcl:        saleExcl,
		SaleVAT:         saleVAT,
		BuyIncl:         buyIncl,
		BuyExcl:         buyExcl,
		BuyVAT:          buyVAT,
		CommissionIncl:  commissionIncl,
		CommissionVAT:   commissionVAT,
		ShippingIncl:    shippingIncl,
		ShippingVAT:     shippingVAT,
		ServiceFeeIncl:  serviceFeeIncl,
		ServiceVAT:      serviceVAT,
		SameDayShipping: in.SameDayShipping,
		Stopaj:          stopaj,
		PayableVAT:      payableVAT,
		NetProfit:       netProfit,
	}
	if saleIncl > 0 {
		margin := (netProfit / saleIncl) * 100
		breakdown.MarginPercent = &margin
	}
	if buyExcl > 0 {
		roi := (netProfit / buyExcl) * 100
		breakdown.ROIPercent = &roi
	}
	return breakdown
}

// deduct interprets a tri-state flag: only an explicit false disables the
// deduction.
func deduct(flag *bool) bool {
	return flag == nil || *flag
}
