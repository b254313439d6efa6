package domain

// Product is a storefront catalog item referenced by order lines.
// PromoPrice, when set below Price, is the price charged at checkout.
type Product struct {
	ID         int64
	Name       string
	Price      float64
	PromoPrice *float64
	Active     bool
}

// EffectivePrice returns the price charged for the product at checkout.
func (p Product) EffectivePrice() float64 {
	if p.PromoPrice != nil && *p.PromoPrice > 0 && *p.PromoPrice < p.Price {
		return *p.PromoPrice
	}
	return p.Price
}

// DiscountPercent returns the promo discount in percent, 0 when no promo applies.
func (p Product) DiscountPercent() float64 {
	if p.PromoPrice == nil || *p.PromoPrice <= 0 || *p.PromoPrice >= p.Price {
		return 0
	}
	return (p.Price - *p.PromoPrice) / p.Price * 100
}
