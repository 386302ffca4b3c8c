package entity

// OrderPricing is the input to the order total calculation. All three fields
// must be inside their stated ranges or the calculation is rejected.
type OrderPricing struct {
	PricePerUnit    float64 `json:"price_per_unit"   validate:"gte=0"`
	Quantity        int     `json:"quantity"         validate:"gte=1"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
}

// OrderTotals holds the full-precision breakdown of a quote. Display rounding
// to two decimals is the transport's concern, not stored here.
type OrderTotals struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	AfterDiscount float64 `json:"after_discount"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
}
