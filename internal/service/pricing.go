package service

import (
	"fmt"
	"math"

	"wfconsole/internal/entity"
	"wfconsole/pkg/logger"
)

// Seat licences are taxed at the standard GST rate.
const _taxRate = 0.18

// CalculateOrderTotals derives the full quote breakdown from unit price, seat
// count and discount percentage. All intermediate values keep full float64
// precision; rounding to two decimals happens at display time only.
func CalculateOrderTotals(
	pricePerUnit float64,
	quantity int,
	discountPercent float64,
) (*entity.OrderTotals, error) {
	const op = "service.pricing.CalculateOrderTotals"

	switch {
	case math.IsNaN(pricePerUnit) || math.IsInf(pricePerUnit, 0) || pricePerUnit < 0:
		return nil, fmt.Errorf("%s: %w: price per unit must be a non-negative number",
			op, entity.ErrInvalidData)
	case quantity < 1:
		return nil, fmt.Errorf("%s: %w: quantity must be at least 1",
			op, entity.ErrInvalidData)
	case math.IsNaN(discountPercent) || discountPercent < 0 || discountPercent > 100:
		return nil, fmt.Errorf("%s: %w: discount percent must be between 0 and 100",
			op, entity.ErrInvalidData)
	}

	subtotal := pricePerUnit * float64(quantity)
	discount := subtotal * discountPercent / 100
	afterDiscount := subtotal - discount
	tax := afterDiscount * _taxRate

	return &entity.OrderTotals{
		Subtotal:      subtotal,
		Discount:      discount,
		AfterDiscount: afterDiscount,
		Tax:           tax,
		Total:         afterDiscount + tax,
	}, nil
}

// FormatAmount renders a monetary value with exactly two decimal places.
// Negative and non-finite amounts never reach a customer-facing string.
func FormatAmount(amount float64) (string, error) {
	const op = "service.pricing.FormatAmount"

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", fmt.Errorf("%s: %w: amount is not a finite number", op, entity.ErrInvalidData)
	}
	if amount < 0 {
		return "", fmt.Errorf("%s: %w: amount must not be negative", op, entity.ErrInvalidData)
	}

	return fmt.Sprintf("%.2f", amount), nil
}

// PricingService wraps the pure calculation for the transport layer.
type PricingService struct {
	logger logger.Logger
}

func NewPricingService(log logger.Logger) *PricingService {
	return &PricingService{logger: log}
}

func (s *PricingService) Quote(pricing *entity.OrderPricing) (*entity.OrderTotals, error) {
	const op = "service.pricing.Quote"

	totals, err := CalculateOrderTotals(
		pricing.PricePerUnit, pricing.Quantity, pricing.DiscountPercent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Debugw("quote calculated",
		"quantity", pricing.Quantity,
		"total", totals.Total,
	)

	return totals, nil
}
