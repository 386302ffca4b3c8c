// nolint: revive,staticcheck
// swagger:meta
package httpt

import "wfconsole/internal/entity"

// swagger:model ErrorResponse
type ErrorResponse struct {
	Error      string   `json:"error"`
	Code       string   `json:"code,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// swagger:model QuoteRequest
type QuoteRequest struct {
	// PricePerUnit has no required binding: zero is a valid price (free
	// plans) and gin's required rejects zero values. Range checks live in
	// the calculator.
	PricePerUnit    float64 `json:"price_per_unit"`
	Quantity        int     `json:"quantity"         binding:"required"`
	DiscountPercent float64 `json:"discount_percent"`
}

// swagger:model QuoteResponse
type QuoteResponse struct {
	Subtotal      string `json:"subtotal"`
	Discount      string `json:"discount"`
	AfterDiscount string `json:"after_discount"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
}

// swagger:model PhoneRequest
type PhoneRequest struct {
	LocalNumber string `json:"local_number" binding:"required"`
	CountryCode string `json:"country_code" binding:"required"`
}

// swagger:model VerifyCodeRequest
type VerifyCodeRequest struct {
	LocalNumber string `json:"local_number" binding:"required"`
	CountryCode string `json:"country_code" binding:"required"`
	Code        string `json:"code"         binding:"required"`
}

// swagger:model CheckoutRequest
type CheckoutRequest entity.CheckoutRequest

// swagger:model PaymentForm
type PaymentForm entity.PaymentForm

// swagger:model PaymentTransaction
type PaymentTransaction entity.PaymentTransaction

// swagger:model PaymentReturnResult
type PaymentReturnResult entity.PaymentReturnResult

// swagger:model OTPResult
type OTPResult entity.OTPResult
