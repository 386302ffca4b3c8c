package httpt

import (
	"context"
	"net/http"
	"time"

	"wfconsole/internal/entity"
	"wfconsole/internal/service"
	"wfconsole/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	_defaultContextTimeout = 500 * time.Millisecond
	_externalCallTimeout   = 15 * time.Second
)

// @Summary Quote an order
// @Description Calculates the full price breakdown for a seat count and discount
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body httpt.QuoteRequest true "Pricing input"
// @Success 200 {object} httpt.QuoteResponse "Price breakdown, two-decimal strings"
// @Failure 400 {object} httpt.ErrorResponse "Invalid pricing input"
// @Failure 500 {object} httpt.ErrorResponse "Internal error"
// @Router /pricing/quote [post]
func (h *ConsoleHandler) quoteHandler(c *gin.Context) {
	const op = "transport.quoteHandler"

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, op, err)
		return
	}

	totals, err := h.pricingSvc.Quote(&entity.OrderPricing{
		PricePerUnit:    req.PricePerUnit,
		Quantity:        req.Quantity,
		DiscountPercent: req.DiscountPercent,
	})
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	resp, err := formatQuote(totals)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Send a verification code
// @Description Issues a 6-digit code to the given phone number over SMS
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body httpt.PhoneRequest true "Phone number"
// @Success 200 {object} httpt.OTPResult "Send outcome"
// @Failure 400 {object} httpt.ErrorResponse "Malformed phone number"
// @Failure 500 {object} httpt.ErrorResponse "Internal error"
// @Router /otp/send [post]
func (h *ConsoleHandler) sendCodeHandler(c *gin.Context) {
	const op = "transport.sendCodeHandler"

	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, op, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _externalCallTimeout)
	defer cancel()

	result, err := h.otpSvc.SendCode(ctx, req.LocalNumber, req.CountryCode)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Verify a code
// @Description Checks a submitted code; three wrong attempts invalidate it
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body httpt.VerifyCodeRequest true "Phone number and code"
// @Success 200 {object} httpt.OTPResult "Verification outcome"
// @Failure 400 {object} httpt.ErrorResponse "Malformed request"
// @Failure 500 {object} httpt.ErrorResponse "Internal error"
// @Router /otp/verify [post]
func (h *ConsoleHandler) verifyCodeHandler(c *gin.Context) {
	const op = "transport.verifyCodeHandler"

	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, op, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _externalCallTimeout)
	defer cancel()

	result, err := h.otpSvc.VerifyCode(ctx, req.LocalNumber, req.CountryCode, req.Code)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Resend a verification code
// @Description Invalidates any pending code and issues a fresh one
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body httpt.PhoneRequest true "Phone number"
// @Success 200 {object} httpt.OTPResult "Send outcome"
// @Failure 400 {object} httpt.ErrorResponse "Malformed phone number"
// @Failure 500 {object} httpt.ErrorResponse "Internal error"
// @Router /otp/resend [post]
func (h *ConsoleHandler) resendCodeHandler(c *gin.Context) {
	const op = "transport.resendCodeHandler"

	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, op, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _externalCallTimeout)
	defer cancel()

	result, err := h.otpSvc.ResendCode(ctx, req.LocalNumber, req.CountryCode)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Initiate a checkout
// @Description Runs the payment gates and returns the signed hosted-page form
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body httpt.CheckoutRequest true "Plan and customer"
// @Success 200 {object} httpt.PaymentForm "Form-POST payload for the gateway"
// @Failure 400 {object} httpt.ErrorResponse "Invalid checkout data"
// @Failure 422 {object} httpt.ErrorResponse "Terms not agreed"
// @Failure 502 {object} httpt.ErrorResponse "Hash generation failed"
// @Failure 503 {object} httpt.ErrorResponse "Payment configuration missing"
// @Router /payments/checkout [post]
func (h *ConsoleHandler) initiateCheckoutHandler(c *gin.Context) {
	const op = "transport.initiateCheckoutHandler"

	var req entity.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, op, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _externalCallTimeout)
	defer cancel()

	form, err := h.paymentSvc.InitiateCheckout(ctx, &req)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, form)
}

// @Summary Settle a gateway return trip
// @Description Verifies the gateway's return parameters and records the outcome
// @Tags Payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} httpt.PaymentReturnResult "User-safe settlement outcome"
// @Router /payments/return [post]
func (h *ConsoleHandler) paymentReturnHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), _externalCallTimeout)
	defer cancel()

	if err := c.Request.ParseForm(); err != nil {
		h.handleBindError(c, "transport.paymentReturnHandler", err)
		return
	}

	params := make(map[string]string, len(c.Request.PostForm))
	for key := range c.Request.PostForm {
		params[key] = c.Request.PostForm.Get(key)
	}

	result := h.paymentSvc.VerifyReturn(ctx, params)

	c.JSON(http.StatusOK, result)
}

// @Summary Get a payment transaction
// @Description Returns the stored ledger row for a transaction ID
// @Tags Payments
// @Produce json
// @Param txnid path string true "Transaction ID"
// @Success 200 {object} httpt.PaymentTransaction "Ledger row"
// @Failure 404 {object} httpt.ErrorResponse "Unknown transaction"
// @Router /payments/{txnid} [get]
func (h *ConsoleHandler) getTransactionHandler(c *gin.Context) {
	const op = "transport.getTransactionHandler"

	log := h.log.Ctx(c.Request.Context())
	txnID := c.Param("txnid")

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	txn, err := h.paymentSvc.GetTransaction(ctx, txnID)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	log.LogAttrs(ctx, logger.InfoLevel, "transaction retrieved",
		logger.String("txnid", txnID),
	)

	c.JSON(http.StatusOK, txn)
}

func formatQuote(totals *entity.OrderTotals) (*QuoteResponse, error) {
	resp := &QuoteResponse{}
	for _, field := range []struct {
		dst *string
		val float64
	}{
		{&resp.Subtotal, totals.Subtotal},
		{&resp.Discount, totals.Discount},
		{&resp.AfterDiscount, totals.AfterDiscount},
		{&resp.Tax, totals.Tax},
		{&resp.Total, totals.Total},
	} {
		formatted, err := service.FormatAmount(field.val)
		if err != nil {
			return nil, err
		}
		*field.dst = formatted
	}
	return resp, nil
}
