package httpt

import (
	"context"
	"errors"
	"net/http"

	"wfconsole/internal/entity"
	"wfconsole/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *ConsoleHandler) handleServiceError(c *gin.Context, err error, op string) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.ErrorLevel, op+" failed",
		logger.Any("error", err),
		logger.String("remote_addr", c.ClientIP()),
		logger.String("user_agent", c.Request.UserAgent()),
	)

	var violationsErr *entity.ViolationsError
	var violations []string
	if errors.As(err, &violationsErr) {
		violations = violationsErr.Violations
	}

	switch {
	case errors.Is(err, entity.ErrTermsNotAgreed):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "You must agree to the terms and conditions before checking out.",
			Code:  "TERMS_NOT_AGREED",
		})
	case errors.Is(err, entity.ErrConfigMissing):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:      "Payments are temporarily unavailable. Please try again later.",
			Code:       "CONFIG_MISSING",
			Violations: violations,
		})
	case errors.Is(err, entity.ErrInvalidCheckoutData):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:      "Checkout data is incomplete or invalid.",
			Code:       "INVALID_CHECKOUT_DATA",
			Violations: violations,
		})
	case errors.Is(err, entity.ErrHashGenerationFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "Could not start the payment. Please try again.",
			Code:  "HASH_GENERATION_FAILED",
		})
	case errors.Is(err, entity.ErrInvalidData):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid input data.",
			Code:  "INVALID_DATA",
		})
	case errors.Is(err, entity.ErrDataNotFound):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "resource not found",
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Not found.",
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, context.DeadlineExceeded):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "request timeout",
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Error: "Request timed out.",
			Code:  "TIMEOUT",
		})
	default:
		log.LogAttrs(c.Request.Context(), logger.ErrorLevel, "internal server error",
			logger.Any("error", err),
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal service error.",
			Code:  "INTERNAL",
		})
	}
}

func (h *ConsoleHandler) handleBindError(c *gin.Context, op string, err error) {
	h.log.Ctx(c.Request.Context()).LogAttrs(c.Request.Context(), logger.WarnLevel,
		"malformed request body",
		logger.String("op", op),
		logger.Any("error", err),
		logger.String("remote_addr", c.ClientIP()),
	)

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "Malformed request body.",
		Code:  "BAD_REQUEST",
	})
}
