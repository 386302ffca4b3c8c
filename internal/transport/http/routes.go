package httpt

import (
	"net/http"

	_ "wfconsole/docs" // for swagger

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Workforce Console API
// @version         1.0
// @description     Billing backend for the workforce-management console: quotes, phone verification and payment handoff.
// @contact.name    API Support
// @contact.email   support@example.com
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https
func (h *ConsoleHandler) setupRoutes() {
	h.router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	v1 := h.router.Group("/api/v1")
	{
		pricing := v1.Group("/pricing")
		{
			pricing.POST("/quote", h.quoteHandler)
		}

		otp := v1.Group("/otp")
		{
			otp.POST("/send", h.sendCodeHandler)
			otp.POST("/verify", h.verifyCodeHandler)
			otp.POST("/resend", h.resendCodeHandler)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/checkout", h.initiateCheckoutHandler)
			payments.POST("/return", h.paymentReturnHandler)
			payments.GET("/:txnid", h.getTransactionHandler)
		}
	}

	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
