package httpt

import (
	"wfconsole/internal/service"
	"wfconsole/pkg/logger"
	"wfconsole/pkg/metric"

	"github.com/gin-gonic/gin"
)

type ConsoleHandler struct {
	pricingSvc *service.PricingService
	otpSvc     *service.OTPService
	paymentSvc *service.PaymentService
	log        logger.Logger
	metrics    metric.HTTP
	router     *gin.Engine
}

func NewConsoleHandler(
	pricingSvc *service.PricingService,
	otpSvc *service.OTPService,
	paymentSvc *service.PaymentService,
	log logger.Logger,
	metrics metric.HTTP,
) *ConsoleHandler {
	h := &ConsoleHandler{
		pricingSvc: pricingSvc,
		otpSvc:     otpSvc,
		paymentSvc: paymentSvc,
		log:        log,
		metrics:    metrics,
	}

	router := gin.New()

	router.Use(h.requestIDMiddleware())
	router.Use(h.loggingMiddleware())
	router.Use(gin.Recovery())

	h.router = router

	h.setupRoutes()

	return h
}

func (h *ConsoleHandler) Engine() *gin.Engine {
	return h.router
}
