package httpt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wfconsole/internal/config"
	"wfconsole/internal/entity"
	"wfconsole/internal/service"
	mock_service "wfconsole/internal/service/mock"
	httpt "wfconsole/internal/transport/http"
	mock_logger "wfconsole/pkg/logger/mock"
	mock_metric "wfconsole/pkg/metric/mock"
	mock_transaction "wfconsole/pkg/storage/postgres/transaction/mock"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

type handlerTestDeps struct {
	store   *mock_service.MockCodeStore
	sms     *mock_service.MockSMSSender
	signer  *mock_service.MockHashSigner
	txnRepo *mock_service.MockTransactionRepository
}

func newTestHandler(t *testing.T) (*httpt.ConsoleHandler, handlerTestDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	log := mock_logger.NewMockLogger(ctrl)
	log.EXPECT().Ctx(gomock.Any()).Return(log).AnyTimes()
	log.EXPECT().With(gomock.Any()).Return(log).AnyTimes()
	log.EXPECT().GenerateRequestID().Return("test-request-id").AnyTimes()
	log.EXPECT().WithRequestID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) context.Context { return ctx }).
		AnyTimes()
	log.EXPECT().LogAttrs(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Debugw(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Infow(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warnw(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Errorw(gomock.Any(), gomock.Any()).AnyTimes()

	httpMetrics := mock_metric.NewMockHTTP(ctrl)
	httpMetrics.EXPECT().Request(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	httpMetrics.EXPECT().SlowRequest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	otpMetrics := mock_metric.NewMockOTP(ctrl)
	otpMetrics.EXPECT().Issued(gomock.Any()).AnyTimes()
	otpMetrics.EXPECT().Verified().AnyTimes()
	otpMetrics.EXPECT().Rejected(gomock.Any()).AnyTimes()

	paymentMetrics := mock_metric.NewMockPayment(ctrl)
	paymentMetrics.EXPECT().Initiated(gomock.Any()).AnyTimes()
	paymentMetrics.EXPECT().Settled(gomock.Any()).AnyTimes()
	paymentMetrics.EXPECT().ObserveAmount(gomock.Any()).AnyTimes()

	store := mock_service.NewMockCodeStore(ctrl)
	sms := mock_service.NewMockSMSSender(ctrl)
	signer := mock_service.NewMockHashSigner(ctrl)
	txnRepo := mock_service.NewMockTransactionRepository(ctrl)
	txManager := mock_transaction.NewMockManager(ctrl)
	events := mock_service.NewMockEventPublisher(ctrl)
	events.EXPECT().PhoneVerified(gomock.Any(), gomock.Any()).AnyTimes()
	events.EXPECT().PaymentSettled(gomock.Any(), gomock.Any()).AnyTimes()

	pricingSvc := service.NewPricingService(log)
	otpSvc := service.NewOTPService(store, sms, events, log, otpMetrics, &config.OTP{
		TTL:         5 * time.Minute,
		MaxAttempts: 3,
		Store:       "memory",
		DemoMode:    true,
	})
	paymentSvc := service.NewPaymentService(signer, txnRepo, txManager, events, log,
		paymentMetrics, config.Payment{
			MerchantKey:   "merchant-key",
			GatewayURL:    "https://secure.payu.in/_payment",
			SuccessURL:    "https://console.example.com/payment/success",
			FailureURL:    "https://console.example.com/payment/failure",
			SignerBaseURL: "https://signer.example.com",
		})

	handler := httpt.NewConsoleHandler(pricingSvc, otpSvc, paymentSvc, log, httpMetrics)

	return handler, handlerTestDeps{store: store, sms: sms, signer: signer, txnRepo: txnRepo}
}

func postJSON(t *testing.T, handler *httpt.ConsoleHandler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.Engine().ServeHTTP(rec, req)
	return rec
}

func TestConsoleHandler_Health(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestConsoleHandler_Quote(t *testing.T) {
	handler, _ := newTestHandler(t)

	t.Run("Success", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/v1/pricing/quote", map[string]any{
			"price_per_unit":   99,
			"quantity":         150,
			"discount_percent": 5,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "14850.00", resp["subtotal"])
		require.Equal(t, "742.50", resp["discount"])
		require.Equal(t, "16646.85", resp["total"])
	})

	t.Run("ZeroPrice", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/v1/pricing/quote", map[string]any{
			"price_per_unit":   0,
			"quantity":         1,
			"discount_percent": 0,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "0.00", resp["subtotal"])
		require.Equal(t, "0.00", resp["total"])
	})

	t.Run("NegativePrice", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/v1/pricing/quote", map[string]any{
			"price_per_unit": -1,
			"quantity":       10,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp httpt.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "INVALID_DATA", resp.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote",
			bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		handler.Engine().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConsoleHandler_OTPSend(t *testing.T) {
	handler, deps := newTestHandler(t)

	deps.store.EXPECT().
		Put(gomock.Any(), "919876543210", gomock.Any(), 5*time.Minute).
		Return(nil).Times(1)
	deps.sms.EXPECT().
		Send(gomock.Any(), "+919876543210", "91", gomock.Any()).
		Return(entity.ErrSMSDispatchFailed).Times(1)
	deps.sms.EXPECT().Configured().Return(false).Times(1)

	rec := postJSON(t, handler, "/api/v1/otp/send", map[string]string{
		"local_number": "9876543210",
		"country_code": "91",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result entity.OTPResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.True(t, result.Success)
	require.NotEmpty(t, result.DemoCode)
}

func TestConsoleHandler_OTPVerify(t *testing.T) {
	handler, deps := newTestHandler(t)

	deps.store.EXPECT().
		Get(gomock.Any(), "919876543210").
		Return(&entity.OTPRecord{
			Code:      "123456",
			ExpiresAt: time.Now().Add(time.Minute),
		}, nil).Times(1)
	deps.store.EXPECT().Delete(gomock.Any(), "919876543210").Return(nil).Times(1)

	rec := postJSON(t, handler, "/api/v1/otp/verify", map[string]string{
		"local_number": "9876543210",
		"country_code": "91",
		"code":         "123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result entity.OTPResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.True(t, result.Success)
}

func TestConsoleHandler_Checkout(t *testing.T) {
	t.Run("TermsNotAgreed", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		rec := postJSON(t, handler, "/api/v1/payments/checkout", entity.CheckoutRequest{
			Plan:     entity.Plan{Name: "Team", PricePerUser: 99, UserCount: 5},
			Customer: entity.Customer{UserID: "u-1", Email: "a@example.com"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp httpt.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "TERMS_NOT_AGREED", resp.Code)
	})

	t.Run("InvalidData", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		rec := postJSON(t, handler, "/api/v1/payments/checkout", entity.CheckoutRequest{
			Plan:        entity.Plan{Name: "Team", PricePerUser: 99, UserCount: 0},
			Customer:    entity.Customer{UserID: "u-1", Email: "a@example.com"},
			TermsAgreed: true,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp httpt.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "INVALID_CHECKOUT_DATA", resp.Code)
		require.NotEmpty(t, resp.Violations)
	})
}

func TestConsoleHandler_GetTransaction(t *testing.T) {
	handler, deps := newTestHandler(t)

	t.Run("NotFound", func(t *testing.T) {
		deps.txnRepo.EXPECT().
			GetByTxnID(gomock.Any(), "TXNunknown").
			Return(nil, entity.ErrDataNotFound).Times(1)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/TXNunknown", nil)
		rec := httptest.NewRecorder()
		handler.Engine().ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Found", func(t *testing.T) {
		deps.txnRepo.EXPECT().
			GetByTxnID(gomock.Any(), "TXN1abcd1234").
			Return(&entity.PaymentTransaction{
				TxnID:  "TXN1abcd1234",
				Status: entity.TransactionCaptured,
			}, nil).Times(1)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/TXN1abcd1234", nil)
		rec := httptest.NewRecorder()
		handler.Engine().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var txn entity.PaymentTransaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txn))
		require.Equal(t, entity.TransactionCaptured, txn.Status)
	})
}
