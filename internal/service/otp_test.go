package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"wfconsole/internal/config"
	"wfconsole/internal/entity"
	"wfconsole/internal/service"
	mock_service "wfconsole/internal/service/mock"
	mock_logger "wfconsole/pkg/logger/mock"
	mock_metric "wfconsole/pkg/metric/mock"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestFormatPhoneNumber(t *testing.T) {
	testCases := []struct {
		desc        string
		localNumber string
		countryCode string
		expected    string
		wantErr     bool
	}{
		{desc: "PlainDigits", localNumber: "9876543210", countryCode: "91", expected: "+919876543210"},
		{desc: "StripsFormatting", localNumber: "(987) 654-3210", countryCode: "+91", expected: "+919876543210"},
		{desc: "StripsSpaces", localNumber: "98 76 54 32 10", countryCode: " 91 ", expected: "+919876543210"},
		{desc: "SingleDigitCountry", localNumber: "2025550123", countryCode: "1", expected: "+12025550123"},
		{desc: "EmptyLocal", localNumber: "", countryCode: "91", wantErr: true},
		{desc: "LettersOnlyLocal", localNumber: "abc", countryCode: "91", wantErr: true},
		{desc: "EmptyCountry", localNumber: "9876543210", countryCode: "", wantErr: true},
		{desc: "TooLong", localNumber: "987654321098765432", countryCode: "91", wantErr: true},
		{desc: "ZeroCountry", localNumber: "9876543210", countryCode: "0", wantErr: true},
		{desc: "ZeroPrefixedCountry", localNumber: "9876543210", countryCode: "091", expected: "+919876543210"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			formatted, err := service.FormatPhoneNumber(tc.localNumber, tc.countryCode)

			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, entity.ErrInvalidData)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, formatted)
			require.Regexp(t, regexp.MustCompile(`^\+[1-9]\d{1,14}$`), formatted)
		})
	}
}

type otpTestDeps struct {
	store  *mock_service.MockCodeStore
	sms    *mock_service.MockSMSSender
	events *mock_service.MockEventPublisher
}

func newOTPService(t *testing.T, demoMode bool) (*service.OTPService, otpTestDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := mock_service.NewMockCodeStore(ctrl)
	sms := mock_service.NewMockSMSSender(ctrl)
	events := mock_service.NewMockEventPublisher(ctrl)

	log := mock_logger.NewMockLogger(ctrl)
	log.EXPECT().Ctx(gomock.Any()).Return(log).AnyTimes()
	log.EXPECT().Debugw(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Infow(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warnw(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Errorw(gomock.Any(), gomock.Any()).AnyTimes()

	metrics := mock_metric.NewMockOTP(ctrl)
	metrics.EXPECT().Issued(gomock.Any()).AnyTimes()
	metrics.EXPECT().Verified().AnyTimes()
	metrics.EXPECT().Rejected(gomock.Any()).AnyTimes()

	svc := service.NewOTPService(store, sms, events, log, metrics, &config.OTP{
		TTL:         5 * time.Minute,
		MaxAttempts: 3,
		Store:       "memory",
		DemoMode:    demoMode,
	})

	return svc, otpTestDeps{store: store, sms: sms, events: events}
}

func TestOTPService_SendCode(t *testing.T) {
	ctx := context.Background()
	codePattern := regexp.MustCompile(`^[1-9]\d{5}$`)

	t.Run("Success", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		var storedCode string
		deps.store.EXPECT().
			Put(ctx, "919876543210", gomock.Any(), 5*time.Minute).
			DoAndReturn(func(_ context.Context, _ string, record *entity.OTPRecord, _ time.Duration) error {
				storedCode = record.Code
				require.Regexp(t, codePattern, record.Code)
				require.Zero(t, record.Attempts)
				require.WithinDuration(t, time.Now().Add(5*time.Minute), record.ExpiresAt, 2*time.Second)
				return nil
			}).Times(1)

		deps.sms.EXPECT().
			Send(ctx, "+919876543210", "91", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, message string) error {
				require.Contains(t, message, storedCode)
				return nil
			}).Times(1)

		result, err := svc.SendCode(ctx, "9876543210", "91")
		require.NoError(t, err)
		require.True(t, result.Success)
		require.Empty(t, result.DemoCode)
	})

	t.Run("DemoFallbackWhenUnconfigured", func(t *testing.T) {
		svc, deps := newOTPService(t, true)

		deps.store.EXPECT().
			Put(ctx, "919876543210", gomock.Any(), 5*time.Minute).
			Return(nil).Times(1)
		deps.sms.EXPECT().
			Send(ctx, "+919876543210", "91", gomock.Any()).
			Return(entity.ErrSMSDispatchFailed).Times(1)
		deps.sms.EXPECT().Configured().Return(false).Times(1)

		result, err := svc.SendCode(ctx, "9876543210", "91")
		require.NoError(t, err)
		require.True(t, result.Success)
		require.Regexp(t, codePattern, result.DemoCode)
	})

	t.Run("NoFallbackWhenDemoModeOff", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		deps.store.EXPECT().
			Put(ctx, "919876543210", gomock.Any(), 5*time.Minute).
			Return(nil).Times(1)
		deps.sms.EXPECT().
			Send(ctx, "+919876543210", "91", gomock.Any()).
			Return(entity.ErrSMSDispatchFailed).Times(1)

		result, err := svc.SendCode(ctx, "9876543210", "91")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Empty(t, result.DemoCode)
	})

	t.Run("NoFallbackWhenConfigured", func(t *testing.T) {
		svc, deps := newOTPService(t, true)

		deps.store.EXPECT().
			Put(ctx, "919876543210", gomock.Any(), 5*time.Minute).
			Return(nil).Times(1)
		deps.sms.EXPECT().
			Send(ctx, "+919876543210", "91", gomock.Any()).
			Return(entity.ErrSMSDispatchFailed).Times(1)
		deps.sms.EXPECT().Configured().Return(true).Times(1)

		result, err := svc.SendCode(ctx, "9876543210", "91")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Empty(t, result.DemoCode)
	})

	t.Run("MalformedPhone", func(t *testing.T) {
		svc, _ := newOTPService(t, false)

		result, err := svc.SendCode(ctx, "", "91")
		require.ErrorIs(t, err, entity.ErrInvalidData)
		require.Nil(t, result)
	})
}

func TestOTPService_VerifyCode(t *testing.T) {
	ctx := context.Background()
	const key = "919876543210"

	activeRecord := func(code string, attempts int) *entity.OTPRecord {
		return &entity.OTPRecord{
			Code:      code,
			ExpiresAt: time.Now().Add(3 * time.Minute),
			Attempts:  attempts,
		}
	}

	t.Run("Success", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		deps.store.EXPECT().Get(ctx, key).Return(activeRecord("123456", 0), nil).Times(1)
		deps.store.EXPECT().Delete(ctx, key).Return(nil).Times(1)
		deps.events.EXPECT().PhoneVerified(ctx, key).Times(1)

		result, err := svc.VerifyCode(ctx, "9876543210", "91", "123456")
		require.NoError(t, err)
		require.True(t, result.Success)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		deps.store.EXPECT().Get(ctx, key).Return(nil, entity.ErrDataNotFound).Times(1)

		result, err := svc.VerifyCode(ctx, "9876543210", "91", "123456")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Contains(t, result.Message, "not found or expired")
	})

	t.Run("Expired", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		expired := &entity.OTPRecord{
			Code:      "123456",
			ExpiresAt: time.Now().Add(-time.Second),
		}
		deps.store.EXPECT().Get(ctx, key).Return(expired, nil).Times(1)
		deps.store.EXPECT().Delete(ctx, key).Return(nil).Times(1)

		result, err := svc.VerifyCode(ctx, "9876543210", "91", "123456")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Contains(t, result.Message, "not found or expired")
	})

	t.Run("FirstMismatch", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		deps.store.EXPECT().Get(ctx, key).Return(activeRecord("123456", 0), nil).Times(1)
		deps.store.EXPECT().IncrementAttempts(ctx, key).Return(1, nil).Times(1)

		result, err := svc.VerifyCode(ctx, "9876543210", "91", "000000")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, "Invalid code. 2 attempts remaining.", result.Message)
		require.Equal(t, 2, result.AttemptsLeft)
	})

	t.Run("MismatchOnRecordExpiredMidVerify", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		deps.store.EXPECT().Get(ctx, key).Return(activeRecord("123456", 0), nil).Times(1)
		deps.store.EXPECT().IncrementAttempts(ctx, key).Return(0, entity.ErrDataNotFound).Times(1)

		result, err := svc.VerifyCode(ctx, "9876543210", "91", "000000")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Contains(t, result.Message, "not found or expired")
	})

	t.Run("ThirdMismatchExhaustsAttempts", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		deps.store.EXPECT().Get(ctx, key).Return(activeRecord("123456", 2), nil).Times(1)
		deps.store.EXPECT().IncrementAttempts(ctx, key).Return(3, nil).Times(1)
		deps.store.EXPECT().Delete(ctx, key).Return(nil).Times(1)

		result, err := svc.VerifyCode(ctx, "9876543210", "91", "000000")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, "Invalid code. 0 attempts remaining.", result.Message)
		require.Zero(t, result.AttemptsLeft)
	})

	t.Run("AttemptsAlreadyExhausted", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		deps.store.EXPECT().Get(ctx, key).Return(activeRecord("123456", 3), nil).Times(1)
		deps.store.EXPECT().Delete(ctx, key).Return(nil).Times(1)

		result, err := svc.VerifyCode(ctx, "9876543210", "91", "123456")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Contains(t, result.Message, "Too many incorrect attempts")
	})

	t.Run("StoreFailure", func(t *testing.T) {
		svc, deps := newOTPService(t, false)

		storeErr := errors.New("redis gone")
		deps.store.EXPECT().Get(ctx, key).Return(nil, storeErr).Times(1)

		result, err := svc.VerifyCode(ctx, "9876543210", "91", "123456")
		require.ErrorIs(t, err, storeErr)
		require.Nil(t, result)
	})
}

func TestOTPService_ResendCode(t *testing.T) {
	ctx := context.Background()
	const key = "919876543210"

	svc, deps := newOTPService(t, false)

	gomock.InOrder(
		deps.store.EXPECT().Delete(ctx, key).Return(nil),
		deps.store.EXPECT().Put(ctx, key, gomock.Any(), 5*time.Minute).Return(nil),
		deps.sms.EXPECT().Send(ctx, "+919876543210", "91", gomock.Any()).Return(nil),
	)

	result, err := svc.ResendCode(ctx, "9876543210", "91")
	require.NoError(t, err)
	require.True(t, result.Success)
}
