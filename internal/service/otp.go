package service

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"wfconsole/internal/config"
	"wfconsole/internal/entity"
	"wfconsole/pkg/logger"
	"wfconsole/pkg/metric"
)

//go:generate mockgen -source=otp.go -destination=mock/otp.go -package=mock_service

// User-safe result messages. Raw transport and store errors stay in the logs.
const (
	_msgCodeSent        = "Verification code sent."
	_msgCodeSentDemo    = "SMS transport unavailable. Demo code issued."
	_msgSendFailed      = "Could not send the verification code. Please try again."
	_msgCodeNotFound    = "Verification code not found or expired. Please request a new one."
	_msgTooManyAttempts = "Too many incorrect attempts. Please request a new code."
	_msgVerified        = "Phone number verified."
)

var (
	_e164Pattern     = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	_nonDigitPattern = regexp.MustCompile(`\D`)
)

type (
	// CodeStore holds pending verification codes with per-key expiry. Both the
	// in-process LRU backend and the redis backend satisfy it.
	CodeStore interface {
		Put(ctx context.Context, key string, record *entity.OTPRecord, ttl time.Duration) error
		Get(ctx context.Context, key string) (*entity.OTPRecord, error)
		Delete(ctx context.Context, key string) error
		IncrementAttempts(ctx context.Context, key string) (int, error)
	}

	SMSSender interface {
		Configured() bool
		Send(ctx context.Context, phone, countryCode, message string) error
	}

	OTPService struct {
		store       CodeStore
		sms         SMSSender
		events      EventPublisher
		logger      logger.Logger
		metrics     metric.OTP
		ttl         time.Duration
		maxAttempts int
		demoMode    bool
	}
)

func NewOTPService(
	store CodeStore,
	sms SMSSender,
	events EventPublisher,
	log logger.Logger,
	metrics metric.OTP,
	cfg *config.OTP,
) *OTPService {
	return &OTPService{
		store:       store,
		sms:         sms,
		events:      events,
		logger:      log,
		metrics:     metrics,
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
		demoMode:    cfg.DemoMode,
	}
}

// FormatPhoneNumber normalizes a local number and country code into E.164
// form. Both inputs are stripped to digits; no numbering-plan validation
// beyond the E.164 shape is attempted.
func FormatPhoneNumber(localNumber, countryCode string) (string, error) {
	const op = "service.otp.FormatPhoneNumber"

	local := _nonDigitPattern.ReplaceAllString(localNumber, "")
	country := _nonDigitPattern.ReplaceAllString(countryCode, "")

	if local == "" {
		return "", fmt.Errorf("%s: %w: local number has no digits", op, entity.ErrInvalidData)
	}
	// Leading zeros are a dialing prefix, not part of the country code.
	country = strings.TrimLeft(country, "0")
	if country == "" {
		return "", fmt.Errorf("%s: %w: country code has no digits", op, entity.ErrInvalidData)
	}

	formatted := "+" + country + local
	if !_e164Pattern.MatchString(formatted) {
		return "", fmt.Errorf("%s: %w: %q is not a valid E.164 number",
			op, entity.ErrInvalidData, formatted)
	}
	return formatted, nil
}

// SendCode issues a fresh 6-digit code for the number, stores it with the
// configured expiry and dispatches it over SMS. Transport failure degrades to
// the demo fallback only when demo mode is enabled and no transport credential
// is configured; otherwise the caller gets a failure result.
func (s *OTPService) SendCode(
	ctx context.Context,
	localNumber, countryCode string,
) (*entity.OTPResult, error) {
	const op = "service.otp.SendCode"

	phone, err := FormatPhoneNumber(localNumber, countryCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("%s: generate code: %w", op, err)
	}

	record := &entity.OTPRecord{
		Code:      code,
		ExpiresAt: time.Now().Add(s.ttl),
		Attempts:  0,
	}
	if err := s.store.Put(ctx, storeKey(localNumber, countryCode), record, s.ttl); err != nil {
		return nil, fmt.Errorf("%s: store code: %w", op, err)
	}

	message := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.ttl.Minutes()))

	if err := s.sms.Send(ctx, phone, countryCode, message); err != nil {
		if s.demoMode && !s.sms.Configured() {
			s.logger.Ctx(ctx).Warnw("sms transport unavailable, issuing demo code",
				"phone", phone)
			s.metrics.Issued("demo")
			return &entity.OTPResult{
				Success:  true,
				Message:  _msgCodeSentDemo,
				DemoCode: code,
			}, nil
		}

		s.logger.Ctx(ctx).Errorw("sms dispatch failed", "phone", phone, "error", err)
		s.metrics.Rejected("dispatch_failed")
		return &entity.OTPResult{Success: false, Message: _msgSendFailed}, nil
	}

	s.metrics.Issued("sms")
	s.logger.Ctx(ctx).Infow("verification code sent", "phone", phone)

	return &entity.OTPResult{Success: true, Message: _msgCodeSent}, nil
}

// VerifyCode checks a submitted code against the stored record. The record is
// deleted on success, on expiry and once the attempts run out, so a
// later call with the correct code still reports not found.
func (s *OTPService) VerifyCode(
	ctx context.Context,
	localNumber, countryCode, submittedCode string,
) (*entity.OTPResult, error) {
	const op = "service.otp.VerifyCode"

	key := storeKey(localNumber, countryCode)

	record, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			s.metrics.Rejected("not_found")
			return &entity.OTPResult{Success: false, Message: _msgCodeNotFound}, nil
		}
		return nil, fmt.Errorf("%s: load record: %w", op, err)
	}

	if time.Now().After(record.ExpiresAt) {
		if err := s.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("%s: delete expired record: %w", op, err)
		}
		s.metrics.Rejected("expired")
		return &entity.OTPResult{Success: false, Message: _msgCodeNotFound}, nil
	}

	if record.Attempts >= s.maxAttempts {
		if err := s.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("%s: delete exhausted record: %w", op, err)
		}
		s.metrics.Rejected("too_many_attempts")
		return &entity.OTPResult{Success: false, Message: _msgTooManyAttempts}, nil
	}

	if record.Code != submittedCode {
		attempts, err := s.store.IncrementAttempts(ctx, key)
		if err != nil {
			// The record can expire between Get and the increment.
			if errors.Is(err, entity.ErrDataNotFound) {
				s.metrics.Rejected("not_found")
				return &entity.OTPResult{Success: false, Message: _msgCodeNotFound}, nil
			}
			return nil, fmt.Errorf("%s: increment attempts: %w", op, err)
		}

		remaining := s.maxAttempts - attempts
		if remaining <= 0 {
			remaining = 0
			if err := s.store.Delete(ctx, key); err != nil {
				return nil, fmt.Errorf("%s: delete exhausted record: %w", op, err)
			}
		}

		s.metrics.Rejected("mismatch")
		return &entity.OTPResult{
			Success:      false,
			Message:      fmt.Sprintf("Invalid code. %d attempts remaining.", remaining),
			AttemptsLeft: remaining,
		}, nil
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("%s: delete verified record: %w", op, err)
	}

	s.metrics.Verified()
	s.logger.Ctx(ctx).Infow("phone number verified",
		"phone_key", key)
	s.events.PhoneVerified(ctx, key)

	return &entity.OTPResult{Success: true, Message: _msgVerified}, nil
}

// ResendCode drops any pending record and issues a fresh code. Resend
// throttling is a presentation concern and is not enforced here.
func (s *OTPService) ResendCode(
	ctx context.Context,
	localNumber, countryCode string,
) (*entity.OTPResult, error) {
	const op = "service.otp.ResendCode"

	if err := s.store.Delete(ctx, storeKey(localNumber, countryCode)); err != nil {
		return nil, fmt.Errorf("%s: delete previous record: %w", op, err)
	}

	result, err := s.SendCode(ctx, localNumber, countryCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func storeKey(localNumber, countryCode string) string {
	return _nonDigitPattern.ReplaceAllString(countryCode, "") +
		_nonDigitPattern.ReplaceAllString(localNumber, "")
}

func generateCode() (string, error) {
	n, err := crand.Int(crand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
