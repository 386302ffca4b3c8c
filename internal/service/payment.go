package service

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"wfconsole/internal/config"
	"wfconsole/internal/entity"
	"wfconsole/pkg/logger"
	"wfconsole/pkg/metric"
	"wfconsole/pkg/storage/postgres"
	"wfconsole/pkg/storage/postgres/transaction"
)

//go:generate mockgen -source=payment.go -destination=mock/payment.go -package=mock_service

const (
	_msgPaymentCaptured   = "Payment received. Your subscription is now active."
	_msgPaymentFailed     = "Payment was not completed. No money has been charged."
	_msgPaymentUnverified = "We could not verify your payment. Please contact support."
)

type (
	// HashSigner is the external signing service holding the merchant salt.
	// Hashes are never computed in this process.
	HashSigner interface {
		GenerateHash(ctx context.Context, params *entity.PaymentParams) (string, error)
		VerifyHash(ctx context.Context, params map[string]string) (bool, error)
	}

	TransactionRepository interface {
		Create(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			txn *entity.PaymentTransaction,
		) error
		GetByTxnID(ctx context.Context, txnID string) (*entity.PaymentTransaction, error)
		UpdateStatus(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			txnID string,
			status entity.TransactionStatus,
			gatewayID string,
		) error
	}

	EventPublisher interface {
		PhoneVerified(ctx context.Context, phoneKey string)
		PaymentSettled(ctx context.Context, txn *entity.PaymentTransaction)
	}

	PaymentService struct {
		signer    HashSigner
		txnRepo   TransactionRepository
		txManager transaction.Manager
		events    EventPublisher
		logger    logger.Logger
		metrics   metric.Payment
		cfg       config.Payment
	}
)

func NewPaymentService(
	signer HashSigner,
	txnRepo TransactionRepository,
	txManager transaction.Manager,
	events EventPublisher,
	log logger.Logger,
	metrics metric.Payment,
	cfg config.Payment,
) *PaymentService {
	return &PaymentService{
		signer:    signer,
		txnRepo:   txnRepo,
		txManager: txManager,
		events:    events,
		logger:    log,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// InitiateCheckout runs the handoff gates in order and, when all pass, returns
// the signed form-POST payload for the hosted payment page. The browser
// performs the actual redirect; this service never talks to the gateway
// directly.
func (s *PaymentService) InitiateCheckout(
	ctx context.Context,
	req *entity.CheckoutRequest,
) (*entity.PaymentForm, error) {
	const op = "service.payment.InitiateCheckout"

	if !req.TermsAgreed {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrTermsNotAgreed)
	}

	if missing := s.missingConfig(); len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w",
			op, entity.NewViolationsError(entity.ErrConfigMissing, missing))
	}

	totals, violations := validateCheckout(req)
	if len(violations) > 0 {
		return nil, fmt.Errorf("%s: %w",
			op, entity.NewViolationsError(entity.ErrInvalidCheckoutData, violations))
	}

	txnID, err := newTransactionID()
	if err != nil {
		return nil, fmt.Errorf("%s: transaction id: %w", op, err)
	}

	amount, err := FormatAmount(totals.Total)
	if err != nil {
		return nil, fmt.Errorf("%s: format amount: %w", op, err)
	}

	params := &entity.PaymentParams{
		Key:         s.cfg.MerchantKey,
		TxnID:       txnID,
		Amount:      amount,
		ProductInfo: fmt.Sprintf("%s plan for %d users", req.Plan.Name, req.Plan.UserCount),
		FirstName:   req.Customer.FirstName,
		Email:       req.Customer.Email,
		Phone:       req.Customer.Phone,
		SURL:        s.cfg.SuccessURL,
		FURL:        s.cfg.FailureURL,
		UDF1:        req.Customer.UserID,
		UDF2:        req.Plan.Name,
		UDF3:        strconv.Itoa(req.Plan.UserCount),
	}

	hash, err := s.signer.GenerateHash(ctx, params)
	if err != nil {
		s.logger.Ctx(ctx).Errorw("hash generation failed",
			"txnid", txnID,
			"user_id", req.Customer.UserID,
			"error", err,
		)
		return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrHashGenerationFailed, err)
	}
	params.Hash = hash

	now := time.Now()
	txn := &entity.PaymentTransaction{
		TxnID:       txnID,
		Amount:      amount,
		ProductInfo: params.ProductInfo,
		FirstName:   req.Customer.FirstName,
		Email:       req.Customer.Email,
		Phone:       req.Customer.Phone,
		PlanName:    req.Plan.Name,
		UserCount:   req.Plan.UserCount,
		UserID:      req.Customer.UserID,
		Status:      entity.TransactionInitiated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.txManager.ExecuteInTransaction(ctx, "payment.initiate",
		func(tx postgres.QueryExecuter) error {
			return s.txnRepo.Create(ctx, tx, txn)
		})
	if err != nil {
		return nil, fmt.Errorf("%s: persist transaction: %w", op, err)
	}

	s.metrics.Initiated(req.Plan.Name)
	s.metrics.ObserveAmount(totals.Total)
	s.logger.Ctx(ctx).Infow("checkout initiated",
		"txnid", txnID,
		"user_id", req.Customer.UserID,
		"plan", req.Plan.Name,
		"amount", amount,
	)

	return &entity.PaymentForm{
		Action: s.cfg.GatewayURL,
		Method: "POST",
		Fields: params.Fields(),
		TxnID:  txnID,
		Totals: totals,
	}, nil
}

// VerifyReturn settles the gateway's return trip. Every parameter is treated
// as an opaque string. The user only ever sees one of the fixed message
// constants; raw gateway fields go to the logs.
func (s *PaymentService) VerifyReturn(
	ctx context.Context,
	params map[string]string,
) *entity.PaymentReturnResult {
	txnID := params["txnid"]
	gatewayStatus := strings.ToLower(params["status"])

	log := s.logger.Ctx(ctx)
	log.Infow("payment return received",
		"txnid", txnID,
		"status", gatewayStatus,
		"mihpayid", params["mihpayid"],
		"mode", params["mode"],
		"bankcode", params["bankcode"],
		"bank_ref_num", params["bank_ref_num"],
		"gateway_error", params["error"],
		"gateway_error_message", params["error_Message"],
	)

	valid, err := s.signer.VerifyHash(ctx, params)
	if err != nil || !valid {
		if err != nil {
			log.Errorw("return hash verification failed", "txnid", txnID, "error", err)
		} else {
			log.Warnw("return hash did not verify", "txnid", txnID)
		}
		s.settle(ctx, txnID, entity.TransactionUnverified, params["mihpayid"])
		return &entity.PaymentReturnResult{
			Verified: false,
			TxnID:    txnID,
			Status:   entity.TransactionUnverified,
			Message:  _msgPaymentUnverified,
		}
	}

	status := entity.TransactionFailed
	message := _msgPaymentFailed
	if gatewayStatus == "success" {
		status = entity.TransactionCaptured
		message = _msgPaymentCaptured
	}

	s.settle(ctx, txnID, status, params["mihpayid"])

	return &entity.PaymentReturnResult{
		Verified: true,
		TxnID:    txnID,
		Status:   status,
		Message:  message,
	}
}

// GetTransaction serves the stored ledger row for the dashboard.
func (s *PaymentService) GetTransaction(
	ctx context.Context,
	txnID string,
) (*entity.PaymentTransaction, error) {
	const op = "service.payment.GetTransaction"

	txn, err := s.txnRepo.GetByTxnID(ctx, txnID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return txn, nil
}

// settle records the final status on the ledger row and emits the billing
// event. Ledger failures are logged, not surfaced; the user outcome was
// already decided by the verification step.
func (s *PaymentService) settle(
	ctx context.Context,
	txnID string,
	status entity.TransactionStatus,
	gatewayID string,
) {
	if txnID == "" {
		return
	}

	err := s.txManager.ExecuteInTransaction(ctx, "payment.settle",
		func(tx postgres.QueryExecuter) error {
			return s.txnRepo.UpdateStatus(ctx, tx, txnID, status, gatewayID)
		})
	if err != nil && !errors.Is(err, entity.ErrDataNotFound) {
		s.logger.Ctx(ctx).Errorw("settling ledger row failed",
			"txnid", txnID,
			"status", string(status),
			"error", err,
		)
	}

	s.metrics.Settled(string(status))

	if status == entity.TransactionCaptured {
		if txn, err := s.txnRepo.GetByTxnID(ctx, txnID); err == nil {
			s.events.PaymentSettled(ctx, txn)
		}
	}
}

func (s *PaymentService) missingConfig() []string {
	var missing []string
	if s.cfg.MerchantKey == "" {
		missing = append(missing, "merchant key")
	}
	if s.cfg.SuccessURL == "" {
		missing = append(missing, "success url")
	}
	if s.cfg.FailureURL == "" {
		missing = append(missing, "failure url")
	}
	if s.cfg.SignerBaseURL == "" {
		missing = append(missing, "signer base url")
	}
	return missing
}

func validateCheckout(req *entity.CheckoutRequest) (*entity.OrderTotals, []string) {
	var violations []string

	if strings.TrimSpace(req.Plan.Name) == "" {
		violations = append(violations, "plan name is required")
	}
	if req.Plan.UserCount < 1 {
		violations = append(violations, "user count must be at least 1")
	}
	if strings.TrimSpace(req.Customer.Email) == "" {
		violations = append(violations, "customer email is required")
	}
	if strings.TrimSpace(req.Customer.UserID) == "" {
		violations = append(violations, "customer user id is required")
	}

	totals, err := CalculateOrderTotals(
		req.Plan.PricePerUser, req.Plan.UserCount, req.Plan.DiscountPercent)
	if err != nil {
		violations = append(violations, "order amount could not be calculated")
		return nil, violations
	}
	if totals.Total <= 0 || math.IsInf(totals.Total, 0) || math.IsNaN(totals.Total) {
		violations = append(violations, "order total must be a positive amount")
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return totals, nil
}

// newTransactionID builds a process-unique id from the wall clock and eight
// random hex characters.
func newTransactionID() (string, error) {
	suffix := make([]byte, 4)
	if _, err := crand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN%d%s", time.Now().UnixNano(), hex.EncodeToString(suffix)), nil
}
