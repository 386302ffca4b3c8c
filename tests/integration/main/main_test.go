package main

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"wfconsole/internal/config"
	"wfconsole/internal/entity"
	"wfconsole/internal/repository"
	"wfconsole/pkg/logger"
	"wfconsole/pkg/metric"
	"wfconsole/pkg/storage/postgres"
	"wfconsole/pkg/storage/postgres/transaction"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"
)

type IntegrationTestSuite struct {
	suite.Suite

	db        *postgres.Postgres
	txnRepo   *repository.TransactionRepository
	txManager transaction.Manager
	cfg       *config.Config
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, err := config.Load()
	s.Require().NoError(err, "Failed to load configuration")
	s.cfg = cfg

	testLogger, err := logger.NewAdapter(cfg)
	s.Require().NoError(err)

	maxRetries := 10
	var db *postgres.Postgres

	for i := range maxRetries {
		db, err = postgres.NewPostgres(&cfg.Postgres, testLogger)
		if err == nil {
			break
		}
		testLogger.Info("Waiting for database to be ready...", "attempt", i+1, "error", err.Error())
		time.Sleep(5 * time.Second)
	}
	s.Require().NoError(err, "Failed to connect to postgres after retries")
	s.db = db

	err = db.Pool.Ping(ctx)
	s.Require().NoError(err, "Failed to ping database")

	txManager, err := transaction.NewManager(db, testLogger, metric.NewFactory().Transaction())
	s.Require().NoError(err)
	s.txManager = txManager

	s.txnRepo = repository.NewTransactionRepository(db)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Pool.Close()
	}
}

func (s *IntegrationTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.Pool.Exec(ctx, "TRUNCATE TABLE payment_transactions;")
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestCreateAndGetTransaction() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fakeTxn := generateFakeTransaction()

	err := s.txManager.ExecuteInTransaction(ctx, "test.create",
		func(tx postgres.QueryExecuter) error {
			return s.txnRepo.Create(ctx, tx, fakeTxn)
		})
	s.Require().NoError(err)

	retrieved, err := s.txnRepo.GetByTxnID(ctx, fakeTxn.TxnID)
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)
	s.Require().Equal(fakeTxn.TxnID, retrieved.TxnID)
	s.Require().Equal(fakeTxn.Amount, retrieved.Amount)
	s.Require().Equal(entity.TransactionInitiated, retrieved.Status)
}

func (s *IntegrationTestSuite) TestDuplicateTxnIDRejected() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fakeTxn := generateFakeTransaction()

	err := s.txManager.ExecuteInTransaction(ctx, "test.create",
		func(tx postgres.QueryExecuter) error {
			return s.txnRepo.Create(ctx, tx, fakeTxn)
		})
	s.Require().NoError(err)

	err = s.txManager.ExecuteInTransaction(ctx, "test.create",
		func(tx postgres.QueryExecuter) error {
			return s.txnRepo.Create(ctx, tx, fakeTxn)
		})
	s.Require().ErrorIs(err, entity.ErrConflictingData)
}

func (s *IntegrationTestSuite) TestUpdateStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fakeTxn := generateFakeTransaction()

	err := s.txManager.ExecuteInTransaction(ctx, "test.create",
		func(tx postgres.QueryExecuter) error {
			return s.txnRepo.Create(ctx, tx, fakeTxn)
		})
	s.Require().NoError(err)

	err = s.txManager.ExecuteInTransaction(ctx, "test.settle",
		func(tx postgres.QueryExecuter) error {
			return s.txnRepo.UpdateStatus(
				ctx, tx, fakeTxn.TxnID, entity.TransactionCaptured, "403993715531")
		})
	s.Require().NoError(err)

	retrieved, err := s.txnRepo.GetByTxnID(ctx, fakeTxn.TxnID)
	s.Require().NoError(err)
	s.Require().Equal(entity.TransactionCaptured, retrieved.Status)
	s.Require().Equal("403993715531", retrieved.GatewayID)
}

func (s *IntegrationTestSuite) TestUpdateStatusUnknownTxn() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.txManager.ExecuteInTransaction(ctx, "test.settle",
		func(tx postgres.QueryExecuter) error {
			return s.txnRepo.UpdateStatus(
				ctx, tx, "TXNdoesnotexist", entity.TransactionFailed, "")
		})
	s.Require().ErrorIs(err, entity.ErrDataNotFound)
}

func TestIntegration(t *testing.T) {
	t.Parallel()
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration test; set INTEGRATION_TEST to run.")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func generateFakeTransaction() *entity.PaymentTransaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entity.PaymentTransaction{
		TxnID:       fmt.Sprintf("TXN%s%08x", gofakeit.Numerify("#############"), gofakeit.Uint32()),
		Amount:      "11741.00",
		ProductInfo: "Business plan for 50 users",
		FirstName:   gofakeit.FirstName(),
		Email:       gofakeit.Email(),
		Phone:       gofakeit.Numerify("+919#########"),
		PlanName:    "Business",
		UserCount:   50,
		UserID:      gofakeit.UUID(),
		Status:      entity.TransactionInitiated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
