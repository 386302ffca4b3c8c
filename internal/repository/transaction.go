package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wfconsole/internal/entity"
	"wfconsole/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TransactionRepository persists the payment ledger. One row per initiated
// checkout, updated in place when the gateway's return trip settles it.
type TransactionRepository struct {
	db *postgres.Postgres
}

func NewTransactionRepository(db *postgres.Postgres) *TransactionRepository {
	return &TransactionRepository{db}
}

func (tr *TransactionRepository) Create(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	txn *entity.PaymentTransaction,
) error {
	const op = "repository.transaction.Create"

	query := tr.db.Builder.Insert(`"payment_transactions"`).
		Columns("txnid", "amount", "productinfo", "firstname", "email", "phone",
			"plan_name", "user_count", "user_id", "status", "gateway_id",
			"created_at", "updated_at").
		Values(
			txn.TxnID,
			txn.Amount,
			txn.ProductInfo,
			txn.FirstName,
			txn.Email,
			txn.Phone,
			txn.PlanName,
			txn.UserCount,
			txn.UserID,
			string(txn.Status),
			txn.GatewayID,
			txn.CreatedAt,
			txn.UpdatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	if _, err := queryExecuter.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entity.ErrConflictingData
		}
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (tr *TransactionRepository) GetByTxnID(
	ctx context.Context,
	txnID string,
) (*entity.PaymentTransaction, error) {
	const op = "repository.transaction.GetByTxnID"

	query := tr.db.Builder.Select("txnid", "amount", "productinfo", "firstname",
		"email", "phone", "plan_name", "user_count", "user_id", "status",
		"gateway_id", "created_at", "updated_at").
		From(`"payment_transactions"`).
		Where(squirrel.Eq{"txnid": txnID}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := &entity.PaymentTransaction{}
	var status string
	err = tr.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&result.TxnID,
		&result.Amount,
		&result.ProductInfo,
		&result.FirstName,
		&result.Email,
		&result.Phone,
		&result.PlanName,
		&result.UserCount,
		&result.UserID,
		&status,
		&result.GatewayID,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}
	result.Status = entity.TransactionStatus(status)

	return result, nil
}

func (tr *TransactionRepository) UpdateStatus(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	txnID string,
	status entity.TransactionStatus,
	gatewayID string,
) error {
	const op = "repository.transaction.UpdateStatus"

	query := tr.db.Builder.Update(`"payment_transactions"`).
		Set("status", string(status)).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"txnid": txnID})
	if gatewayID != "" {
		query = query.Set("gateway_id", gatewayID)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	tag, err := queryExecuter.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDataNotFound
	}

	return nil
}
