package repositories

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
	List(ctx context.Context, organizationID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error)
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type transactionRepo struct {
	db DB
}

func NewTransactionRepo(db DB) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, organization_id, author_id, amount, currency, type, is_fiscal, description, occurred_at, category_id, payee_id, created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.OrganizationID, &t.AuthorID, &t.Amount, &t.Currency, &t.Type, &t.IsFiscal,
		&t.Description, &t.OccurredAt, &t.CategoryID, &t.PayeeID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return t, nil
}

func (r *transactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, organization_id, author_id, amount, currency, type, is_fiscal, description, occurred_at, category_id, payee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tx.ID, tx.OrganizationID, tx.AuthorID, tx.Amount, tx.Currency, tx.Type, tx.IsFiscal,
		tx.Description, tx.OccurredAt, tx.CategoryID, tx.PayeeID)
	return translateError(err)
}

func (r *transactionRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE organization_id = $1 AND id = $2`
	return scanTransaction(r.db.QueryRow(ctx, query, organizationID, id))
}

func (r *transactionRepo) Update(ctx context.Context, tx *models.Transaction) error {
	query := `
		UPDATE transactions
		SET amount = $1, currency = $2, type = $3, is_fiscal = $4, description = $5, occurred_at = $6,
			category_id = $7, payee_id = $8, updated_at = NOW()
		WHERE organization_id = $9 AND id = $10
	`
	return execAffecting(ctx, r.db, query, tx.Amount, tx.Currency, tx.Type, tx.IsFiscal, tx.Description, tx.OccurredAt,
		tx.CategoryID, tx.PayeeID, tx.OrganizationID, tx.ID)
}

func (r *transactionRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE organization_id = $1 AND id = $2`
	return execAffecting(ctx, r.db, query, organizationID, id)
}

// List returns the organization's ledger rows newest first. A zero Limit means no limit.
func (r *transactionRepo) List(ctx context.Context, organizationID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	query, args := buildTransactionListQuery(organizationID, filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func buildTransactionListQuery(organizationID uuid.UUID, filter models.TransactionFilter) (string, []any) {
	conditions := []string{"organization_id = $1"}
	args := []any{organizationID}

	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.From != nil {
		add("occurred_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("occurred_at < $%d", *filter.To)
	}
	if filter.Currency != nil {
		add("currency = $%d", *filter.Currency)
	}
	if filter.Type != nil {
		add("type = $%d", *filter.Type)
	}
	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}
	if filter.FiscalOnly {
		conditions = append(conditions, "is_fiscal = TRUE")
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY occurred_at DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}
	return query, args
}

func (r *transactionRepo) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return execDeleteAll(ctx, r.db, `DELETE FROM transactions WHERE organization_id = $1`, organizationID)
}
