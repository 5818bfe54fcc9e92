package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/ledger"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionService interface {
	Create(ctx context.Context, organizationID, authorID uuid.UUID, view ledger.View, req *TransactionRequest) (*models.Transaction, error)
	Update(ctx context.Context, organizationID, id uuid.UUID, view ledger.View, req *TransactionRequest) (*models.Transaction, error)
	Delete(ctx context.Context, organizationID, id uuid.UUID, view ledger.View) error
	Get(ctx context.Context, organizationID, id uuid.UUID, view ledger.View) (*models.Transaction, error)
	List(ctx context.Context, organizationID uuid.UUID, filter models.TransactionFilter, view ledger.View) ([]*models.Transaction, error)
}

type transactionService struct {
	txRepo       repositories.TransactionRepository
	categoryRepo repositories.CategoryRepository
	payeeRepo    repositories.PayeeRepository
}

func NewTransactionService(txRepo repositories.TransactionRepository, categoryRepo repositories.CategoryRepository, payeeRepo repositories.PayeeRepository) TransactionService {
	return &transactionService{txRepo: txRepo, categoryRepo: categoryRepo, payeeRepo: payeeRepo}
}

type TransactionRequest struct {
	Amount      decimal.Decimal        `json:"amount"`
	Currency    models.Currency        `json:"currency" validate:"required"`
	Type        models.TransactionType `json:"type" validate:"required"`
	IsFiscal    bool                   `json:"is_fiscal"`
	Description string                 `json:"description" validate:"max=500"`
	OccurredAt  time.Time              `json:"occurred_at"`
	CategoryID  *uuid.UUID             `json:"category_id"`
	PayeeID     *uuid.UUID             `json:"payee_id"`
}

// validate checks the row invariants and that linked rows belong to the organization.
// Members without the real view may only record fiscal rows.
func (s *transactionService) validate(ctx context.Context, organizationID uuid.UUID, view ledger.View, req *TransactionRequest) error {
	if req.Amount.IsNegative() {
		return common.Invalid("amount must not be negative")
	}
	if !req.Currency.Valid() {
		return common.Invalid("currency must be ARS or USD")
	}
	if !req.Type.Valid() {
		return common.Invalid("type must be income or expense")
	}
	if !req.IsFiscal && !view.CanViewReal {
		return common.Forbidden("recording non-fiscal transactions requires the real view")
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, organizationID, *req.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return common.Invalid("category does not belong to this organization")
			}
			return err
		}
	}
	if req.PayeeID != nil {
		if _, err := s.payeeRepo.GetByID(ctx, organizationID, *req.PayeeID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return common.Invalid("payee does not belong to this organization")
			}
			return err
		}
	}
	return nil
}

func (s *transactionService) Create(ctx context.Context, organizationID, authorID uuid.UUID, view ledger.View, req *TransactionRequest) (*models.Transaction, error) {
	if err := s.validate(ctx, organizationID, view, req); err != nil {
		return nil, err
	}
	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	tx := &models.Transaction{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		AuthorID:       authorID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Type:           req.Type,
		IsFiscal:       req.IsFiscal,
		Description:    strings.TrimSpace(req.Description),
		OccurredAt:     occurredAt,
		CategoryID:     req.CategoryID,
		PayeeID:        req.PayeeID,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, translate(err, "transaction")
	}
	return tx, nil
}

func (s *transactionService) Get(ctx context.Context, organizationID, id uuid.UUID, view ledger.View) (*models.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, translate(err, "transaction")
	}
	if !view.Includes(tx) {
		return nil, translate(repositories.ErrNotFound, "transaction")
	}
	return tx, nil
}

func (s *transactionService) Update(ctx context.Context, organizationID, id uuid.UUID, view ledger.View, req *TransactionRequest) (*models.Transaction, error) {
	tx, err := s.Get(ctx, organizationID, id, view)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, organizationID, view, req); err != nil {
		return nil, err
	}

	tx.Amount = req.Amount
	tx.Currency = req.Currency
	tx.Type = req.Type
	tx.IsFiscal = req.IsFiscal
	tx.Description = strings.TrimSpace(req.Description)
	if !req.OccurredAt.IsZero() {
		tx.OccurredAt = req.OccurredAt
	}
	tx.CategoryID = req.CategoryID
	tx.PayeeID = req.PayeeID

	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, translate(err, "transaction")
	}
	return tx, nil
}

func (s *transactionService) Delete(ctx context.Context, organizationID, id uuid.UUID, view ledger.View) error {
	if _, err := s.Get(ctx, organizationID, id, view); err != nil {
		return err
	}
	return translate(s.txRepo.Delete(ctx, organizationID, id), "transaction")
}

// List applies the privacy view in the query so hidden rows never leave the database.
func (s *transactionService) List(ctx context.Context, organizationID uuid.UUID, filter models.TransactionFilter, view ledger.View) ([]*models.Transaction, error) {
	if filter.Currency != nil && !filter.Currency.Valid() {
		return nil, common.Invalid("currency must be ARS or USD")
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, common.Invalid("type must be income or expense")
	}
	if filter.From != nil && filter.To != nil {
		if err := common.ValidateDateRange(*filter.From, *filter.To); err != nil {
			return nil, common.Invalid("%s", err.Error())
		}
	}
	if view.Mode != ledger.ModeReal {
		filter.FiscalOnly = true
	}

	txs, err := s.txRepo.List(ctx, organizationID, filter)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}
	return txs, nil
}
