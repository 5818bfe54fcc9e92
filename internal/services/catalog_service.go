package services

import (
	"context"
	"strings"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
)

type CatalogService interface {
	ListCategories(ctx context.Context, organizationID uuid.UUID) ([]*models.Category, error)
	CreateCategory(ctx context.Context, organizationID uuid.UUID, req *CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, organizationID, id uuid.UUID, req *CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, organizationID, id uuid.UUID) error

	ListPayees(ctx context.Context, organizationID uuid.UUID) ([]*models.Payee, error)
	CreatePayee(ctx context.Context, organizationID uuid.UUID, req *PayeeRequest) (*models.Payee, error)
	UpdatePayee(ctx context.Context, organizationID, id uuid.UUID, req *PayeeRequest) (*models.Payee, error)
	DeletePayee(ctx context.Context, organizationID, id uuid.UUID) error
}

type catalogService struct {
	categoryRepo repositories.CategoryRepository
	payeeRepo    repositories.PayeeRepository
}

func NewCatalogService(categoryRepo repositories.CategoryRepository, payeeRepo repositories.PayeeRepository) CatalogService {
	return &catalogService{categoryRepo: categoryRepo, payeeRepo: payeeRepo}
}

type CategoryRequest struct {
	Name string                 `json:"name" validate:"required,max=100"`
	Type models.TransactionType `json:"type" validate:"required"`
}

type PayeeRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	TaxID string `json:"tax_id" validate:"max=20"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=40"`
}

func (r *CategoryRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return common.Invalid("name is required")
	}
	if !r.Type.Valid() {
		return common.Invalid("type must be income or expense")
	}
	return nil
}

func (r *PayeeRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return common.Invalid("name is required")
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context, organizationID uuid.UUID) ([]*models.Category, error) {
	categories, err := s.categoryRepo.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, organizationID uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	category := &models.Category{ID: uuid.New(), OrganizationID: organizationID, Name: req.Name, Type: req.Type}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, translate(err, "category")
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, organizationID, id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, translate(err, "category")
	}
	category.Name = req.Name
	category.Type = req.Type
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, translate(err, "category")
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, organizationID, id uuid.UUID) error {
	return translate(s.categoryRepo.Delete(ctx, organizationID, id), "category")
}

func (s *catalogService) ListPayees(ctx context.Context, organizationID uuid.UUID) ([]*models.Payee, error) {
	payees, err := s.payeeRepo.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if payees == nil {
		payees = []*models.Payee{}
	}
	return payees, nil
}

func (s *catalogService) CreatePayee(ctx context.Context, organizationID uuid.UUID, req *PayeeRequest) (*models.Payee, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	payee := &models.Payee{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Name:           req.Name,
		TaxID:          strings.TrimSpace(req.TaxID),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
	}
	if err := s.payeeRepo.Create(ctx, payee); err != nil {
		return nil, translate(err, "payee")
	}
	return payee, nil
}

func (s *catalogService) UpdatePayee(ctx context.Context, organizationID, id uuid.UUID, req *PayeeRequest) (*models.Payee, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	payee, err := s.payeeRepo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, translate(err, "payee")
	}
	payee.Name = req.Name
	payee.TaxID = strings.TrimSpace(req.TaxID)
	payee.Email = strings.TrimSpace(req.Email)
	payee.Phone = strings.TrimSpace(req.Phone)
	if err := s.payeeRepo.Update(ctx, payee); err != nil {
		return nil, translate(err, "payee")
	}
	return payee, nil
}

func (s *catalogService) DeletePayee(ctx context.Context, organizationID, id uuid.UUID) error {
	return translate(s.payeeRepo.Delete(ctx, organizationID, id), "payee")
}
