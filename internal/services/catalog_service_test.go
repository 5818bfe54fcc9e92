package services

import (
	"context"
	"testing"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Categories(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("create trims the name", func(t *testing.T) {
		categories := &MockCategoryRepository{}
		categories.On("Create", ctx, mock.AnythingOfType("*models.Category")).Return(nil)
		svc := NewCatalogService(categories, &MockPayeeRepository{})

		category, err := svc.CreateCategory(ctx, orgID, &CategoryRequest{Name: " Alquiler ", Type: models.TransactionExpense})
		require.NoError(t, err)
		assert.Equal(t, "Alquiler", category.Name)
		assert.Equal(t, orgID, category.OrganizationID)
		categories.AssertExpectations(t)
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		categories := &MockCategoryRepository{}
		categories.On("Create", ctx, mock.AnythingOfType("*models.Category")).Return(repositories.ErrConflict)
		svc := NewCatalogService(categories, &MockPayeeRepository{})

		_, err := svc.CreateCategory(ctx, orgID, &CategoryRequest{Name: "Alquiler", Type: models.TransactionExpense})
		assert.ErrorIs(t, err, common.ErrConflict)
	})

	t.Run("invalid type", func(t *testing.T) {
		svc := NewCatalogService(&MockCategoryRepository{}, &MockPayeeRepository{})
		_, err := svc.CreateCategory(ctx, orgID, &CategoryRequest{Name: "Alquiler", Type: "transfer"})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("delete missing", func(t *testing.T) {
		categories := &MockCategoryRepository{}
		id := uuid.New()
		categories.On("Delete", ctx, orgID, id).Return(repositories.ErrNotFound)
		svc := NewCatalogService(categories, &MockPayeeRepository{})

		assert.ErrorIs(t, svc.DeleteCategory(ctx, orgID, id), common.ErrNotFound)
	})
}

func TestCatalogService_Payees(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("update", func(t *testing.T) {
		payees := &MockPayeeRepository{}
		id := uuid.New()
		existing := &models.Payee{ID: id, OrganizationID: orgID, Name: "Old"}
		payees.On("GetByID", ctx, orgID, id).Return(existing, nil)
		payees.On("Update", ctx, existing).Return(nil)
		svc := NewCatalogService(&MockCategoryRepository{}, payees)

		payee, err := svc.UpdatePayee(ctx, orgID, id, &PayeeRequest{Name: "Proveedor SA", TaxID: " 30-12345678-9 "})
		require.NoError(t, err)
		assert.Equal(t, "Proveedor SA", payee.Name)
		assert.Equal(t, "30-12345678-9", payee.TaxID)
		payees.AssertExpectations(t)
	})

	t.Run("empty list", func(t *testing.T) {
		payees := &MockPayeeRepository{}
		payees.On("List", ctx, orgID).Return(nil, nil)
		svc := NewCatalogService(&MockCategoryRepository{}, payees)

		list, err := svc.ListPayees(ctx, orgID)
		require.NoError(t, err)
		assert.NotNil(t, list)
	})

	t.Run("name required", func(t *testing.T) {
		svc := NewCatalogService(&MockCategoryRepository{}, &MockPayeeRepository{})
		_, err := svc.CreatePayee(ctx, orgID, &PayeeRequest{Name: "  "})
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}
