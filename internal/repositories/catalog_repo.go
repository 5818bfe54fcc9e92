package repositories

import (
	"context"

	"backoffice/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
	List(ctx context.Context, organizationID uuid.UUID) ([]*models.Category, error)
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type categoryRepo struct {
	db DB
}

func NewCategoryRepo(db DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, organization_id, name, type, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.OrganizationID, category.Name, category.Type)
	return translateError(err)
}

func (r *categoryRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Category, error) {
	c := &models.Category{}
	query := `
		SELECT id, organization_id, name, type, created_at
		FROM categories
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, organizationID, id).Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Type, &c.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `UPDATE categories SET name = $1, type = $2 WHERE organization_id = $3 AND id = $4`
	return execAffecting(ctx, r.db, query, category.Name, category.Type, category.OrganizationID, category.ID)
}

func (r *categoryRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return execAffecting(ctx, r.db, `DELETE FROM categories WHERE organization_id = $1 AND id = $2`, organizationID, id)
}

func (r *categoryRepo) List(ctx context.Context, organizationID uuid.UUID) ([]*models.Category, error) {
	query := `
		SELECT id, organization_id, name, type, created_at
		FROM categories
		WHERE organization_id = $1
		ORDER BY type, name
	`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return execDeleteAll(ctx, r.db, `DELETE FROM categories WHERE organization_id = $1`, organizationID)
}

type PayeeRepository interface {
	Create(ctx context.Context, payee *models.Payee) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Payee, error)
	Update(ctx context.Context, payee *models.Payee) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
	List(ctx context.Context, organizationID uuid.UUID) ([]*models.Payee, error)
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type payeeRepo struct {
	db DB
}

func NewPayeeRepo(db DB) PayeeRepository {
	return &payeeRepo{db: db}
}

func (r *payeeRepo) Create(ctx context.Context, payee *models.Payee) error {
	query := `
		INSERT INTO payees (id, organization_id, name, tax_id, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, payee.ID, payee.OrganizationID, payee.Name, payee.TaxID, payee.Email, payee.Phone)
	return translateError(err)
}

func (r *payeeRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Payee, error) {
	p := &models.Payee{}
	query := `
		SELECT id, organization_id, name, tax_id, email, phone, created_at
		FROM payees
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, organizationID, id).Scan(&p.ID, &p.OrganizationID, &p.Name, &p.TaxID, &p.Email, &p.Phone, &p.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

func (r *payeeRepo) Update(ctx context.Context, payee *models.Payee) error {
	query := `
		UPDATE payees
		SET name = $1, tax_id = $2, email = $3, phone = $4
		WHERE organization_id = $5 AND id = $6
	`
	return execAffecting(ctx, r.db, query, payee.Name, payee.TaxID, payee.Email, payee.Phone, payee.OrganizationID, payee.ID)
}

func (r *payeeRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return execAffecting(ctx, r.db, `DELETE FROM payees WHERE organization_id = $1 AND id = $2`, organizationID, id)
}

func (r *payeeRepo) List(ctx context.Context, organizationID uuid.UUID) ([]*models.Payee, error) {
	query := `
		SELECT id, organization_id, name, tax_id, email, phone, created_at
		FROM payees
		WHERE organization_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payees []*models.Payee
	for rows.Next() {
		p := &models.Payee{}
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.TaxID, &p.Email, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		payees = append(payees, p)
	}
	return payees, rows.Err()
}

func (r *payeeRepo) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return execDeleteAll(ctx, r.db, `DELETE FROM payees WHERE organization_id = $1`, organizationID)
}
