package repositories

import (
	"context"

	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	UpdateLogo(ctx context.Context, id uuid.UUID, logoKey string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Organization, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type organizationRepo struct {
	db DB
}

func NewOrganizationRepo(db DB) OrganizationRepository {
	return &organizationRepo{db: db}
}

const organizationColumns = `id, name, slug, primary_color, secondary_color, logo_key, monthly_fee, status, created_at, updated_at`

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.Slug, &org.PrimaryColor, &org.SecondaryColor, &org.LogoKey,
		&org.MonthlyFee, &org.Status, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return org, nil
}

func (r *organizationRepo) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, primary_color, secondary_color, monthly_fee, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, org.ID, org.Name, org.Slug, org.PrimaryColor, org.SecondaryColor, org.MonthlyFee, org.Status)
	return translateError(err)
}

func (r *organizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	return scanOrganization(r.db.QueryRow(ctx, query, id))
}

func (r *organizationRepo) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`
	return scanOrganization(r.db.QueryRow(ctx, query, slug))
}

func (r *organizationRepo) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $1, slug = $2, primary_color = $3, secondary_color = $4, monthly_fee = $5, status = $6, updated_at = NOW()
		WHERE id = $7
	`
	return execAffecting(ctx, r.db, query, org.Name, org.Slug, org.PrimaryColor, org.SecondaryColor, org.MonthlyFee, org.Status, org.ID)
}

func (r *organizationRepo) UpdateLogo(ctx context.Context, id uuid.UUID, logoKey string) error {
	query := `UPDATE organizations SET logo_key = $1, updated_at = NOW() WHERE id = $2`
	return execAffecting(ctx, r.db, query, logoKey, id)
}

func (r *organizationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM organizations WHERE id = $1`
	return execAffecting(ctx, r.db, query, id)
}

func (r *organizationRepo) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (r *organizationRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM organizations WHERE status = $1`, models.OrganizationActive)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}
