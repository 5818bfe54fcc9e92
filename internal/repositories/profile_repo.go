package repositories

import (
	"context"

	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*models.Profile, error)
	ListIDsByOrganization(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error)
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type profileRepo struct {
	db DB
}

func NewProfileRepo(db DB) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, organization_id, full_name, email, role, can_view_real, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.ID, &p.OrganizationID, &p.FullName, &p.Email, &p.Role, &p.CanViewReal, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, organization_id, full_name, email, role, can_view_real, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.OrganizationID, profile.FullName, profile.Email, profile.Role, profile.CanViewReal)
	return translateError(err)
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *profileRepo) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $1, role = $2, can_view_real = $3, updated_at = NOW()
		WHERE organization_id = $4 AND id = $5
	`
	return execAffecting(ctx, r.db, query, profile.FullName, profile.Role, profile.CanViewReal, profile.OrganizationID, profile.ID)
}

func (r *profileRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	query := `DELETE FROM profiles WHERE organization_id = $1 AND id = $2`
	return execAffecting(ctx, r.db, query, organizationID, id)
}

func (r *profileRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE organization_id = $1
		ORDER BY full_name ASC
	`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) ListIDsByOrganization(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM profiles WHERE organization_id = $1`, organizationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func (r *profileRepo) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return execDeleteAll(ctx, r.db, `DELETE FROM profiles WHERE organization_id = $1`, organizationID)
}
