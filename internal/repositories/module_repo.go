package repositories

import (
	"context"
	"fmt"

	"backoffice/internal/models"

	"github.com/google/uuid"
)

type ModuleRepository interface {
	ListCatalog(ctx context.Context) ([]*models.Module, error)
	ListEnabled(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationModule, error)
	IsEnabled(ctx context.Context, organizationID uuid.UUID, key string) (bool, error)
	SetEnabled(ctx context.Context, organizationID uuid.UUID, keys []string) error
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type moduleRepo struct {
	db DB
}

func NewModuleRepo(db DB) ModuleRepository {
	return &moduleRepo{db: db}
}

func (r *moduleRepo) ListCatalog(ctx context.Context) ([]*models.Module, error) {
	rows, err := r.db.Query(ctx, `SELECT id, key, name, description FROM modules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []*models.Module
	for rows.Next() {
		m := &models.Module{}
		if err := rows.Scan(&m.ID, &m.Key, &m.Name, &m.Description); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (r *moduleRepo) ListEnabled(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationModule, error) {
	query := `
		SELECT om.organization_id, om.module_id, m.key, om.enabled_at
		FROM organization_modules om
		JOIN modules m ON m.id = om.module_id
		WHERE om.organization_id = $1
		ORDER BY m.key
	`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enabled []*models.OrganizationModule
	for rows.Next() {
		om := &models.OrganizationModule{}
		if err := rows.Scan(&om.OrganizationID, &om.ModuleID, &om.Key, &om.EnabledAt); err != nil {
			return nil, err
		}
		enabled = append(enabled, om)
	}
	return enabled, rows.Err()
}

func (r *moduleRepo) IsEnabled(ctx context.Context, organizationID uuid.UUID, key string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM organization_modules om
			JOIN modules m ON m.id = om.module_id
			WHERE om.organization_id = $1 AND m.key = $2
		)
	`
	var enabled bool
	if err := r.db.QueryRow(ctx, query, organizationID, key).Scan(&enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// SetEnabled replaces the organization's module set inside one database transaction.
// Repeated keys count once.
func (r *moduleRepo) SetEnabled(ctx context.Context, organizationID uuid.UUID, keys []string) error {
	keys = uniqueKeys(keys)
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM organization_modules WHERE organization_id = $1`, organizationID); err != nil {
		return err
	}
	if len(keys) > 0 {
		query := `
			INSERT INTO organization_modules (organization_id, module_id, enabled_at)
			SELECT $1, id, NOW() FROM modules WHERE key = ANY($2)
		`
		tag, err := tx.Exec(ctx, query, organizationID, keys)
		if err != nil {
			return err
		}
		if int(tag.RowsAffected()) != len(keys) {
			return fmt.Errorf("unknown module in %v: %w", keys, ErrUnknownReference)
		}
	}
	return tx.Commit(ctx)
}

func (r *moduleRepo) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return execDeleteAll(ctx, r.db, `DELETE FROM organization_modules WHERE organization_id = $1`, organizationID)
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
