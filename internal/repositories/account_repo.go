package repositories

import (
	"context"
	"strings"

	"backoffice/internal/models"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountRepo struct {
	db DB
}

func NewAccountRepo(db DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO auth_accounts (id, email, password_hash, full_name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, account.ID, strings.ToLower(account.Email), account.PasswordHash, account.FullName)
	return translateError(err)
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT id, email, password_hash, full_name, created_at FROM auth_accounts WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.FullName, &account.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return account, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT id, email, password_hash, full_name, created_at FROM auth_accounts WHERE email = $1`
	err := r.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.FullName, &account.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return account, nil
}

func (r *accountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execAffecting(ctx, r.db, `DELETE FROM auth_accounts WHERE id = $1`, id)
}
