// Package identity owns accounts, password checks and session tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var ErrInvalidCredentials = errors.New("invalid email or password")

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Session is what a successful sign-in returns.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccountID   uuid.UUID `json:"account_id"`
}

type Service struct {
	accounts  AccountStore
	jwtSecret []byte
	tokenTTL  time.Duration
	issuer    string
	logger    *logrus.Logger
}

func NewService(accounts AccountStore, cfg config.IdentityConfig) *Service {
	return &Service{
		accounts:  accounts,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		issuer:    cfg.Issuer,
		logger:    config.GetLogger(),
	}
}

// CreateAccount registers a new identity with a bcrypt password hash.
func (s *Service) CreateAccount(ctx context.Context, email, password, fullName string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, common.Invalid("email %q is not valid", email)
	}
	if len(password) < minPasswordLength {
		return nil, common.Invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		CreatedAt:    time.Now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, common.Invalid("an account with email %s already exists", email)
		}
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes the identity. A missing account counts as deleted.
func (s *Service) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	err := s.accounts.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, common.ErrNotFound
	}
	return account, err
}

// SignIn checks the credentials and issues an HS256 access token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("account_id", account.ID).Info("sign-in rejected")
		return nil, ErrInvalidCredentials
	}
	return s.issue(account)
}

func (s *Service) issue(account *models.Account) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := Claims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   account.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}
	return &Session{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt, AccountID: account.ID}, nil
}
