package identity

import (
	"errors"
	"fmt"
	"time"

	"backoffice/internal/config"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the session claims. Subject carries the account ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type Verifier interface {
	Verify(token string) (*Claims, error)
}

// NewVerifier picks the JWKS verifier when a key set URL is configured and the
// shared-secret verifier otherwise.
func NewVerifier(cfg config.IdentityConfig) (Verifier, error) {
	if cfg.JWKSURL != "" {
		v, err := NewJWKSVerifier(cfg.JWKSURL, cfg.Issuer)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return NewHMACVerifier(cfg.JWTSecret, cfg.Issuer), nil
}

type hmacVerifier struct {
	secret []byte
	issuer string
}

func NewHMACVerifier(secret, issuer string) Verifier {
	return &hmacVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *hmacVerifier) Verify(token string) (*Claims, error) {
	return parseClaims(token, v.issuer, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.SigningMethodHS256.Alg())
}

type JWKSVerifier struct {
	jwks   *keyfunc.JWKS
	issuer string
}

// NewJWKSVerifier verifies tokens issued by an external identity provider against its
// published key set, refreshed in the background.
func NewJWKSVerifier(url, issuer string) (*JWKSVerifier, error) {
	logger := config.GetLogger()
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.WithError(err).WithField("url", url).Warn("refresh JWKS")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	return &JWKSVerifier{jwks: jwks, issuer: issuer}, nil
}

func (v *JWKSVerifier) Verify(token string) (*Claims, error) {
	return parseClaims(token, v.issuer, v.jwks.Keyfunc, "RS256", "ES256", "EdDSA")
}

func (v *JWKSVerifier) Close() {
	v.jwks.EndBackground()
}

func parseClaims(token, issuer string, keyFunc jwt.Keyfunc, methods ...string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(methods), jwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, errors.New("token subject is not an account id")
	}
	return claims, nil
}
