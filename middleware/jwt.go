package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/eduengage-api/config"
	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/utils"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Nickname string `json:"nickname"`
	Scope    string `json:"scope"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken checks the bearer token on every request. With an Auth0
// domain configured it verifies RS256 signatures against the tenant JWKS;
// otherwise it verifies HS256 with the shared secret.
func EnsureValidToken(cfg config.AuthConfig, log *logger.Logger) (func(http.Handler) http.Handler, error) {
	var (
		keyFunc   func(context.Context) (interface{}, error)
		algorithm validator.SignatureAlgorithm
		issuer    string
	)
	if cfg.Domain != "" {
		issuerURL, err := url.Parse("https://" + cfg.Domain + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
		}
		provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
		keyFunc = provider.KeyFunc
		algorithm = validator.RS256
		issuer = issuerURL.String()
	} else {
		secret := []byte(cfg.Secret)
		keyFunc = func(context.Context) (interface{}, error) { return secret, nil }
		algorithm = validator.HS256
		issuer = cfg.Issuer
	}

	jwtValidator, err := validator.New(
		keyFunc,
		algorithm,
		issuer,
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Debug("encountered error while validating JWT", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", "failed to validate JWT")
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)
	return func(next http.Handler) http.Handler {
		return mw.CheckJWT(next)
	}, nil
}
