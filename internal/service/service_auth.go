package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-pseudo-ledger/internal/config"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/utils"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// DefaultTokenDuration is the lifetime of tokens issued by CreateToken.
const DefaultTokenDuration = 12 * time.Hour

// authService issues and checks the bearer tokens that carry the requester
// identifier of the HTTP adapter. Accounts live outside this service: the
// requester id is whatever the front end (chat bot, web app) vouches for.
type authService struct {
	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	tokenDuration time.Duration

	logger *logger.Logger
}

func NewAuthService(cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: DefaultTokenDuration,
		logger:        logger,
	}
}

// CreateToken issues a signed JWT whose subject is requesterID.
func (a *authService) CreateToken(ctx context.Context, requesterID string) (models.Token, error) {
	if requesterID == "" {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, models.ErrInvalidOwnerID)
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, requesterID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "authService.CreateToken").Msg("token generation failed")
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// Any validation failure (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid so that callers do not need to inspect
// low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
