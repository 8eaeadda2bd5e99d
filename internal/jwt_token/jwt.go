package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/requestcontext"
)

// AccessTokenClaims are the claims carried by an access token.
type AccessTokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 access tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey, issuer, audience string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// TTL is the lifetime given to newly issued tokens.
func (s *JWTService) TTL() time.Duration {
	return s.tokenTTL
}

// GenerateAccessToken signs a token for actor and returns it with its jti.
func (s *JWTService) GenerateAccessToken(ctx context.Context, actor id.Actor) (string, string, error) {
	if actor.ID.IsNil() {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	if !actor.Role.IsValid() {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "actor role is invalid")
	}

	jti, err := newJTI()
	if err != nil {
		return "", "", err
	}
	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID:   actor.ID.String(),
		Username: actor.Username,
		Role:     string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func newJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidateToken checks signature, algorithm, expiry, issuer and audience.
func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	return s.parse(tokenString,
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
}

// ParseTokenSkipClaimsValidation verifies only the signature and algorithm.
// Revocation uses it so an expired token can still be denied by jti.
func (s *JWTService) ParseTokenSkipClaimsValidation(tokenString string) (*AccessTokenClaims, error) {
	return s.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (s *JWTService) parse(tokenString string, opts ...jwt.ParserOption) (*AccessTokenClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := new(AccessTokenClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token signature")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
		}
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}
