// Package auth authenticates bearer tokens and places the Actor on the context.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/platform/httputil"
	"idcard/pkg/requestcontext"
)

// JWTValidator validates a raw bearer token.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker reports whether a token id has been revoked.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTClaims is the validator's view of an access token.
type JWTClaims struct {
	UserID   string
	Username string
	Role     string
	JTI      string
}

// Actor converts the raw claims into a domain Actor.
func (c *JWTClaims) Actor() (id.Actor, error) {
	userID, err := id.ParseUserID(c.UserID)
	if err != nil {
		return id.Actor{}, fmt.Errorf("invalid user_id: %w", err)
	}
	role, ok := id.ParseRole(c.Role)
	if !ok {
		return id.Actor{}, fmt.Errorf("unknown role %q", c.Role)
	}
	return id.Actor{ID: userID, Username: strings.TrimSpace(c.Username), Role: role}, nil
}

var (
	errMissingToken = dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header")
	errInvalidToken = dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	errRevokedToken = dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	errRevocation   = dErrors.New(dErrors.CodeInternal, "failed to validate token")
)

// RequireAuth rejects requests without a valid, unrevoked bearer token.
// A nil revocation checker skips the revocation lookup.
func RequireAuth(validator JWTValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
				httputil.WriteError(w, errMissingToken)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, errInvalidToken)
				return
			}

			if revocationChecker != nil {
				if claims.JTI == "" {
					logger.WarnContext(ctx, "unauthorized access - missing token jti", "request_id", requestID)
					httputil.WriteError(w, errRevokedToken)
					return
				}
				revoked, err := revocationChecker.IsTokenRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", requestID,
					)
					httputil.WriteError(w, errRevocation)
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.JTI,
						"request_id", requestID,
					)
					httputil.WriteError(w, errRevokedToken)
					return
				}
			}

			actor, err := claims.Actor()
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, errInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}
