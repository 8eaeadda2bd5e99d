package jwttoken

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/requestcontext"
)

const revokedKeyPrefix = "idcard:revoked:"

// RedisRevocationList stores revoked jtis as keys that expire with the token.
type RedisRevocationList struct {
	client redis.UniversalClient
}

func NewRedisRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (l *RedisRevocationList) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InMemoryRevocationList is the single-process fallback used without Redis.
type InMemoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{revoked: make(map[string]time.Time), now: time.Now}
}

func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.now().Add(ttl)
	return nil
}

func (l *InMemoryRevocationList) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if !l.now().Before(exp) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}

// RevocationList is implemented by both revocation backends.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Revoker denies a signed token for the rest of its lifetime.
type Revoker struct {
	tokens *JWTService
	list   RevocationList
}

func NewRevoker(tokens *JWTService, list RevocationList) *Revoker {
	return &Revoker{tokens: tokens, list: list}
}

// RevokeToken records the token's jti until its expiry. Tokens that have
// already expired are accepted and ignored.
func (r *Revoker) RevokeToken(ctx context.Context, tokenString string) error {
	claims, err := r.tokens.ParseTokenSkipClaimsValidation(tokenString)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "token has no jti")
	}
	if claims.ExpiresAt == nil {
		return errors.New("token has no expiry")
	}
	ttl := claims.ExpiresAt.Sub(requestcontext.Now(ctx))
	return r.list.Revoke(ctx, claims.ID, ttl)
}
