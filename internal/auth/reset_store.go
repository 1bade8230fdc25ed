package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-tradein/internal/counteroffer/token"
	"ms-tradein/internal/models"
)

const resetTokenPrefix = "reset_token:"

// ResetTokenStore keeps single-use password reset tokens in Redis, keyed by
// the SHA-256 of the token. Entries expire after TTL.
type ResetTokenStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewResetTokenStore(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResetTokenStore{Client: client, TTL: ttl}
}

// Issue creates a token bound to subject (a user id or email).
func (s *ResetTokenStore) Issue(ctx context.Context, subject string) (string, error) {
	if subject == "" {
		return "", models.NewValidationError("subject", "subject is required")
	}
	tok, err := token.Generate()
	if err != nil {
		return "", err
	}
	if err := s.Client.Set(ctx, resetTokenPrefix+token.Hash(tok), subject, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return tok, nil
}

// Consume returns the subject of tok and deletes it in the same step, so a
// token can be redeemed once. Unknown or expired tokens are ErrNotFound.
func (s *ResetTokenStore) Consume(ctx context.Context, tok string) (string, error) {
	if !token.Valid(tok) {
		return "", fmt.Errorf("reset token: %w", models.ErrNotFound)
	}
	subject, err := s.Client.GetDel(ctx, resetTokenPrefix+token.Hash(tok)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("reset token: %w", models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read reset token: %w", err)
	}
	return subject, nil
}
