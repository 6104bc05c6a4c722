package servicetest

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/auth"
)

type refreshToken struct {
	userID    string
	expiresAt int64
	revoked   bool
}

type tokenRepo struct{ s *Store }

func (r tokenRepo) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error {
	defer r.s.lock()()
	r.s.d.tokens[token] = refreshToken{userID: userID, expiresAt: expiresAt}
	return nil
}

// IsRefreshTokenRevoked counts expired tokens as revoked.
func (r tokenRepo) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	defer r.s.lock()()
	t, ok := r.s.d.tokens[token]
	if !ok {
		return false, pgx.ErrNoRows
	}
	return t.revoked || t.expiresAt <= r.s.Now().Unix(), nil
}

func (r tokenRepo) RevokeRefreshToken(ctx context.Context, token string) error {
	defer r.s.lock()()
	if t, ok := r.s.d.tokens[token]; ok {
		t.revoked = true
		r.s.d.tokens[token] = t
	}
	return nil
}

func (r tokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	defer r.s.lock()()
	for key, t := range r.s.d.tokens {
		if t.userID == userID {
			t.revoked = true
			r.s.d.tokens[key] = t
		}
	}
	return nil
}

// LiveTokens counts the unrevoked refresh tokens of userID.
func (s *Store) LiveTokens(userID string) int {
	defer s.lock()()
	n := 0
	for _, t := range s.d.tokens {
		if t.userID == userID && !t.revoked {
			n++
		}
	}
	return n
}
