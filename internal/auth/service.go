package auth

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/PabloPavan/sniply_inject/internal/apperrors"
)

// Principal is the authenticated operator behind an admin token.
type Principal struct {
	ID   string
	Role string
}

// Service checks admin tokens against a fixed set of bcrypt hashes.
type Service struct {
	TokenHashes   []string
	TokenVerifier func(hashed, plain string) error
}

func (s *Service) AuthenticateToken(ctx context.Context, token string) (Principal, error) {
	_ = ctx
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	// bcrypt ignores input past 72 bytes
	if len(token) > 72 {
		return Principal{}, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	verify := s.TokenVerifier
	if verify == nil {
		verify = func(hashed, plain string) error {
			return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
		}
	}

	for i, hash := range s.TokenHashes {
		if verify(hash, token) == nil {
			return Principal{ID: "admin_" + strconv.Itoa(i), Role: RoleAdmin}, nil
		}
	}
	return Principal{}, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
}
