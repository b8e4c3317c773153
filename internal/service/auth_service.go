package service

import (
	"context"
	"errors"

	"github.com/alexedwards/argon2id"

	"github.com/casaguide/concierge/internal/repo/postgres"
	"github.com/casaguide/concierge/pkg/auth"
	"github.com/casaguide/concierge/pkg/config"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, int64, error)
}

type authService struct {
	admins postgres.AdminRepo
	cfg    *config.Config
}

func NewAuthService(admins postgres.AdminRepo, cfg *config.Config) AuthService {
	return &authService{admins: admins, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, int64, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return "", 0, err
	}
	if admin == nil {
		return "", 0, ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(password, admin.PasswordHash)
	if err != nil || !match {
		return "", 0, ErrInvalidCredentials
	}

	ttl := s.cfg.Auth.AccessTokenTTL
	token, err := auth.NewAccessToken([]byte(s.cfg.Auth.JWTSecret), admin.ID, admin.Email, "admin", ttl)
	if err != nil {
		return "", 0, err
	}

	return token, int64(ttl.Seconds()), nil
}
