package auth

import (
	"context"
	"time"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
	"github.com/jefersonOS/barber-pro/pkg/auth"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
	"github.com/jefersonOS/barber-pro/pkg/security"
)

type Service struct {
	users  repository.UserRepository
	jwtSvc auth.JWTService
	hasher security.PasswordHasher
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		users:  users,
		jwtSvc: jwtSvc,
		hasher: hasher,
	}
}

// Login verifies staff credentials and issues a tenant-scoped token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(nil)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(nil)
	}

	token, expiresAt, err := s.jwtSvc.GenerateToken(user.ID, user.OrgID, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.LoginResponse{
		Token:     token,
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
		User:      user,
	}, nil
}
