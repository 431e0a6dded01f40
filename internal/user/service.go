package user

import (
	"context"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines authentication and account management.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyPermission(ctx context.Context, token string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	UpdateByEmail(ctx context.Context, email string, params UpdateUserParams) (*User, error)
	Delete(ctx context.Context, id string) error

	// ProvisionUser creates a staff account with a generated temporary
	// password and returns that password exactly once.
	ProvisionUser(ctx context.Context, email string) (*User, string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "email and password are required")
	}

	u, hash, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			// Same answer as a wrong password; do not leak which.
			return nil, apperr.New(apperr.Auth, "invalid email or password")
		}
		return nil, err
	}

	if !CheckPasswordHash(password, hash) {
		log.Warn("Login failed: bad credentials", zap.String("email", email))
		return nil, apperr.New(apperr.Auth, "invalid email or password")
	}

	if !u.OrdersPermission {
		log.Warn("Login refused: no orders permission", zap.String("email", email))
		return nil, apperr.New(apperr.Permission, "no permission")
	}

	token, err := GenerateJWT(u.Email, u.Role)
	if err != nil {
		log.Error("failed to sign token", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "failed to sign token", err)
	}

	log.Info("Login success", zap.String("email", email))
	return &LoginResult{Token: token, User: u}, nil
}

// VerifyPermission checks the token signature and then re-reads the account:
// the permission flag is live, so revoking it locks out an otherwise valid
// token immediately.
func (s *service) VerifyPermission(ctx context.Context, token string) (*User, error) {
	claims, err := ParseJWT(token)
	if err != nil {
		return nil, err
	}

	u, _, err := s.repo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.Permission, "no permission")
		}
		return nil, err
	}
	if !u.OrdersPermission {
		return nil, apperr.New(apperr.Permission, "no permission")
	}

	return u, nil
}

func (s *service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if params.Email == "" {
		return nil, apperr.New(apperr.Validation, "email is required")
	}
	if len(params.Password) < 8 {
		return nil, apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	if params.Role == "" {
		params.Role = RoleMember
	}
	return s.repo.Create(ctx, params)
}

func (s *service) UpdateByEmail(ctx context.Context, email string, params UpdateUserParams) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.New(apperr.Validation, "email is required")
	}
	if params.Role == nil && params.OrdersPermission == nil && params.Password == nil {
		return nil, apperr.New(apperr.Validation, "no fields to update")
	}
	if params.Password != nil && len(*params.Password) < 8 {
		return nil, apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	return s.repo.UpdateByEmail(ctx, email, params)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.New(apperr.Validation, "user ID is required")
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) ProvisionUser(ctx context.Context, email string) (*User, string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProvisionUser"),
	)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", apperr.New(apperr.Validation, "email is required")
	}

	password, err := GenerateTemporaryPassword()
	if err != nil {
		return nil, "", err
	}

	u, err := s.repo.Create(ctx, CreateUserParams{
		Email:            email,
		Password:         password,
		Role:             RoleMember,
		OrdersPermission: true,
	})
	if err != nil {
		log.Error("failed to provision user", zap.Error(err))
		return nil, "", err
	}

	log.Info("ProvisionUser success", zap.String("email", email))
	return u, password, nil
}
