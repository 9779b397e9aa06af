package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"gymhub/internal/apperror"
	"gymhub/internal/auth"
	"gymhub/internal/db"
	"gymhub/internal/logger"
	"gymhub/internal/telemetry"
)

const (
	msgUserNotFound       = "User not found"
	msgUsernameTaken      = "Username is already taken"
	msgEmailInUse         = "Email is already in use"
	msgInvalidCredentials = "Invalid username/email or password"
	msgAccountDisabled    = "Account is disabled"
)

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Signin(ctx context.Context, req SigninRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	GetByID(ctx context.Context, id int) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]User, error)
	Update(ctx context.Context, caller auth.Caller, id int, req UpdateRequest) (*User, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository
	keys auth.Keys
}

func NewService(repo Repository, keys auth.Keys) Service {
	return &service{
		repo: repo,
		keys: keys,
	}
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (_ *AuthResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "user.Signup")
	defer func() { telemetry.EndSpan(span, err) }()

	exists, err := s.repo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Conflict(msgUsernameTaken)
	}

	exists, err = s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Conflict(msgEmailInUse)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("hash password: %w", err))
	}

	role := auth.ResolveRole(req.Roles)
	span.SetAttributes(attribute.String("user.role", string(role)))

	created, err := s.repo.Create(ctx, &User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		Enabled:      true,
	})
	if err != nil {
		return nil, translateUniqueViolation(err)
	}

	logger.Info("user registered", "user_id", created.ID, "role", created.Role)
	return s.issueTokens(created)
}

func (s *service) Signin(ctx context.Context, req SigninRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByLogin(ctx, strings.TrimSpace(req.Login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperror.Internal(err)
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if !u.Enabled {
		return nil, apperror.Forbidden(msgAccountDisabled)
	}

	return s.issueTokens(u)
}

func (s *service) issueTokens(u *User) (*AuthResponse, error) {
	tokens, err := s.keys.Issue(u.Identity())
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &AuthResponse{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		TokenType:    "Bearer",
		User:         *u,
	}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := s.keys.Parse(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired refresh token")
	}

	u, err := s.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !u.Enabled {
		return nil, apperror.Forbidden(msgAccountDisabled)
	}

	// Re-issue with the stored role so role changes take effect on refresh.
	accessToken, err := s.keys.Sign(u.Identity(), auth.KindAccess)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &RefreshResponse{AccessToken: accessToken, User: *u}, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(msgUserNotFound)
		}
		return nil, apperror.Internal(err)
	}
	return u, nil
}

func (s *service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

func (s *service) ListByRole(ctx context.Context, role auth.Role) ([]User, error) {
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

func (s *service) Update(ctx context.Context, caller auth.Caller, id int, req UpdateRequest) (*User, error) {
	if !auth.Allow(caller, id, auth.RoleAdmin, auth.RoleStaff) {
		return nil, apperror.Forbidden("Access denied")
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil || req.Enabled != nil {
		if !caller.HasRole(auth.RoleAdmin) {
			return nil, apperror.Forbidden("Only administrators may change role or enabled status")
		}
	}

	if req.Email != nil && *req.Email != "" {
		email := strings.ToLower(*req.Email)
		if email != u.Email {
			exists, err := s.repo.EmailExists(ctx, email)
			if err != nil {
				return nil, apperror.Internal(err)
			}
			if exists {
				return nil, apperror.Conflict(msgEmailInUse)
			}
			u.Email = email
		}
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		u.PasswordHash = hash
	}
	if req.FirstName != nil && *req.FirstName != "" {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Role != nil {
		role, _ := auth.ParseRole(*req.Role)
		u.Role = role
	}
	if req.Enabled != nil {
		u.Enabled = *req.Enabled
	}

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, translateUniqueViolation(err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.NotFound(msgUserNotFound)
		}
		return apperror.Internal(err)
	}
	logger.Info("user deleted", "user_id", id)
	return nil
}

func translateUniqueViolation(err error) error {
	switch {
	case db.IsUniqueViolation(err, constraintUsername):
		return apperror.Conflict(msgUsernameTaken)
	case db.IsUniqueViolation(err, constraintEmail):
		return apperror.Conflict(msgEmailInUse)
	default:
		return apperror.Internal(err)
	}
}
