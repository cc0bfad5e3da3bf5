package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yoockh/mockmate/internal/models"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/utils"
)

const tokenTTL = 24 * time.Hour

type UserService interface {
	Signup(ctx context.Context, email, password, name string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	// OAuthLogin upserts the user on first login via an external provider.
	// OAuth accounts have no password hash.
	OAuthLogin(ctx context.Context, provider, providerID, email, name string) (*models.User, string, error)
	List(ctx context.Context, limit int) ([]models.User, error)
	SetBanned(ctx context.Context, userID string, banned bool) error
}

type userService struct {
	users     pgrepo.UserRepository
	jwtSecret string
}

func NewUserService(users pgrepo.UserRepository, jwtSecret string) UserService {
	return &userService{users: users, jwtSecret: jwtSecret}
}

func (s *userService) Signup(ctx context.Context, email, password, name string) (*models.User, string, error) {
	const op = "UserService.Signup"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", utils.E(utils.CodeConflict, op, "email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: &hash,
		Name:         name,
		Role:         models.RoleStudent,
		Status:       models.UserActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	return s.withToken(op, u)
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "UserService.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return nil, "", utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if u.PasswordHash == nil || utils.CheckPassword(*u.PasswordHash, password) != nil {
		return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}
	if u.Status == models.UserBanned {
		return nil, "", utils.E(utils.CodeForbidden, op, "account is banned", nil)
	}

	return s.withToken(op, u)
}

func (s *userService) OAuthLogin(ctx context.Context, provider, providerID, email, name string) (*models.User, string, error) {
	const op = "UserService.OAuthLogin"

	if provider == "" || providerID == "" || email == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "provider, provider_id, and email are required", nil)
	}
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByProvider(ctx, provider, providerID)
	if errors.Is(err, utils.ErrNotFound) {
		u = &models.User{
			ID:         uuid.NewString(),
			Email:      email,
			Name:       name,
			Role:       models.RoleStudent,
			Status:     models.UserActive,
			Provider:   &provider,
			ProviderID: &providerID,
		}
		if cerr := s.users.Create(ctx, u); cerr != nil {
			return nil, "", utils.E(utils.CodeInternal, op, "failed to create user", cerr)
		}
	} else if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	if u.Status == models.UserBanned {
		return nil, "", utils.E(utils.CodeForbidden, op, "account is banned", nil)
	}

	return s.withToken(op, u)
}

func (s *userService) List(ctx context.Context, limit int) ([]models.User, error) {
	const op = "UserService.List"

	rows, err := s.users.List(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list users", err)
	}
	return rows, nil
}

func (s *userService) SetBanned(ctx context.Context, userID string, banned bool) error {
	const op = "UserService.SetBanned"

	if userID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	status := models.UserActive
	if banned {
		status = models.UserBanned
	}
	err := s.users.SetStatus(ctx, userID, status)
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update user status", err)
	}
	return nil
}

func (s *userService) withToken(op string, u *models.User) (*models.User, string, error) {
	token, err := utils.SignToken(s.jwtSecret, u.ID, string(u.Role), tokenTTL)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return u, token, nil
}
