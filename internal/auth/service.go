package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"go.uber.org/zap"
)

const msgBadCredentials = "Invalid username or password"

type Registration struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Session is what a successful login hands back.
type Session struct {
	Token string
	User  *models.User
}

type Service struct {
	users  store.UserStore
	tokens *TokenManager
	logger *zap.Logger
}

func NewService(users store.UserStore, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Register creates a customer account. Staff accounts are provisioned, not registered.
func (s *Service) Register(ctx context.Context, in Registration) (*models.User, error) {
	return s.create(ctx, in, models.RoleCustomer)
}

// Provision creates an account with any role. Used for seeding.
func (s *Service) Provision(ctx context.Context, in Registration, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.Validationf("Unknown role %q", role)
	}
	return s.create(ctx, in, role)
}

func (s *Service) create(ctx context.Context, in Registration, role models.Role) (*models.User, error) {
	var password models.Password
	if err := password.Set(in.Password); err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: password.Hash,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Validation("Username or email already registered")
		}
		return nil, apperr.Internal(err)
	}
	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Login checks the password and issues a session token.
func (s *Service) Login(ctx context.Context, username, plaintext string) (*Session, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, apperr.Unauthorized(msgBadCredentials)
		}
		return nil, apperr.Internal(err)
	}

	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(plaintext)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{Token: token, User: user}, nil
}
