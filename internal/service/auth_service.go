package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// RegisterInput carries the identity details of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService interface {
	// Register creates a user with the default role and issues a token.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)

	// Login checks a username and password and issues a token.
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}

type authService struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	tokens   auth.JWTService
	logger   *slog.Logger
	now      func() time.Time

	bootstrapAdmin string
}

// AuthOption configures an AuthService.
type AuthOption func(*authService)

// WithBootstrapAdmin grants the admin role to the account registered under
// username. An empty username disables the bootstrap.
func WithBootstrapAdmin(username string) AuthOption {
	return func(s *authService) {
		s.bootstrapAdmin = username
	}
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	tokens auth.JWTService,
	logger *slog.Logger,
	opts ...AuthOption,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &authService{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		tokens:   tokens,
		logger:   logger.With("component", "auth_service"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	verr := domain.NewValidationError()
	domain.ValidateUsername(verr, in.Username)
	domain.ValidateEmail(verr, in.Email)
	domain.ValidatePassword(verr, in.Password)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	taken, err := s.identityTaken(ctx, in.Username, in.Email)
	if err != nil {
		log.Error("failed to check identity uniqueness", "error", err)
		return nil, err
	}
	if taken {
		log.Debug("registration rejected for existing identity", "username", in.Username)
		return nil, ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	roles := domain.Roles{domain.DefaultRole}
	if s.bootstrapAdmin != "" && in.Username == s.bootstrapAdmin {
		roles = domain.NewRoles(domain.RoleAdmin, domain.DefaultRole)
	}

	user, err := domain.NewUser(in.Username, in.Email, hash, roles, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can still win the unique constraint.
		if store.IsDuplicateError(err) {
			return nil, ErrDuplicateIdentity
		}
		log.Error("failed to save user", "error", err, "username", user.Username)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info("user registered", "user_id", user.ID, "username", user.Username, "roles", user.Roles.Strings())
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown username", "username", username)
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to load user for login", "error", err)
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	if err := s.verifier.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error("password comparison failed", "error", err, "user_id", user.ID)
		}
		return nil, auth.ErrInvalidCredentials
	}

	log.Info("user logged in", "user_id", user.ID)
	return s.issue(ctx, user)
}

func (s *authService) identityTaken(ctx context.Context, username, email string) (bool, error) {
	for _, lookup := range []func() error{
		func() error { _, err := s.users.GetByUsername(ctx, username); return err },
		func() error { _, err := s.users.GetByEmail(ctx, email); return err },
	} {
		err := lookup()
		switch {
		case err == nil:
			return true, nil
		case !errors.Is(err, store.ErrUserNotFound):
			return false, fmt.Errorf("failed to look up user: %w", err)
		}
	}
	return false, nil
}

func (s *authService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(ctx, user.Username, user.ID, user.Roles)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to issue token",
			"error", err,
			"user_id", user.ID)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
