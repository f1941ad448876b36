package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"greenshift/backend/services/auth-service/internal/models"
	"greenshift/backend/services/auth-service/internal/password"
	"greenshift/backend/services/auth-service/internal/repository"
)

var (
	// ErrEmailInUse is returned when attempting to register duplicate email.
	ErrEmailInUse = errors.New("auth: email already registered")
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrMissingAssignment is returned when a role is declared without the
	// id that backs it.
	ErrMissingAssignment = errors.New("auth: role requires a property or portfolio assignment")
)

// UserRepository defines storage contract used by the service.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// SignupParams carries registration input.
type SignupParams struct {
	Email       string
	Password    string
	Role        string
	PropertyID  *int64
	PortfolioID *int64
}

// AuthService contains registration/login logic.
type AuthService struct {
	repo      UserRepository
	hasher    password.Hasher
	tokenizer *TokenService
	logger    *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(repo UserRepository, hasher password.Hasher, tokenizer *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Signup registers a new user. Homeowners must name their property and
// property managers their portfolio; any other role is stored as pending
// with no assignment.
func (s *AuthService) Signup(ctx context.Context, params SignupParams) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, errors.New("auth: email required")
	}
	if params.Password == "" {
		return nil, errors.New("auth: password required")
	}

	user := &models.User{Email: email}
	switch params.Role {
	case models.RoleHomeowner:
		if params.PropertyID == nil {
			return nil, ErrMissingAssignment
		}
		user.Role = models.RoleHomeowner
		user.PropertyID = params.PropertyID
	case models.RolePropertyManager:
		if params.PortfolioID == nil {
			return nil, ErrMissingAssignment
		}
		user.Role = models.RolePropertyManager
		user.PortfolioID = params.PortfolioID
	default:
		user.Role = models.RolePending
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", user.Role),
	)
	return user, nil
}

// Login authenticates a user and produces a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
