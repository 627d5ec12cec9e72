package service

import (
	"context"
	"strings"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/security"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	ErrInvalidCredentials = domain.NewUnauthorizedError("invalid username or password")
	ErrInactiveAccount    = domain.NewForbiddenError("account is inactive")
	ErrInvalidToken       = domain.NewUnauthorizedError("invalid token")
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	now      Clock
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		now:      utcNow,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	logger.EnterMethod("authService.Register", "username", in.Username)

	user, err := newUser(ctx, s.userRepo, UserInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Phone:    in.Phone,
		Role:     domain.RoleCustomer,
		Status:   domain.UserStatusActive,
	}, s.now())
	if err != nil {
		logger.ExitMethodWithError("authService.Register", err)
		return nil, err
	}

	logger.ExitMethod("authService.Register", "userID", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*domain.User, *TokenPair, error) {
	logger.EnterMethod("authService.Login", "identifier", identifier)

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if domain.IsKind(err, domain.ErrorKindNotFound) {
			err = ErrInvalidCredentials
		}
		logger.ExitMethodWithError("authService.Login", err)
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials)
		return nil, nil, ErrInvalidCredentials
	}
	if user.Status != domain.UserStatusActive {
		logger.ExitMethodWithError("authService.Login", ErrInactiveAccount)
		return nil, nil, ErrInactiveAccount
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn("Failed to record last login", "userID", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	pair, err := s.issue(user)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err)
		return nil, nil, err
	}

	logger.ExitMethod("authService.Login", "userID", user.ID)
	return user, pair, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil || claims.Type != security.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	// Pick up role and status changes made since the token was issued.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsKind(err, domain.ErrorKindNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, ErrInactiveAccount
	}
	return s.issue(user)
}

func (s *authService) issue(user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.NewStorageError("failed to sign access token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.NewStorageError("failed to sign refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// newUser validates, hashes and stores a user account.
func newUser(ctx context.Context, repo repository.UserRepository, in UserInput, now time.Time) (*domain.User, error) {
	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      in.Role,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.NewValidationError("password must be at least %d characters", minPasswordLength)
	}

	exists, err := repo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflictError("username or email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewValidationError("password cannot be hashed: %v", err)
	}
	user.PasswordHash = string(hash)

	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validateUser(u *domain.User) error {
	if err := validate.Var(u.Username, "required,min=3,max=50"); err != nil {
		return domain.NewValidationError("username must be 3 to 50 characters")
	}
	if err := validate.Var(u.Email, "required,email"); err != nil {
		return domain.NewValidationError("email %q is invalid", u.Email)
	}
	if !u.Role.Valid() {
		return domain.NewValidationError("unknown role %q", u.Role)
	}
	if !u.Status.Valid() {
		return domain.NewValidationError("unknown user status %q", u.Status)
	}
	return nil
}
