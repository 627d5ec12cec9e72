package service

import (
	"context"
	"strings"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
	now      Clock
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, now: utcNow}
}

func (s *userService) GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, actor.ID)
}

func (s *userService) UpdateProfile(ctx context.Context, actor domain.Actor, in ProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" {
		user.Email = email
	}
	user.Phone = strings.TrimSpace(in.Phone)
	if err := validateUser(user); err != nil {
		return nil, err
	}

	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return s.userRepo.List(ctx, filter)
}

func (s *userService) CreateUser(ctx context.Context, in UserInput) (*domain.User, error) {
	user, err := newUser(ctx, s.userRepo, in, s.now())
	if err != nil {
		return nil, err
	}
	logger.Info("User created", "userID", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor domain.Actor, id string, in UserUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if id == actor.ID && ((in.Role != nil && *in.Role != user.Role) || (in.Status != nil && *in.Status != user.Status)) {
		return nil, domain.NewValidationError("you cannot change your own role or status")
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor domain.Actor, id string) error {
	if id == actor.ID {
		return domain.NewValidationError("you cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("User deleted", "userID", id, "by", actor.ID)
	return nil
}
