package memory

import (
	"context"
	"strings"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
)

type userRepository struct {
	st *state
}

func cloneUser(u domain.User) domain.User {
	u.LastLogin = cloneTime(u.LastLogin)
	return u
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	unlock, err := r.st.write(ctx, "failed to create user")
	if err != nil {
		return err
	}
	defer unlock()

	if r.st.users.some(func(x domain.User) bool { return sameIdentity(x, u.Username, u.Email) }) {
		return domain.NewConflictError("username or email already registered")
	}
	if !r.st.users.insert(u.ID, u.CreatedAt, cloneUser(*u)) {
		return domain.NewConflictError("user %s already exists", u.ID)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	unlock, err := r.st.read(ctx, "failed to get user")
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := r.st.users.get(id)
	if !ok {
		return nil, domain.NewNotFoundError("user", id)
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	unlock, err := r.st.read(ctx, "failed to get user")
	if err != nil {
		return nil, err
	}
	defer unlock()

	found := r.st.users.list(func(x domain.User) bool { return sameIdentity(x, identifier, identifier) }, repository.SortOldestFirst)
	if len(found) == 0 {
		return nil, domain.NewNotFoundError("user", identifier)
	}
	u := cloneUser(found[0])
	return &u, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	unlock, err := r.st.read(ctx, "failed to check user")
	if err != nil {
		return false, err
	}
	defer unlock()
	return r.st.users.some(func(x domain.User) bool { return sameIdentity(x, username, email) }), nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	unlock, err := r.st.write(ctx, "failed to update user")
	if err != nil {
		return err
	}
	defer unlock()

	if r.st.users.some(func(x domain.User) bool { return x.ID != u.ID && sameIdentity(x, u.Username, u.Email) }) {
		return domain.NewConflictError("username or email already registered")
	}
	if !r.st.users.replace(u.ID, cloneUser(*u)) {
		return domain.NewNotFoundError("user", u.ID)
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	unlock, err := r.st.write(ctx, "failed to update last login")
	if err != nil {
		return err
	}
	defer unlock()

	u, ok := r.st.users.get(id)
	if !ok {
		return domain.NewNotFoundError("user", id)
	}
	u.LastLogin = &at
	r.st.users.replace(id, u)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	unlock, err := r.st.write(ctx, "failed to delete user")
	if err != nil {
		return err
	}
	defer unlock()

	if !r.st.users.remove(id) {
		return domain.NewNotFoundError("user", id)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, f repository.UserFilter) ([]domain.User, error) {
	unlock, err := r.st.read(ctx, "failed to list users")
	if err != nil {
		return nil, err
	}
	defer unlock()

	users := r.st.users.list(func(u domain.User) bool {
		return (f.Role == "" || u.Role == f.Role) && (f.Status == "" || u.Status == f.Status)
	}, f.Order)
	for i := range users {
		users[i] = cloneUser(users[i])
	}
	return users, nil
}

func sameIdentity(u domain.User, username, email string) bool {
	return strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email)
}
