package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
)

const userColumns = `id, username, email, password_hash, name, phone, role, status, created_at, updated_at, last_login`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	u.LastLogin = nullTime(lastLogin)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, name, phone, role, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("INSERT", "users", "userID", u.ID)
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.Status, u.CreatedAt, u.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	return classify(err, "user", u.ID, "failed to create user")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify(err, "user", id, "failed to get user")
	}
	return u, nil
}

func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1) ORDER BY created_at LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, identifier))
	if err != nil {
		return nil, classify(err, "user", identifier, "failed to get user")
	}
	return u, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2))`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, classify(err, "user", username, "failed to check user")
	}
	return exists, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET username=$1, email=$2, password_hash=$3, name=$4, phone=$5, role=$6, status=$7, updated_at=$8 WHERE id=$9`
	logger.DatabaseCall("UPDATE", "users", "userID", u.ID)
	res, err := r.db.ExecContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.Status, u.UpdatedAt, u.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "userID", u.ID)
		return classify(err, "user", u.ID, "failed to update user")
	}
	return requireAffected(res, "user", u.ID, "failed to update user")
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, at, id)
	if err != nil {
		return classify(err, "user", id, "failed to update last login")
	}
	return requireAffected(res, "user", id, "failed to update last login")
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	logger.DatabaseCall("DELETE", "users", "userID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "userID", id)
		return classify(err, "user", id, "failed to delete user")
	}
	return requireAffected(res, "user", id, "failed to delete user")
}

func (r *userRepository) List(ctx context.Context, f repository.UserFilter) ([]domain.User, error) {
	where := goqu.Ex{}
	if f.Role != "" {
		where["role"] = string(f.Role)
	}
	if f.Status != "" {
		where["status"] = string(f.Status)
	}
	query, args, err := dialect.From("users").Prepared(true).
		Select(goqu.L(userColumns)).
		Where(where).
		Order(order(f.Order)...).
		ToSQL()
	if err != nil {
		return nil, domain.NewStorageError("failed to build user query", err)
	}

	logger.DatabaseCall("SELECT", "users", "role", f.Role, "status", f.Status)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "user", "", "failed to list users")
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, classify(err, "user", "", "failed to scan user")
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "user", "", "failed to list users")
	}
	logger.DatabaseResult("SELECT", int64(len(users)), nil)
	return users, nil
}
