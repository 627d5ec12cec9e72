package postgres

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
)

const operatorColumns = `id, name, registration, email, phone, role, status, aso_expiration_date, nr_expiration_date, aso_status, nr_status, created_at, updated_at`

type operatorRepository struct {
	db *sql.DB
}

func NewOperatorRepository(db *sql.DB) repository.OperatorRepository {
	return &operatorRepository{db: db}
}

func scanOperator(row rowScanner) (*domain.Operator, error) {
	o := &domain.Operator{}
	err := row.Scan(&o.ID, &o.Name, &o.Registration, &o.Email, &o.Phone, &o.Role, &o.Status,
		&o.ASOExpirationDate, &o.NRExpirationDate, &o.ASOStatus, &o.NRStatus, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create persists the expiration dates and their derived statuses in one statement.
func (r *operatorRepository) Create(ctx context.Context, o *domain.Operator) error {
	query := `INSERT INTO operators (id, name, registration, email, phone, role, status, aso_expiration_date, nr_expiration_date, aso_status, nr_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	logger.DatabaseCall("INSERT", "operators", "operatorID", o.ID)
	_, err := r.db.ExecContext(ctx, query, o.ID, o.Name, o.Registration, o.Email, o.Phone, o.Role, o.Status,
		o.ASOExpirationDate, o.NRExpirationDate, o.ASOStatus, o.NRStatus, o.CreatedAt, o.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "operatorID", o.ID)
	return classify(err, "operator", o.ID, "failed to create operator")
}

func (r *operatorRepository) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	o, err := scanOperator(r.db.QueryRowContext(ctx, `SELECT `+operatorColumns+` FROM operators WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "operator", id, "failed to get operator")
	}
	return o, nil
}

func (r *operatorRepository) Update(ctx context.Context, o *domain.Operator) error {
	query := `UPDATE operators SET name=$1, registration=$2, email=$3, phone=$4, role=$5, status=$6, aso_expiration_date=$7, nr_expiration_date=$8,
	          aso_status=$9, nr_status=$10, updated_at=$11 WHERE id=$12`
	logger.DatabaseCall("UPDATE", "operators", "operatorID", o.ID)
	res, err := r.db.ExecContext(ctx, query, o.Name, o.Registration, o.Email, o.Phone, o.Role, o.Status, o.ASOExpirationDate, o.NRExpirationDate,
		o.ASOStatus, o.NRStatus, o.UpdatedAt, o.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "operatorID", o.ID)
		return classify(err, "operator", o.ID, "failed to update operator")
	}
	return requireAffected(res, "operator", o.ID, "failed to update operator")
}

func (r *operatorRepository) Delete(ctx context.Context, id string) error {
	logger.DatabaseCall("DELETE", "operators", "operatorID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM operators WHERE id = $1`, id)
	if err != nil {
		return classifyDelete(err, "operator", id, "failed to delete operator")
	}
	return requireAffected(res, "operator", id, "failed to delete operator")
}

func (r *operatorRepository) List(ctx context.Context, f repository.OperatorFilter) ([]domain.Operator, error) {
	ds := dialect.From("operators").Prepared(true).Select(goqu.L(operatorColumns))
	if f.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(f.Status)))
	}
	query, args, err := ds.Order(order(f.Order)...).ToSQL()
	if err != nil {
		return nil, domain.NewStorageError("failed to build operator query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "operator", "", "failed to list operators")
	}
	defer rows.Close()

	operators := []domain.Operator{}
	for rows.Next() {
		o, err := scanOperator(rows)
		if err != nil {
			return nil, classify(err, "operator", "", "failed to scan operator")
		}
		operators = append(operators, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "operator", "", "failed to list operators")
	}
	return operators, nil
}
