package postgres

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
)

const forkliftColumns = `id, code, model, type, capacity_kg, hour_meter, status, last_maintenance, created_at, updated_at`

type forkliftRepository struct {
	db *sql.DB
}

func NewForkliftRepository(db *sql.DB) repository.ForkliftRepository {
	return &forkliftRepository{db: db}
}

func scanForklift(row rowScanner) (*domain.Forklift, error) {
	f := &domain.Forklift{}
	var lastMaintenance sql.NullTime
	err := row.Scan(&f.ID, &f.Code, &f.Model, &f.Type, &f.CapacityKg, &f.HourMeter, &f.Status, &lastMaintenance, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.LastMaintenance = nullTime(lastMaintenance)
	return f, nil
}

func (r *forkliftRepository) Create(ctx context.Context, f *domain.Forklift) error {
	query := `INSERT INTO forklifts (id, code, model, type, capacity_kg, hour_meter, status, last_maintenance, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("INSERT", "forklifts", "forkliftID", f.ID, "code", f.Code)
	_, err := r.db.ExecContext(ctx, query, f.ID, f.Code, f.Model, f.Type, f.CapacityKg, f.HourMeter, f.Status, f.LastMaintenance, f.CreatedAt, f.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "forkliftID", f.ID)
	return classify(err, "forklift", f.ID, "failed to create forklift")
}

func (r *forkliftRepository) GetByID(ctx context.Context, id string) (*domain.Forklift, error) {
	f, err := scanForklift(r.db.QueryRowContext(ctx, `SELECT `+forkliftColumns+` FROM forklifts WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "forklift", id, "failed to get forklift")
	}
	return f, nil
}

func (r *forkliftRepository) Update(ctx context.Context, f *domain.Forklift) error {
	query := `UPDATE forklifts SET code=$1, model=$2, type=$3, capacity_kg=$4, hour_meter=$5, status=$6, last_maintenance=$7, updated_at=$8 WHERE id=$9`
	logger.DatabaseCall("UPDATE", "forklifts", "forkliftID", f.ID, "status", f.Status)
	res, err := r.db.ExecContext(ctx, query, f.Code, f.Model, f.Type, f.CapacityKg, f.HourMeter, f.Status, f.LastMaintenance, f.UpdatedAt, f.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "forkliftID", f.ID)
		return classify(err, "forklift", f.ID, "failed to update forklift")
	}
	return requireAffected(res, "forklift", f.ID, "failed to update forklift")
}

func (r *forkliftRepository) Delete(ctx context.Context, id string) error {
	logger.DatabaseCall("DELETE", "forklifts", "forkliftID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM forklifts WHERE id = $1`, id)
	if err != nil {
		return classifyDelete(err, "forklift", id, "failed to delete forklift")
	}
	return requireAffected(res, "forklift", id, "failed to delete forklift")
}

func (r *forkliftRepository) List(ctx context.Context, f repository.ForkliftFilter) ([]domain.Forklift, error) {
	ds := dialect.From("forklifts").Prepared(true).Select(goqu.L(forkliftColumns))
	if len(f.Statuses) > 0 {
		ds = ds.Where(goqu.C("status").In(stringsOf(f.Statuses)))
	}
	query, args, err := ds.Order(order(f.Order)...).ToSQL()
	if err != nil {
		return nil, domain.NewStorageError("failed to build forklift query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "forklift", "", "failed to list forklifts")
	}
	defer rows.Close()

	forklifts := []domain.Forklift{}
	for rows.Next() {
		fk, err := scanForklift(rows)
		if err != nil {
			return nil, classify(err, "forklift", "", "failed to scan forklift")
		}
		forklifts = append(forklifts, *fk)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "forklift", "", "failed to list forklifts")
	}
	return forklifts, nil
}
