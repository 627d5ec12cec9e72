package postgres

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
)

const operationColumns = `id, forklift_id, operator_id, sector, initial_hour_meter, current_hour_meter, gas_consumption, start_time, end_time, status, notes, created_at, updated_at, updated_by`

type operationRepository struct {
	db *sql.DB
}

func NewOperationRepository(db *sql.DB) repository.OperationRepository {
	return &operationRepository{db: db}
}

func scanOperation(row rowScanner) (*domain.Operation, error) {
	o := &domain.Operation{}
	var gas sql.NullFloat64
	var endTime sql.NullTime
	var updatedBy sql.NullString
	err := row.Scan(&o.ID, &o.ForkliftID, &o.OperatorID, &o.Sector, &o.InitialHourMeter, &o.CurrentHourMeter, &gas,
		&o.StartTime, &endTime, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &updatedBy)
	if err != nil {
		return nil, err
	}
	o.GasConsumption = nullFloat(gas)
	o.EndTime = nullTime(endTime)
	o.UpdatedBy = updatedBy.String
	return o, nil
}

// Create relies on the operations_no_overlap exclusion constraint to reject a second
// active operation on the same forklift.
func (r *operationRepository) Create(ctx context.Context, o *domain.Operation) error {
	query := `INSERT INTO operations (id, forklift_id, operator_id, sector, initial_hour_meter, current_hour_meter, gas_consumption, start_time, end_time, status, notes, created_at, updated_at, updated_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	logger.DatabaseCall("INSERT", "operations", "operationID", o.ID, "forkliftID", o.ForkliftID)
	_, err := r.db.ExecContext(ctx, query, o.ID, o.ForkliftID, o.OperatorID, o.Sector, o.InitialHourMeter, o.CurrentHourMeter, o.GasConsumption,
		o.StartTime, o.EndTime, o.Status, o.Notes, o.CreatedAt, o.UpdatedAt, nullString(o.UpdatedBy))
	logger.DatabaseResult("INSERT", 1, err, "operationID", o.ID)
	return classify(err, "operation", o.ID, "failed to create operation")
}

func (r *operationRepository) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	o, err := scanOperation(r.db.QueryRowContext(ctx, `SELECT `+operationColumns+` FROM operations WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "operation", id, "failed to get operation")
	}
	return o, nil
}

func (r *operationRepository) Update(ctx context.Context, o *domain.Operation) error {
	query := `UPDATE operations SET sector=$1, current_hour_meter=$2, gas_consumption=$3, start_time=$4, end_time=$5, status=$6, notes=$7,
	          updated_at=$8, updated_by=$9 WHERE id=$10`
	logger.DatabaseCall("UPDATE", "operations", "operationID", o.ID, "status", o.Status)
	res, err := r.db.ExecContext(ctx, query, o.Sector, o.CurrentHourMeter, o.GasConsumption, o.StartTime, o.EndTime, o.Status, o.Notes,
		o.UpdatedAt, nullString(o.UpdatedBy), o.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "operationID", o.ID)
		return classify(err, "operation", o.ID, "failed to update operation")
	}
	return requireAffected(res, "operation", o.ID, "failed to update operation")
}

func (r *operationRepository) List(ctx context.Context, f repository.OperationFilter) ([]domain.Operation, error) {
	if malformedID(f.ForkliftID, f.OperatorID) {
		return []domain.Operation{}, nil
	}
	ds := dialect.From("operations").Prepared(true).Select(goqu.L(operationColumns))
	if f.ForkliftID != "" {
		ds = ds.Where(goqu.C("forklift_id").Eq(f.ForkliftID))
	}
	if f.OperatorID != "" {
		ds = ds.Where(goqu.C("operator_id").Eq(f.OperatorID))
	}
	if len(f.Statuses) > 0 {
		ds = ds.Where(goqu.C("status").In(stringsOf(f.Statuses)))
	}
	query, args, err := ds.Order(order(f.Order)...).ToSQL()
	if err != nil {
		return nil, domain.NewStorageError("failed to build operation query", err)
	}

	logger.DatabaseCall("SELECT", "operations", "forkliftID", f.ForkliftID, "operatorID", f.OperatorID)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "operation", "", "failed to list operations")
	}
	defer rows.Close()

	operations := []domain.Operation{}
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, classify(err, "operation", "", "failed to scan operation")
		}
		operations = append(operations, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "operation", "", "failed to list operations")
	}
	logger.DatabaseResult("SELECT", int64(len(operations)), nil)
	return operations, nil
}
