package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
)

// PostgreSQL error codes mapped onto domain errors
const (
	codeExclusionViolation        = "23P01"
	codeUniqueViolation           = "23505"
	codeForeignKeyViolation       = "23503"
	codeCheckViolation            = "23514"
	codeInvalidTextRepresentation = "22P02"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.PropertyRepository
	repository.BookingRepository
	repository.ForkliftRepository
	repository.OperatorRepository
	repository.OperationRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		PropertyRepository:     NewPropertyRepository(db),
		BookingRepository:      NewBookingRepository(db),
		ForkliftRepository:     NewForkliftRepository(db),
		OperatorRepository:     NewOperatorRepository(db),
		OperationRepository:    NewOperationRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.NewStorageError("database unreachable", err)
	}
	return nil
}

var dialect = goqu.Dialect("postgres")

// classify turns a driver error into a domain error. It never returns a raw driver error.
func classify(err error, entity, id, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(entity, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeExclusionViolation:
			return &domain.Error{Kind: domain.ErrorKindConflict, Message: fmt.Sprintf("%s overlaps an existing reservation", entity), Err: err}
		case codeUniqueViolation:
			return &domain.Error{Kind: domain.ErrorKindConflict, Message: fmt.Sprintf("%s already exists (%s)", entity, pqErr.Constraint), Err: err}
		case codeForeignKeyViolation:
			return &domain.Error{Kind: domain.ErrorKindValidation, Message: fmt.Sprintf("%s references a missing record", entity), Err: err}
		case codeCheckViolation:
			return &domain.Error{Kind: domain.ErrorKindValidation, Message: fmt.Sprintf("%s violates %s", entity, pqErr.Constraint), Err: err}
		case codeInvalidTextRepresentation:
			return &domain.Error{Kind: domain.ErrorKindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Err: err}
		}
	}
	return domain.NewStorageError(op, err)
}

// classifyDelete is classify for deletes, where a foreign key violation means the row
// still has bookings or operations pointing at it.
func classifyDelete(err error, entity, id, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeForeignKeyViolation {
		return &domain.Error{Kind: domain.ErrorKindConflict, Message: fmt.Sprintf("%s %s still has recorded history and cannot be deleted", entity, id), Err: err}
	}
	return classify(err, entity, id, op)
}

// malformedID reports whether any non-empty id filter cannot match a UUID column.
// Such a filter matches no rows.
func malformedID(ids ...string) bool {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return true
		}
	}
	return false
}

// requireAffected reports not found when an UPDATE or DELETE matched nothing
func requireAffected(res sql.Result, entity, id, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	if n == 0 {
		return domain.NewNotFoundError(entity, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func order(o repository.SortOrder) []exp.OrderedExpression {
	if o == repository.SortOldestFirst {
		return []exp.OrderedExpression{goqu.C("created_at").Asc(), goqu.C("seq").Asc()}
	}
	return []exp.OrderedExpression{goqu.C("created_at").Desc(), goqu.C("seq").Desc()}
}

func stringsOf[S ~string](in []S) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
