package postgres

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
)

const propertyColumns = `id, owner_id, title, description, price, location, city, bedrooms, bathrooms, max_guests, image_url, amenities, rating, status, featured, created_at, updated_at`

type propertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) repository.PropertyRepository {
	return &propertyRepository{db: db}
}

func scanProperty(row rowScanner) (*domain.Property, error) {
	p := &domain.Property{}
	var ownerID sql.NullString
	err := row.Scan(&p.ID, &ownerID, &p.Title, &p.Description, &p.Price, &p.Location, &p.City, &p.Bedrooms, &p.Bathrooms,
		&p.MaxGuests, &p.ImageURL, pq.Array(&p.Amenities), &p.Rating, &p.Status, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.OwnerID = ownerID.String
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	return p, nil
}

func (r *propertyRepository) Create(ctx context.Context, p *domain.Property) error {
	query := `INSERT INTO properties (id, owner_id, title, description, price, location, city, bedrooms, bathrooms, max_guests, image_url, amenities, rating, status, featured, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	logger.DatabaseCall("INSERT", "properties", "propertyID", p.ID, "ownerID", p.OwnerID)
	_, err := r.db.ExecContext(ctx, query, p.ID, nullString(p.OwnerID), p.Title, p.Description, p.Price, p.Location, p.City,
		p.Bedrooms, p.Bathrooms, p.MaxGuests, p.ImageURL, pq.Array(p.Amenities), p.Rating, p.Status, p.Featured, p.CreatedAt, p.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "propertyID", p.ID)
	return classify(err, "property", p.ID, "failed to create property")
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify(err, "property", id, "failed to get property")
	}
	return p, nil
}

func (r *propertyRepository) Update(ctx context.Context, p *domain.Property) error {
	query := `UPDATE properties SET title=$1, description=$2, price=$3, location=$4, city=$5, bedrooms=$6, bathrooms=$7, max_guests=$8,
	          image_url=$9, amenities=$10, rating=$11, status=$12, featured=$13, updated_at=$14 WHERE id=$15`
	logger.DatabaseCall("UPDATE", "properties", "propertyID", p.ID, "status", p.Status)
	res, err := r.db.ExecContext(ctx, query, p.Title, p.Description, p.Price, p.Location, p.City, p.Bedrooms, p.Bathrooms, p.MaxGuests,
		p.ImageURL, pq.Array(p.Amenities), p.Rating, p.Status, p.Featured, p.UpdatedAt, p.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "propertyID", p.ID)
		return classify(err, "property", p.ID, "failed to update property")
	}
	return requireAffected(res, "property", p.ID, "failed to update property")
}

func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	logger.DatabaseCall("DELETE", "properties", "propertyID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "propertyID", id)
		return classifyDelete(err, "property", id, "failed to delete property")
	}
	return requireAffected(res, "property", id, "failed to delete property")
}

func (r *propertyRepository) List(ctx context.Context, f repository.PropertyFilter) ([]domain.Property, error) {
	if malformedID(f.OwnerID) {
		return []domain.Property{}, nil
	}
	ds := dialect.From("properties").Prepared(true).Select(goqu.L(propertyColumns))
	if f.OwnerID != "" {
		ds = ds.Where(goqu.C("owner_id").Eq(f.OwnerID))
	}
	if f.City != "" {
		ds = ds.Where(goqu.C("city").ILike(f.City))
	}
	if len(f.Statuses) > 0 {
		ds = ds.Where(goqu.C("status").In(stringsOf(f.Statuses)))
	}
	if f.FeaturedOnly {
		ds = ds.Where(goqu.C("featured").IsTrue())
	}
	query, args, err := ds.Order(order(f.Order)...).ToSQL()
	if err != nil {
		return nil, domain.NewStorageError("failed to build property query", err)
	}

	logger.DatabaseCall("SELECT", "properties", "city", f.City, "statuses", f.Statuses)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "property", "", "failed to list properties")
	}
	defer rows.Close()

	props := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, classify(err, "property", "", "failed to scan property")
		}
		props = append(props, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "property", "", "failed to list properties")
	}
	logger.DatabaseResult("SELECT", int64(len(props)), nil)
	return props, nil
}
