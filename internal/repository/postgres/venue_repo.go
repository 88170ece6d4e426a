package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

type eventVenueRepository struct {
	DB *sql.DB
}

func NewEventVenueRepository(db *sql.DB) domain.EventVenueRepository {
	return &eventVenueRepository{DB: db}
}

func scanVenue(row rowScanner) (*domain.EventVenue, error) {
	v := &domain.EventVenue{}
	var address sql.NullString
	var lat, lng sql.NullFloat64
	if err := row.Scan(&v.ID, &v.Name, &address, &lat, &lng, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Address = nullStringPtr(address)
	if lat.Valid {
		v.Latitude = &lat.Float64
	}
	if lng.Valid {
		v.Longitude = &lng.Float64
	}
	return v, nil
}

func (r *eventVenueRepository) Create(ctx context.Context, v *domain.EventVenue) error {
	query := `
		INSERT INTO event_venues (name, address, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, v.Name, v.Address, v.Latitude, v.Longitude, v.CreatedAt, v.UpdatedAt).Scan(&v.ID)
}

func (r *eventVenueRepository) GetByID(ctx context.Context, id string) (*domain.EventVenue, error) {
	query := `
		SELECT id, name, address, latitude, longitude, created_at, updated_at
		FROM event_venues
		WHERE id = $1
	`
	v, err := scanVenue(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *eventVenueRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.EventVenue, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_venues`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT id, name, address, latitude, longitude, created_at, updated_at
		FROM event_venues
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	venues := make([]*domain.EventVenue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, 0, err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return venues, total, nil
}

func (r *eventVenueRepository) Update(ctx context.Context, v *domain.EventVenue) error {
	query := `
		UPDATE event_venues SET name = $1, address = $2, latitude = $3, longitude = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.DB.ExecContext(ctx, query, v.Name, v.Address, v.Latitude, v.Longitude, v.UpdatedAt, v.ID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete fails with ErrReferenced while any event is held at the venue.
func (r *eventVenueRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM event_venues WHERE id = $1`, id)
	if err != nil {
		if _, ok := pqViolation(err, pqForeignKeyViolation); ok {
			return domain.ErrReferenced
		}
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
