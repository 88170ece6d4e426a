package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

type eventTypeRepository struct {
	DB *sql.DB
}

func NewEventTypeRepository(db *sql.DB) domain.EventTypeRepository {
	return &eventTypeRepository{DB: db}
}

func (r *eventTypeRepository) Create(ctx context.Context, t *domain.EventType) error {
	query := `
		INSERT INTO event_types (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, t.Name, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
	if _, ok := pqViolation(err, pqUniqueViolation); ok {
		return domain.NewValidationError("name", "event type with this name already exists")
	}
	return err
}

func (r *eventTypeRepository) GetByID(ctx context.Context, id string) (*domain.EventType, error) {
	query := `SELECT id, name, created_at, updated_at FROM event_types WHERE id = $1`
	t := &domain.EventType{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *eventTypeRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.EventType, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_types`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT id, name, created_at, updated_at
		FROM event_types
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	types := make([]*domain.EventType, 0)
	for rows.Next() {
		t := &domain.EventType{}
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return types, total, nil
}

func (r *eventTypeRepository) Update(ctx context.Context, t *domain.EventType) error {
	query := `UPDATE event_types SET name = $1, updated_at = $2 WHERE id = $3`
	result, err := r.DB.ExecContext(ctx, query, t.Name, t.UpdatedAt, t.ID)
	if err != nil {
		if _, ok := pqViolation(err, pqUniqueViolation); ok {
			return domain.NewValidationError("name", "event type with this name already exists")
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

// Delete detaches the type from its events (ON DELETE SET NULL).
func (r *eventTypeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM event_types WHERE id = $1`, id)
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
