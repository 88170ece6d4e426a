package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eventhub/internal/domain"
)

const eventColumns = `id, variant, name, venue_id, category_id, short_information, full_information,
		start_datetime, duration_seconds, closing_registration_date, max_visitors, price, invitation_code,
		created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var venueID, categoryID, shortInfo, fullInfo, code sql.NullString
	var durationSecs int64
	var price decimal.NullDecimal
	err := row.Scan(
		&e.ID, &e.Variant, &e.Name, &venueID, &categoryID, &shortInfo, &fullInfo,
		&e.StartDatetime, &durationSecs, &e.ClosingRegistrationDate, &e.MaxVisitors, &price, &code,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.VenueID = nullStringPtr(venueID)
	e.CategoryID = nullStringPtr(categoryID)
	e.ShortInformation = nullStringPtr(shortInfo)
	e.FullInformation = nullStringPtr(fullInfo)
	e.Duration = time.Duration(durationSecs) * time.Second
	if price.Valid {
		p := price.Decimal
		e.Price = &p
	}
	e.InvitationCode = code.String
	return e, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func eventArgs(e *domain.Event) []any {
	var price decimal.NullDecimal
	if e.Price != nil {
		price = decimal.NewNullDecimal(*e.Price)
	}
	code := sql.NullString{String: e.InvitationCode, Valid: e.InvitationCode != ""}
	return []any{
		e.Variant, e.Name, e.VenueID, e.CategoryID, e.ShortInformation, e.FullInformation,
		e.StartDatetime, int64(e.Duration / time.Second), e.ClosingRegistrationDate, e.MaxVisitors,
		price, code,
	}
}

// mapEventWriteErr translates constraint violations raised by event writes.
func mapEventWriteErr(err error) error {
	if constraint, ok := pqViolation(err, pqUniqueViolation); ok && constraint == "events_invitation_code_key" {
		return domain.ErrDuplicateCode
	}
	if constraint, ok := pqViolation(err, pqForeignKeyViolation); ok {
		field := "venue_id"
		if strings.Contains(constraint, "category") {
			field = "category_id"
		}
		return domain.NewValidationError(field, "referenced object does not exist")
	}
	return err
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (variant, name, venue_id, category_id, short_information, full_information,
			start_datetime, duration_seconds, closing_registration_date, max_visitors, price, invitation_code,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	args := append(eventArgs(e), e.CreatedAt, e.UpdatedAt)
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		return mapEventWriteErr(err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, variant domain.Variant, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1 AND variant = $2
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, variant))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := []string{"variant = $1"}
	args := []any{filter.Variant}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.VenueID != "" {
		args = append(args, filter.VenueID)
		where = append(where, fmt.Sprintf("venue_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s
		FROM events
		WHERE %s
		ORDER BY start_datetime DESC
		LIMIT $%d OFFSET $%d
	`, eventColumns, cond, n+1, n+2)
	rows, err := r.DB.QueryContext(ctx, query, append(args, params.PageSize, params.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET
			variant = $1, name = $2, venue_id = $3, category_id = $4, short_information = $5,
			full_information = $6, start_datetime = $7, duration_seconds = $8,
			closing_registration_date = $9, max_visitors = $10, price = $11, invitation_code = $12,
			updated_at = $13
		WHERE id = $14
	`
	args := append(eventArgs(e), e.UpdatedAt, e.ID)
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return mapEventWriteErr(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, variant domain.Variant, id string) error {
	query := `DELETE FROM events WHERE id = $1 AND variant = $2`
	result, err := r.DB.ExecContext(ctx, query, id, variant)
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

func (r *eventRepository) ListStartingOn(ctx context.Context, day time.Time) ([]*domain.Event, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE start_datetime >= $1 AND start_datetime < $2
		ORDER BY start_datetime
	`
	rows, err := r.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
