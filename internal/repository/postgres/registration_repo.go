package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

const registrationColumns = `id, code, event_id, user_id, inviting_user_id, is_invitation_accepted,
		payment_status, payment_link, created_at, updated_at`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var status, link sql.NullString
	err := row.Scan(
		&reg.ID, &reg.Code, &reg.EventID, &reg.UserID, &reg.InvitingUserID, &reg.IsInvitationAccepted,
		&status, &link, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if status.Valid {
		s := domain.PaymentStatus(status.String)
		reg.PaymentStatus = &s
	}
	reg.PaymentLink = nullStringPtr(link)
	return reg, nil
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (code, event_id, user_id, inviting_user_id, is_invitation_accepted,
			payment_status, payment_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var status sql.NullString
	if reg.PaymentStatus != nil {
		status = sql.NullString{String: string(*reg.PaymentStatus), Valid: true}
	}
	err := r.DB.QueryRowContext(ctx, query,
		reg.Code, reg.EventID, reg.UserID, reg.InvitingUserID, reg.IsInvitationAccepted,
		status, reg.PaymentLink, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		if constraint, ok := pqViolation(err, pqUniqueViolation); ok {
			if constraint == "registrations_code_key" {
				return domain.ErrDuplicateCode
			}
			return domain.ErrAlreadyRegistered
		}
		if _, ok := pqViolation(err, pqForeignKeyViolation); ok {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

// Accept flips only a pending row, so a second acceptance finds nothing.
func (r *registrationRepository) Accept(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		UPDATE registrations SET is_invitation_accepted = TRUE, updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2 AND is_invitation_accepted = FALSE
		RETURNING ` + registrationColumns
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) Reopen(ctx context.Context, id string) error {
	query := `
		UPDATE registrations
		SET is_invitation_accepted = FALSE, payment_status = NULL, payment_link = NULL, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, id)
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

func (r *registrationRepository) SetPayment(ctx context.Context, id string, status domain.PaymentStatus, link *string) error {
	query := `
		UPDATE registrations SET payment_status = $1, payment_link = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.DB.ExecContext(ctx, query, string(status), link, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) UpdatePaymentStatus(ctx context.Context, code string, status domain.PaymentStatus) error {
	query := `
		UPDATE registrations SET payment_status = $1, updated_at = NOW()
		WHERE code = $2
	`
	result, err := r.DB.ExecContext(ctx, query, string(status), code)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) Delete(ctx context.Context, eventID, userID string, pendingOnly bool) (*domain.Registration, error) {
	query := `
		DELETE FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND (NOT $3 OR is_invitation_accepted = FALSE)
		RETURNING ` + registrationColumns
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID, pendingOnly))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const confirmedCondition = `r.event_id = $1 AND r.is_invitation_accepted = TRUE
		AND (NOT $2 OR r.payment_status = 'PAID')`

func (r *registrationRepository) ListGuests(ctx context.Context, eventID string, requirePaid bool) ([]*domain.Guest, error) {
	query := `
		SELECT r.code, u.id, u.email, u.first_name, u.last_name
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE ` + confirmedCondition + `
		ORDER BY r.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, requirePaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g := &domain.Guest{}
		if err := rows.Scan(&g.RegistrationCode, &g.UserID, &g.Email, &g.FirstName, &g.LastName); err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return guests, nil
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, 0, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *registrationRepository) CountGuests(ctx context.Context, eventID string, requirePaid bool) (int, error) {
	query := `SELECT COUNT(*) FROM registrations r WHERE ` + confirmedCondition
	var n int
	if err := r.DB.QueryRowContext(ctx, query, eventID, requirePaid).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *registrationRepository) ListPendingPayments(ctx context.Context) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE payment_status IN ('CREATED', 'WAITING')
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}
