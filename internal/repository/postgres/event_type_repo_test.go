package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestEventTypeRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mock   func(mock sqlmock.Sqlmock)
		wantID string
		errIs  error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO event_types`).
					WithArgs("Concert", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("type-1"))
			},
			wantID: "type-1",
		},
		{
			name: "duplicate name",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO event_types`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "event_types_name_key"})
			},
			errIs: domain.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			et := &domain.EventType{Name: "Concert", CreatedAt: now, UpdatedAt: now}
			err = NewEventTypeRepository(db).Create(ctx, et)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.wantID, et.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventTypeRepository_Delete(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM event_types WHERE id = \$1`).
		WithArgs("type-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, NewEventTypeRepository(db).Delete(ctx, "type-1"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
