package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.User
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, email, first_name, last_name`).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name"}).
						AddRow("user-1", "ann@example.com", "Ann", "Lee"))
			},
			want: &domain.User{ID: "user-1", Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, email`).WithArgs("user-1").WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewUserRepository(db).GetByID(ctx, "user-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
