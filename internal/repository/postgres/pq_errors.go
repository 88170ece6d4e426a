package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	// pqInvalidText is raised for malformed input such as a non-uuid id.
	pqInvalidText = "22P02"
)

// pqViolation returns the constraint name when err is a postgres error with the given code.
func pqViolation(err error, code pq.ErrorCode) (string, bool) {
	var perr *pq.Error
	if errors.As(err, &perr) && perr.Code == code {
		return perr.Constraint, true
	}
	return "", false
}

// isNotFound reports whether a lookup found nothing. An id that is not a valid uuid cannot match a row.
func isNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	_, ok := pqViolation(err, pqInvalidText)
	return ok
}
