package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
)

// IsExclusionConflict reports whether err is an exclusion constraint violation,
// raised when two scheduled appointments for one provider overlap.
func IsExclusionConflict(err error) bool {
	return pgCode(err) == pgExclusionViolation
}

func IsSerializationFailure(err error) bool {
	return pgCode(err) == pgSerializationFailure
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
