package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// Class 23 integrity violation raised when an insert hits an existing key.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique constraint violation
// on the named constraint. The repository uses it to turn a primary key
// collision into a domain sentinel instead of leaking a driver error.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolationCode && pqErr.Constraint == constraint
}
