package postgres

import "github.com/lib/pq"

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, used to translate a racing insert into ierr.ErrConflict.
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == pqUniqueViolation
}
