package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

const sqlStateUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// When column is set the violated constraint (Postgres) or column list
// (SQLite) must mention it.
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	if code := pkgerrors.PostgresCode(err); code != "" {
		if code != sqlStateUniqueViolation {
			return false
		}
		return column == "" || strings.Contains(pkgerrors.PostgresConstraint(err), column)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return column == "" || strings.Contains(msg, column)
}

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
