package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound     = errors.New("entry not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrProtectedUser     = errors.New("user is an admin")
)

// pgUniqueViolation is the SQLSTATE postgres reports for unique index clashes.
const pgUniqueViolation = "23505"

// translateDuplicate maps driver level unique violations onto the repository
// sentinels. Any other error is returned unchanged.
func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return duplicateFor(pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	// sqlite reports "UNIQUE constraint failed: users.email"
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		return duplicateFor(msg)
	}
	return err
}

func duplicateFor(hint string) error {
	switch {
	case strings.Contains(hint, "email"):
		return ErrDuplicateEmail
	case strings.Contains(hint, "username"):
		return ErrDuplicateUsername
	default:
		return ErrDuplicateKey
	}
}

// escapeLike escapes the LIKE wildcards in a user supplied search term.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
