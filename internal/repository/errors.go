package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"portfolio-api/internal/model"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// contentWriteError maps the outcome of a single-row content write.
func contentWriteError(op string, err error, affected int64) error {
	switch {
	case isUniqueViolation(err):
		return model.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return model.ErrInvalidInput
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	case affected == 0:
		return model.ErrNotFound
	}
	return nil
}
