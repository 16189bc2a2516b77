package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Normalised database errors. TranslateError wraps the original error with one of
// these so both stay reachable through errors.Is.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key value violates unique constraint")
	ErrForeignKey     = errors.New("foreign key constraint violation")
	ErrInvalidData    = errors.New("invalid data")
	ErrConnection     = errors.New("database connection error")
)

// PostgreSQL SQLSTATE codes handled by TranslateError.
const (
	codeUniqueViolation       = "23505"
	codeForeignKeyViolation   = "23503"
	codeNotNullViolation      = "23502"
	codeCheckViolation        = "23514"
	codeInvalidTextRepr       = "22P02"
	codeStringDataTruncation  = "22001"
	codeConnectionException   = "08000"
	codeConnectionFailure     = "08006"
	codeAdminShutdown         = "57P01"
	codeCannotConnectNow      = "57P03"
	classConnectionException  = "08"
	classIntegrityConstraints = "23"
)

// TranslateError maps gorm and pgx errors to the package sentinels. Errors it does not
// recognise are returned unchanged and nil stays nil.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrRecordNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %w", ErrForeignKey, err)
	case errors.Is(err, gorm.ErrInvalidData), errors.Is(err, gorm.ErrInvalidValue):
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrForeignKey, err)
	case codeNotNullViolation, codeCheckViolation, codeInvalidTextRepr, codeStringDataTruncation:
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	case codeConnectionException, codeConnectionFailure, codeAdminShutdown, codeCannotConnectNow:
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	switch {
	case len(pgErr.Code) >= 2 && pgErr.Code[:2] == classConnectionException:
		return fmt.Errorf("%w: %w", ErrConnection, err)
	case len(pgErr.Code) >= 2 && pgErr.Code[:2] == classIntegrityConstraints:
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return err
}

// TranslateError is the method form of the package function.
func (p *Postgres) TranslateError(err error) error {
	return TranslateError(err)
}
