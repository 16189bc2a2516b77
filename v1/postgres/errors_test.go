package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrRecordNotFound},
		{"wrapped record not found", fmt.Errorf("loading document: %w", gorm.ErrRecordNotFound), ErrRecordNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, ErrDuplicateKey},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, ErrForeignKey},
		{"gorm invalid data", gorm.ErrInvalidData, ErrInvalidData},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrDuplicateKey},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, ErrForeignKey},
		{"not null violation", &pgconn.PgError{Code: "23502"}, ErrInvalidData},
		{"invalid text", &pgconn.PgError{Code: "22P02"}, ErrInvalidData},
		{"exclusion violation", &pgconn.PgError{Code: "23P01"}, ErrInvalidData},
		{"connection failure", &pgconn.PgError{Code: "08006"}, ErrConnection},
		{"connection class", &pgconn.PgError{Code: "08004"}, ErrConnection},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.in)
			if !errors.Is(got, tt.want) {
				t.Errorf("TranslateError(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if !errors.Is(got, tt.in) {
				t.Errorf("TranslateError(%v) lost the original error", tt.in)
			}
		})
	}
}

func TestTranslateError_PassThrough(t *testing.T) {
	if TranslateError(nil) != nil {
		t.Error("nil must stay nil")
	}

	other := errors.New("boom")
	if got := TranslateError(other); got != other {
		t.Errorf("unknown error changed: %v", got)
	}

	syntax := &pgconn.PgError{Code: "42601"}
	if got := TranslateError(syntax); got != error(syntax) {
		t.Errorf("syntax error changed: %v", got)
	}
}

func TestConnectionDSN(t *testing.T) {
	c := Connection{Host: "db", Port: "5433", User: "u", Password: "p", DbName: "rag", SSLMode: "disable"}
	want := "host=db port=5433 user=u password=p dbname=rag sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
