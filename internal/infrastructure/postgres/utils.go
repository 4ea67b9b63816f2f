package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateUniqueViolation = "23505"
	sqlStateCheckViolation  = "23514"
	sqlStateFKViolation     = "23503"
	sqlStateInvalidText     = "22P02"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasSQLState(err, sqlStateUniqueViolation)
}

// isCheckViolation violación de un CHECK (ej. stock >= 0).
func isCheckViolation(err error) bool {
	return hasSQLState(err, sqlStateCheckViolation)
}

// isFKViolation referencia a una fila inexistente.
func isFKViolation(err error) bool {
	return hasSQLState(err, sqlStateFKViolation)
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// nullIfEmpty para columnas UUID opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// limitArg LIMIT NULL en PostgreSQL equivale a sin límite.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// noRows fila inexistente. Un ID que no es UUID válido (22P02) tampoco puede existir.
func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || hasSQLState(err, sqlStateInvalidText)
}

// validID evita consultar con IDs que no son UUID: dentro de una transacción el error 22P02
// la dejaría abortada para las sentencias siguientes.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
