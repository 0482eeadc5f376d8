package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgErrorCode devuelve el SQLSTATE del error, o "" si no viene de PostgreSQL.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUndefinedTable verifica si el error es por tabla inexistente (42P01).
func isUndefinedTable(err error) bool {
	return pgErrorCode(err) == "42P01"
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == "23505"
}
