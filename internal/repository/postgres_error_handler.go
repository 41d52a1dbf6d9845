package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/paulsundquist/yt-aggregator/internal/errors"
)

// handlePostgreSQLError converts PostgreSQL-specific errors to appropriate AppError codes
func handlePostgreSQLError(err error, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.Wrap(err, apperrors.CodeInternal, operation)
	}

	switch pgErr.Code {
	case "23505": // UNIQUE_VIOLATION
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, operation+": resource already exists")

	case "23503": // FOREIGN_KEY_VIOLATION
		return handleForeignKeyViolation(pgErr, operation)

	case "23502": // NOT_NULL_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, operation+": required field "+pgErr.ColumnName+" is missing")

	case "23514": // CHECK_VIOLATION
		if strings.Contains(pgErr.ConstraintName, "schedule") {
			return apperrors.Wrap(err, apperrors.CodeInvalidArg, operation+": schedule must be hourly, daily or weekly")
		}
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, operation+": data violates check constraint")

	case "22001": // STRING_DATA_RIGHT_TRUNCATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, operation+": value too long")

	case "42P01": // UNDEFINED_TABLE
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: table not found (run 'ytagg migrate up')")

	case "42703": // UNDEFINED_COLUMN
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: column not found")

	case "08000", "08003", "08006": // CONNECTION_EXCEPTION variants
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection error")

	case "53300": // TOO_MANY_CONNECTIONS
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection limit reached")

	default:
		return apperrors.Wrap(err, apperrors.CodeInternal, "database error (PostgreSQL code: "+pgErr.Code+")")
	}
}

// handleForeignKeyViolation provides specific error messages for foreign key constraints
func handleForeignKeyViolation(pgErr *pgconn.PgError, operation string) *apperrors.AppError {
	if strings.Contains(pgErr.ConstraintName, "channel_id") {
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, operation+": referenced channel does not exist")
	}
	return apperrors.Wrap(pgErr, apperrors.CodeDependency, operation+": referenced resource does not exist")
}

// storeWriteError marks a failed write as STORE_WRITE_FAILED while keeping
// the classified PostgreSQL error reachable through the cause chain.
func storeWriteError(err error, operation string) *apperrors.AppError {
	cause := handlePostgreSQLError(err, operation)
	return apperrors.Wrap(cause, apperrors.CodeStoreWriteFailed, operation)
}
