package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/stockroom/internal/core/domain"
)

// PostgreSQL error codes the stores care about
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeQueryCanceled        = "57014"
	codeTooManyConnections   = "53300"
	codeAdminShutdown        = "57P01"
)

// Constraint names from the migrations
const (
	constraintItemName          = "items_location_name_key"
	constraintItemLocation      = "items_location_id_fkey"
	constraintSaleRequestKey    = "sale_events_request_key_idx"
	constraintWastageRequestKey = "wastage_events_request_key_idx"
)

// classify converts a pgx error into one of the domain error types. Errors
// it does not recognise are returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &domain.StoreUnavailableError{Op: op, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPgError(op, pgErr)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return &domain.StoreUnavailableError{Op: op, Err: err}
	}

	return err
}

func classifyPgError(op string, pgErr *pgconn.PgError) error {
	switch {
	case pgErr.Code == codeUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintItemName:
			return domain.NewValidationError("name", "already exists at this location")
		case constraintSaleRequestKey, constraintWastageRequestKey:
			return &domain.ConflictError{Reason: "duplicate request key", Err: pgErr}
		default:
			return &domain.ConflictError{Reason: "duplicate key", Err: pgErr}
		}

	case pgErr.Code == codeForeignKeyViolation:
		if pgErr.ConstraintName == constraintItemLocation {
			return domain.NewValidationError("location_id", "references an unknown location")
		}
		return domain.NewValidationError("", pgErr.Message)

	case pgErr.Code == codeCheckViolation:
		field := strings.TrimSuffix(strings.TrimPrefix(pgErr.ConstraintName, "items_"), "_check")
		return domain.NewValidationError(field, "violates a check constraint")

	case pgErr.Code == codeNumericOutOfRange:
		return domain.NewValidationError("", "value out of range")

	case pgErr.Code == codeSerializationFailure, pgErr.Code == codeDeadlockDetected:
		return &domain.ConflictError{Reason: "concurrent update, retry the operation", Err: pgErr}

	case pgErr.Code == codeQueryCanceled,
		pgErr.Code == codeTooManyConnections,
		pgErr.Code == codeAdminShutdown,
		strings.HasPrefix(pgErr.Code, "08"):
		return &domain.StoreUnavailableError{Op: op, Err: pgErr}
	}

	return pgErr
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
