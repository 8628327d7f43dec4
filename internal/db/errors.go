package db

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/apperror"
)

// ErrStorageUnavailable marks failures of the storage layer itself.
// Unlike the logical errors of the domain, these are safe to retry with backoff.
var ErrStorageUnavailable = apperror.New(http.StatusServiceUnavailable, "storage unavailable, retry later")

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var e *pgconn.PgError
	return errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation
}

// IsUnavailable reports whether err means the database could not be reached
// or dropped the connection, as opposed to rejecting the statement.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgErr.Code == pgerrcode.AdminShutdown ||
			pgErr.Code == pgerrcode.CannotConnectNow ||
			pgErr.Code == pgerrcode.TooManyConnections
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded)
}

// Classify wraps connection-class failures as ErrStorageUnavailable and
// returns every other error unchanged.
func Classify(err error) error {
	if IsUnavailable(err) {
		return apperror.WrapAs(err, ErrStorageUnavailable)
	}
	return err
}
