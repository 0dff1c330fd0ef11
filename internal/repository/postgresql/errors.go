package postgresql

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgInvalidTextRepresentation = "22P02"
	pgForeignKeyViolation       = "23503"
	pgCheckViolation            = "23514"
	pgExclusionViolation        = "23P01"
	pgTooManyConnections        = "53300"
	pgAdminShutdown             = "57P01"
	pgCannotConnectNow          = "57P03"
)

// pgError returns the server error carried by err, if any.
func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func hasCode(err error, code string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == code
}

// isInvalidID reports a malformed uuid literal; such ids can never match a row.
func isInvalidID(err error) bool {
	return hasCode(err, pgInvalidTextRepresentation)
}

// isUnavailable reports failures where the database could not be reached or refused work
// before running the statement.
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	if pgErr, ok := pgError(err); ok {
		// class 08: connection exception
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		switch pgErr.Code {
		case pgTooManyConnections, pgAdminShutdown, pgCannotConnectNow:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return strings.Contains(err.Error(), "closed pool")
}
