package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	// ActionRetry marks a connection-lost-class error: the link to the server was
	// dropped or used after a fatal failure.
	ActionRetry ErrorAction = iota
	// ActionFail marks everything else (syntax, constraints, cancellation).
	ActionFail
)

func (a ErrorAction) String() string {
	if a == ActionRetry {
		return "retry"
	}
	return "fail"
}

// SQLSTATE codes outside class 08 that still mean the session is gone.
var lostSessionCodes = map[string]struct{}{
	"57P01": {}, // admin_shutdown
	"57P02": {}, // crash_shutdown
	"57P03": {}, // cannot_connect_now
}

// ClassifyError determines the action for a given error.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionFail
	}

	// Cancellation is the caller's decision, never a transport fault.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ActionFail
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, sql.ErrTxDone) {
		return ActionFail
	}

	// Connection reset
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return ActionRetry
	}

	// Protocol connection lost
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return ActionRetry
	}

	// Enqueue after fatal error
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, ErrNoConnection) {
		return ActionRetry
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyCode(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyCode(string(pqErr.Code))
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection reset") ||
		strings.Contains(s, "broken pipe") ||
		strings.Contains(s, "conn closed") ||
		strings.Contains(s, "sql: database is closed") ||
		strings.Contains(s, "unexpected eof") {
		return ActionRetry
	}

	return ActionFail
}

func classifyCode(code string) ErrorAction {
	if strings.HasPrefix(code, "08") {
		return ActionRetry
	}
	if _, ok := lostSessionCodes[code]; ok {
		return ActionRetry
	}
	return ActionFail
}

// IsConnectionLost reports whether err belongs to the connection-lost class.
func IsConnectionLost(err error) bool {
	return ClassifyError(err) == ActionRetry
}
