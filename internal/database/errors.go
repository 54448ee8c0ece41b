package database

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

// MySQL server error numbers the store cares about.
const (
	mysqlErrDupEntry        = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrLockDeadlock    = 1213
	mysqlErrQueryInterrupt  = 1317
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrLockDeadlock:
			return ErrorClassDeadlock
		case mysqlErrLockWaitTimeout, mysqlErrQueryInterrupt:
			return ErrorClassTransient
		}
		return ErrorClassPermanent
	}

	if errors.Is(err, mysql.ErrInvalidConn) {
		return ErrorClassTransient
	}
	if errors.Is(err, ErrConcurrentUpdate) {
		return ErrorClassSerialization
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// IsDuplicate reports a unique key violation.
func IsDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrDupEntry
}

// IsNoRows reports sql.ErrNoRows anywhere in the chain.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrCartEmpty       = errors.New("cart is empty")
	ErrDuplicate       = errors.New("duplicate record")

	// ErrStatusMismatch is returned when a guarded transition finds the order
	// in a status other than the expected source.
	ErrStatusMismatch = errors.New("order status changed")
	// ErrInsufficientStock is returned when the guarded stock decrement
	// finds fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConcurrentUpdate means the guard missed but a re-read could not
	// explain why; the transaction is safe to retry.
	ErrConcurrentUpdate = errors.New("concurrent update")
	// ErrTicketClosed is returned when an update targets a closed ticket.
	ErrTicketClosed = errors.New("ticket is closed")
)
