package workspace

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange    = errors.New("asset index out of range")
	ErrPortfolioNotFound  = errors.New("portfolio not found")
	ErrPortfolioNameTaken = errors.New("portfolio name already in use")
	ErrBlankName          = errors.New("portfolio name must not be blank")
	ErrNoValidPortfolio   = errors.New("no valid portfolio: give at least one portfolio a ticker with a positive weight")
	ErrEmptyTickerSet     = errors.New("add at least one ticker to scan")
	ErrUnknownSortKey     = errors.New("unknown sort key")
	ErrBusy               = errors.New("a request of this kind is already running")
	ErrStoreClosed        = errors.New("workspace store is closed")
)

// ValidationError is a recoverable input problem shown inline to the user.
// Portfolio names the offending portfolio when there is one.
type ValidationError struct {
	Portfolio string
	Message   string
	Err       error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Portfolio != "" {
		return fmt.Sprintf("%s: %s", e.Portfolio, msg)
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Err: err}
}

// CapacityError reports that the portfolio limit has been reached.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("at most %d portfolios can be compared", e.Max)
}
