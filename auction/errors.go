package auction

import (
	"errors"
	"fmt"
)

// ErrTooLate rejects a new bid on a player whose standing bid has no time
// remaining: the episode is closing and can no longer be contested.
var ErrTooLate = errors.New("bidding closed: existing bid has no time remaining")

// ValidationError is any pre-condition failure that rejects an operation
// before state is touched: insufficient funds, bid below the floor, wrong or
// unrecognized listing type, player not biddable, caller not the owner.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation rejection, as opposed to
// a missing record or a too-late lock.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
