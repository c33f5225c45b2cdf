package portal

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrInvalidCredentials means the portal rejected the account or password.
	ErrInvalidCredentials = errors.New("portal: invalid account or password")
	// ErrSessionExpired means a report page answered with the login form.
	ErrSessionExpired = errors.New("portal: not logged in")
	// ErrTableNotFound means the report page has no table with the configured id.
	ErrTableNotFound = errors.New("portal: report table not found")
	// ErrTimeout means the portal did not answer within the bounded wait.
	ErrTimeout = errors.New("portal: timed out")
)

// classify tags transport errors caused by a deadline with ErrTimeout.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
