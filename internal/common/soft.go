package common

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mediashare/internal/logging"
)

// SoftFailure is the outcome of a best-effort operation (auto-login, logout,
// like reconciliation). It deliberately does not implement error: a soft
// failure has already been absorbed into a safe default state and must not
// be propagated to the user as a hard error.
//
// The zero value means success.
type SoftFailure struct {
	Op  string
	Err error
}

// Soft builds a SoftFailure for op. A nil err yields a successful result.
func Soft(op string, err error) SoftFailure {
	return SoftFailure{Op: op, Err: err}
}

// OK reports whether the operation completed without being absorbed.
func (s SoftFailure) OK() bool {
	return s.Err == nil
}

// Cause returns the absorbed error, or nil.
func (s SoftFailure) Cause() error {
	return s.Err
}

func (s SoftFailure) String() string {
	if s.Err == nil {
		return s.Op + ": ok"
	}
	return fmt.Sprintf("%s: %v", s.Op, s.Err)
}

// Log acknowledges the failure by writing it to l at warn level.
// Successful results are not logged.
func (s SoftFailure) Log(ctx context.Context, l logging.Logger) {
	if s.Err == nil || l == nil {
		return
	}
	l.Warn(ctx, "soft failure", "op", s.Op, "error", s.Err)
}
