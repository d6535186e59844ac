package pager

import (
	"fmt"

	"go.uber.org/zap"
)

// InvariantError reports a broken invariant or a misuse of the container API.
// It is always raised with panic and is never recovered inside this package:
// continuing after one would let page lifecycle calls drift from what is
// actually visible.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return "pager: " + e.Op + ": " + e.Msg
}

// invariantf logs and raises an InvariantError.
func invariantf(log *zap.Logger, op, format string, args ...any) {
	err := &InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)}
	log.Error("invariant violated", zap.String("op", op), zap.Error(err))
	panic(err)
}
