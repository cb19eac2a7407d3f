package workperiods

import (
	"context"
	"errors"
)

// CancelHandle cancels one in-flight request. The zero value and nil are no-ops.
type CancelHandle struct {
	cancel context.CancelFunc
}

// NewCancelHandle derives a cancellable context from parent.
func NewCancelHandle(parent context.Context) (context.Context, *CancelHandle) {
	ctx, cancel := context.WithCancel(parent)
	return ctx, &CancelHandle{cancel: cancel}
}

// Cancel aborts the request. Safe to call more than once.
func (h *CancelHandle) Cancel() {
	if h != nil && h.cancel != nil {
		h.cancel()
	}
}

// IsCanceled classifies err as a user or supersession cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
