package service

import (
	"context"
	"time"
)

// WriteTimeout bounds a write flow once it no longer follows the caller
const WriteTimeout = 30 * time.Second

// detach keeps ctx values but drops its cancellation.
// A claim that committed must get its credit or its release even when
// the client went away halfway.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), WriteTimeout)
}
