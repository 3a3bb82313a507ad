package executor

import (
	"context"
	"time"
)

// sleepMillis blocks for millis milliseconds, or until ctx is cancelled.
func sleepMillis(ctx context.Context, millis int) {
	t := time.NewTimer(time.Duration(millis) * time.Millisecond)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
