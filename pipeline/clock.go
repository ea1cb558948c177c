package pipeline

import (
	"context"
	"time"
)

// Clock abstracts time for barrier polling and retry delays
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is done
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
