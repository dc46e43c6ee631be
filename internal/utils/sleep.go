package utils

import (
	"context"
	"sync"
	"time"
)

var (
	sleepFunc func(time.Duration)
	mu        sync.Mutex // mutex to make the setting of the sleepFunc thread-safe
)

// Sleep waits for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the context ended.
func Sleep(ctx context.Context, d time.Duration) error {
	mu.Lock()
	f := sleepFunc
	mu.Unlock()

	if f != nil {
		f(d)
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SetSleepFunc allows for overriding the default sleep function, primarily for testing.
func SetSleepFunc(f func(time.Duration)) {
	mu.Lock()
	sleepFunc = f
	mu.Unlock()
}

// ResetSleepFunc restores the default context aware timer.
func ResetSleepFunc() {
	SetSleepFunc(nil)
}
