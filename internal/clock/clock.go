package clock

import "time"

var (
	nowFunc   = time.Now
	sleepFunc = sleep
)

// Now returns the current time from the configured clock function.
func Now() time.Time {
	return nowFunc()
}

// Millis returns the current time in milliseconds since the Unix epoch.
func Millis() int64 {
	return nowFunc().UnixMilli()
}

// Sleep pauses for d or until done is closed, whichever comes first.
// It reports whether the full duration elapsed.
func Sleep(done <-chan struct{}, d time.Duration) bool {
	return sleepFunc(done, d)
}

func sleep(done <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-done:
		return false
	}
}

// SetNowForTest overrides the clock source and returns a restore function.
func SetNowForTest(fn func() time.Time) func() {
	previous := nowFunc
	nowFunc = fn
	return func() {
		nowFunc = previous
	}
}

// SetSleepForTest overrides Sleep and returns a restore function.
func SetSleepForTest(fn func(done <-chan struct{}, d time.Duration) bool) func() {
	previous := sleepFunc
	sleepFunc = fn
	return func() {
		sleepFunc = previous
	}
}
