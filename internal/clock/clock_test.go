package clock

import (
	"testing"
	"time"
)

func TestSetNowForTest(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	restore := SetNowForTest(func() time.Time { return fixed })
	defer restore()

	if got := Now(); !got.Equal(fixed) {
		t.Fatalf("Now() = %v, want %v", got, fixed)
	}
	if got, want := Millis(), fixed.UnixMilli(); got != want {
		t.Fatalf("Millis() = %d, want %d", got, want)
	}
}

func TestSleepStopsWhenDone(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	close(done)
	if Sleep(done, time.Hour) {
		t.Fatal("Sleep() = true, want false for closed done channel")
	}
	if !Sleep(nil, 0) {
		t.Fatal("Sleep(0) = false, want true")
	}
}
