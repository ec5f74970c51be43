package memory

import "time"

// WallClock is the real-time MonotonicClock used outside of tests.
type WallClock struct {
	start time.Time
}

// NewWallClock returns a clock whose epoch is the moment it is created,
// matching original_source's Rtc::new() capturing Instant::now().
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// ElapsedMicros returns microseconds elapsed since the clock's epoch,
// truncated to 32 bits like the original implementation.
func (w *WallClock) ElapsedMicros() uint32 {
	return uint32(time.Since(w.start).Microseconds())
}
