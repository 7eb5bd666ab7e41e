package sht3x

import (
	"math"
	"testing"
	"time"
)

func TestTimeElapsedWrapsSafely(t *testing.T) {
	if !timeElapsed(100, 100) {
		t.Errorf("timeElapsed(100, 100) should be true (reached exactly)")
	}
	if timeElapsed(99, 100) {
		t.Errorf("timeElapsed(99, 100) should be false")
	}
	// now has wrapped past 0, target was set just before the wrap.
	wrappedNow := uint32(5)
	target := uint32(math.MaxUint32 - 10)
	if !timeElapsed(wrappedNow, target) {
		t.Errorf("timeElapsed across a uint32 wraparound should report elapsed")
	}
}

func TestEnsureCommandDelayNoPriorCommand(t *testing.T) {
	if st := ensureCommandDelay(0, 50, 100); !st.Ok() {
		t.Errorf("ensureCommandDelay with lastCommandUs=0 should return immediately, got %v", st)
	}
}

func TestEnsureCommandDelayWaitsOut(t *testing.T) {
	startMs := nowMs()
	st := ensureCommandDelay(nowUs(), 5, 200)
	if !st.Ok() {
		t.Fatalf("ensureCommandDelay: %v", st)
	}
	elapsed := nowMs() - startMs
	if elapsed < 4 {
		t.Errorf("ensureCommandDelay returned too early: elapsed=%dms", elapsed)
	}
}

func TestWaitMsZeroIsImmediate(t *testing.T) {
	start := time.Now()
	if st := waitMs(0, 100); !st.Ok() {
		t.Fatalf("waitMs(0, ...): %v", st)
	}
	if time.Since(start) > 5*time.Millisecond {
		t.Errorf("waitMs(0, ...) should return immediately")
	}
}
