package sht3x

import (
	"time"

	"sht3x/x/timex"
)

// maxSpinIters bounds the number of times ensureCommandDelay/waitMs may
// observe the same millisecond twice before giving up. On bare-metal
// firmware this guards against a stalled or disabled clock; kept here for
// fidelity even though time.Now() on a hosted Go runtime will not stall.
const maxSpinIters = 500000

// spinSleep is the yield granularity of the bounded wait loops below. A
// real busy-spin (as the original MCU code performs) would peg a CPU core
// for no benefit on a hosted target, so each iteration yields briefly.
const spinSleep = 50 * time.Microsecond

// nowMs returns the driver's own millisecond clock, independent of the
// nowMs a host passes into Tick: the bounded waits below are synchronous
// and self-clocked, the same way the original reaches for millis()/micros()
// directly rather than taking a timestamp argument.
func nowMs() uint32 { return uint32(timex.NowMs()) }

// nowUs returns the driver's own microsecond clock, truncated to uint32 the
// same way nowMs truncates the millisecond clock — it wraps, but
// timeElapsed's modular comparison stays correct across the wrap, and a
// command delay is never more than a handful of milliseconds so the window
// between two calls never approaches the ~71-minute wrap period.
func nowUs() uint32 { return uint32(timex.NowUs()) }

// timeElapsed reports whether now has reached or passed target, using
// signed 32-bit modular comparison so the result stays correct across a
// uint32 timestamp wraparound.
func timeElapsed(now, target uint32) bool {
	return int32(now-target) >= 0
}

// ensureCommandDelay blocks the caller until at least commandDelayMs has
// passed since lastCommandUs (0 means "no prior command", so it returns
// immediately). The completion check compares against a microsecond clock,
// matching the original's micros()-based gate — tIDLE is specified in
// fractions of a millisecond on some commands, and a millisecond-resolution
// check would let the gate open up to 999us early. The surrounding
// timeout/stall-guard bookkeeping stays at millisecond resolution, same as
// the original, since those only bound worst-case wait time rather than
// gate the actual delay.
func ensureCommandDelay(lastCommandUs uint32, commandDelayMs uint16, i2cTimeoutMs uint32) Status {
	if lastCommandUs == 0 {
		return StatusOK()
	}
	target := lastCommandUs + uint32(commandDelayMs)*1000
	startMs := nowMs()
	timeoutMs := uint32(commandDelayMs) + i2cTimeoutMs
	lastMs := startMs
	stableLoops := 0

	for !timeElapsed(nowUs(), target) {
		now := nowMs()
		if now-startMs > timeoutMs {
			return Err(Timeout, "command delay timeout")
		}
		if now != lastMs {
			lastMs = now
			stableLoops = 0
		} else {
			stableLoops++
			if stableLoops >= maxSpinIters {
				return Err(Timeout, "command delay timeout")
			}
		}
		time.Sleep(spinSleep)
	}
	return StatusOK()
}

// waitMs blocks the caller for approximately delayMs, using the same
// bounded/stall-guarded loop as ensureCommandDelay. Used for the sensor's
// fixed reset/break settle times.
func waitMs(delayMs uint32, i2cTimeoutMs uint32) Status {
	if delayMs == 0 {
		return StatusOK()
	}
	startMs := nowMs()
	deadline := startMs + delayMs
	timeoutMs := delayMs + i2cTimeoutMs
	lastMs := startMs
	stableLoops := 0

	for {
		now := nowMs()
		if timeElapsed(now, deadline) {
			break
		}
		if now-startMs > timeoutMs {
			return Err(Timeout, "wait timeout")
		}
		if now != lastMs {
			lastMs = now
			stableLoops = 0
		} else {
			stableLoops++
			if stableLoops >= maxSpinIters {
				return Err(Timeout, "wait timeout")
			}
		}
		time.Sleep(spinSleep)
	}
	return StatusOK()
}
