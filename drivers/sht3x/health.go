package sht3x

import "math"

// DriverState summarizes the driver's communication health for a host that
// wants to decide when to call Recover without inspecting raw counters.
type DriverState uint8

const (
	// StateUninit is the state before Begin succeeds, or after End.
	StateUninit DriverState = iota
	// StateReady means the last tracked operation succeeded.
	StateReady
	// StateDegraded means some tracked operations are failing but fewer
	// than OfflineThreshold in a row.
	StateDegraded
	// StateOffline means ConsecutiveFailures has reached OfflineThreshold.
	StateOffline
)

func (s DriverState) String() string {
	switch s {
	case StateUninit:
		return "uninit"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Health is the driver's running record of transport reliability. All
// counters saturate rather than wrap, so a long-lived driver's stats stay
// legible instead of rolling over to zero.
type Health struct {
	LastOkMs          uint32
	LastErrorMs       uint32
	LastBusActivityMs uint32
	LastError         Status
	ConsecutiveFailures uint8
	TotalFailures       uint32
	TotalSuccess        uint32
}

// updateHealth is the single point through which every tracked transport
// result flows. Pre-init (initialized == false), it only timestamps the
// attempt: Begin's own probe must not move DriverState or touch the
// failure counters, since a brand new driver failing its first probe isn't
// "degraded", it simply never came up.
func updateHealth(h *Health, state *DriverState, initialized bool, offlineThreshold uint8, st Status, now uint32) Status {
	if !isHealthTracked(st.Code) {
		return st
	}

	h.LastBusActivityMs = now

	if !initialized {
		if st.Ok() {
			h.LastOkMs = now
		} else {
			h.LastError = st
			h.LastErrorMs = now
		}
		return st
	}

	if st.Ok() {
		h.LastOkMs = now
		if h.TotalSuccess < math.MaxUint32 {
			h.TotalSuccess++
		}
		h.ConsecutiveFailures = 0
		*state = StateReady
		return st
	}

	h.LastError = st
	h.LastErrorMs = now
	if h.TotalFailures < math.MaxUint32 {
		h.TotalFailures++
	}
	if h.ConsecutiveFailures < math.MaxUint8 {
		h.ConsecutiveFailures++
	}
	if h.ConsecutiveFailures >= offlineThreshold {
		*state = StateOffline
	} else {
		*state = StateDegraded
	}
	return st
}

// recordBusActivity timestamps any bus activity, including an expected
// "not ready" NACK, which does not flow through updateHealth's counters.
func recordBusActivity(h *Health, now uint32) {
	h.LastBusActivityMs = now
}
