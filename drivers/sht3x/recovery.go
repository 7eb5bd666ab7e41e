package sht3x

// Recover runs the recovery ladder: bus reset, soft reset, hard reset, and
// general call reset, in that order, each gated by its own Config flag and
// each followed by a tracked probe. The first probe to succeed calls
// setSafeBaseline and returns immediately — a sensor that answers after bus
// reset alone doesn't need a hard reset too. If every enabled step fails,
// Recover returns the last failure seen. Recover is throttled by
// RecoverBackoffMs: calling it again too soon returns Busy without touching
// the bus, so a caller looping on a dead sensor can't hammer it.
func (d *Driver) Recover(nowMs uint32) Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}

	if d.lastRecoverMs != 0 && d.cfg.RecoverBackoffMs != 0 {
		if !timeElapsed(nowMs, d.lastRecoverMs+d.cfg.RecoverBackoffMs) {
			return Err(Busy, "recovery backoff in effect")
		}
	}
	d.lastRecoverMs = nowMs

	var last Status

	if d.cfg.RecoverUseBusReset {
		if st := d.interfaceReset(); st.Ok() {
			if st := d.probeTracked(); st.Ok() {
				d.setSafeBaseline()
				return StatusOK()
			} else {
				last = st
			}
		} else {
			last = st
		}
	}

	if d.cfg.RecoverUseSoftReset {
		if st := d.softReset(); st.Ok() {
			if st := d.probeTracked(); st.Ok() {
				d.setSafeBaseline()
				return StatusOK()
			} else {
				last = st
			}
		} else {
			last = st
		}
	}

	if d.cfg.RecoverUseHardReset {
		if st := d.hardReset(); st.Ok() {
			if st := d.probeTracked(); st.Ok() {
				d.setSafeBaseline()
				return StatusOK()
			} else {
				last = st
			}
		} else {
			last = st
		}
	}

	if d.cfg.AllowGeneralCallReset {
		if st := d.generalCallReset(); st.Ok() {
			if st := d.probeTracked(); st.Ok() {
				d.setSafeBaseline()
				return StatusOK()
			} else {
				last = st
			}
		} else {
			last = st
		}
	}

	if last.Code == OK {
		return Err(CommandFailed, "no recovery step enabled")
	}
	return last
}

// probeTracked is a status-register read used purely to confirm the sensor
// answers after a recovery step. Unlike Probe, its result does flow through
// updateHealth — a recovery attempt is exactly the moment the health
// tracker most needs to see whether the bus is alive again.
func (d *Driver) probeTracked() Status {
	_, st := d.readStatusRaw(true)
	return st
}

// hardReset calls the board-level hard-reset callback (if configured) and
// waits out the sensor's documented power-up settle time.
func (d *Driver) hardReset() Status {
	resetter, ok := d.cfg.Transport.(HardResetter)
	if !ok {
		return Err(Unsupported, "transport has no hard reset")
	}
	if st := resetter.HardReset(); !st.Ok() {
		return st
	}
	return d.waitMs(resetDelayMs)
}

// setSafeBaseline is called once a recovery step's probe confirms the
// sensor is back: it clears periodic/measurement bookkeeping and forces
// SINGLE_SHOT, the one mode guaranteed safe to resume from regardless of
// which ladder step worked.
func (d *Driver) setSafeBaseline() {
	d.measurementRequested = false
	d.measurementReady = false
	d.measurementReadyMs = 0
	d.periodicActive = false
	d.mode = ModeSingleShot
	d.cfg.Mode = ModeSingleShot
	d.periodicStartMs = 0
	d.lastFetchMs = 0
	d.periodMs = 0
	d.notReadyStartMs = 0
	d.notReadyCount = 0
	d.missedSamples = 0
}

// ResetToDefaults runs the recovery ladder and, once the sensor answers
// again, discards the settings cache in favor of this library's own
// defaults rather than replaying whatever was cached. Use this when the
// caller wants a known-clean device rather than a restored one.
func (d *Driver) ResetToDefaults(nowMs uint32) Status {
	if st := d.Recover(nowMs); !st.Ok() {
		return st
	}
	d.setDefaultsToConfigAndCache()
	return StatusOK()
}

// ResetAndRestore runs the recovery ladder and then replays the settings
// cache onto the sensor in the fixed order applyCachedSettingsAfterReset
// documents. If the cache was never populated (no prior Begin/setting call
// in this driver's lifetime), it behaves like ResetToDefaults instead of
// replaying nothing.
func (d *Driver) ResetAndRestore(nowMs uint32) Status {
	if st := d.Recover(nowMs); !st.Ok() {
		return st
	}
	if !d.hasCachedSettings {
		d.setDefaultsToConfigAndCache()
		return StatusOK()
	}
	return d.applyCachedSettingsAfterReset()
}
