package sht3x

// SetMode switches between SINGLE_SHOT, PERIODIC, and ART. Switching into
// PERIODIC/ART (re)issues the appropriate start command; switching to
// SINGLE_SHOT issues Break. Fails with Busy if a measurement is pending.
func (d *Driver) SetMode(m Mode) Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.measurementRequested && !d.measurementReady {
		return Err(Busy, "measurement in progress")
	}
	if !isValidMode(m) {
		return Err(InvalidParam, "invalid mode")
	}
	if m == d.mode {
		return StatusOK()
	}

	switch m {
	case ModeSingleShot:
		if st := d.StopPeriodic(); !st.Ok() {
			return st
		}
		d.mode = ModeSingleShot
		d.cfg.Mode = ModeSingleShot
		return StatusOK()
	case ModePeriodic:
		return d.StartPeriodic(d.cfg.PeriodicRate, d.cfg.Repeatability)
	default:
		return d.StartART()
	}
}

// SetRepeatability changes the repeatability used by single-shot and
// periodic acquisition. If PERIODIC is currently active, the new
// repeatability takes effect immediately by restarting it with the same
// rate. If ART is active it is restarted at its fixed 250ms cadence; the ART
// start command carries no repeatability, so the new value only applies
// once single-shot or periodic acquisition is used.
func (d *Driver) SetRepeatability(r Repeatability) Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.measurementRequested && !d.measurementReady {
		return Err(Busy, "measurement in progress")
	}
	if !isValidRepeatability(r) {
		return Err(InvalidParam, "invalid repeatability")
	}
	d.cfg.Repeatability = r
	switch d.mode {
	case ModePeriodic:
		return d.enterPeriodic(d.cfg.PeriodicRate, r, false)
	case ModeART:
		return d.enterPeriodic(d.cfg.PeriodicRate, r, true)
	default:
		return StatusOK()
	}
}

// SetClockStretching changes whether the sensor holds SCL low while a
// single-shot or serial-number read is pending. Clock stretching has no
// periodic-command encoding, so changing it never restarts periodic/ART.
func (d *Driver) SetClockStretching(c ClockStretching) Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.measurementRequested && !d.measurementReady {
		return Err(Busy, "measurement in progress")
	}
	if !isValidClockStretching(c) {
		return Err(InvalidParam, "invalid clock stretching")
	}
	d.cfg.ClockStretch = c
	return StatusOK()
}

// SetPeriodicRate changes the periodic sampling cadence. If PERIODIC is
// currently active, the new rate takes effect immediately by restarting it.
// ART has its own fixed cadence and is unaffected.
func (d *Driver) SetPeriodicRate(rate PeriodicRate) Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.measurementRequested && !d.measurementReady {
		return Err(Busy, "measurement in progress")
	}
	if !isValidPeriodicRate(rate) {
		return Err(InvalidParam, "invalid periodic rate")
	}
	d.cfg.PeriodicRate = rate
	if d.mode == ModePeriodic {
		return d.enterPeriodic(rate, d.cfg.Repeatability, false)
	}
	return StatusOK()
}

// StartPeriodic (re)starts PERIODIC acquisition at rate/rep, stopping any
// previous periodic/ART session first via Break.
func (d *Driver) StartPeriodic(rate PeriodicRate, rep Repeatability) Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.measurementRequested && !d.measurementReady {
		return Err(Busy, "measurement in progress")
	}
	return d.enterPeriodic(rate, rep, false)
}

// StartART (re)starts ART acquisition at its fixed 250ms cadence, stopping
// any previous periodic/ART session first via Break.
func (d *Driver) StartART() Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.measurementRequested && !d.measurementReady {
		return Err(Busy, "measurement in progress")
	}
	return d.enterPeriodic(d.cfg.PeriodicRate, d.cfg.Repeatability, true)
}

// StopPeriodic issues Break and returns the driver to SINGLE_SHOT. It is a
// no-op, other than forcing Mode, if periodic/ART was not active.
func (d *Driver) StopPeriodic() Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.measurementRequested && !d.measurementReady {
		return Err(Busy, "measurement in progress")
	}
	return d.stopPeriodicInternal()
}

// Mode returns the driver's current operating mode.
func (d *Driver) Mode() (Mode, Status) {
	if !d.initialized {
		return 0, Err(NotInitialized, "begin() not called")
	}
	return d.mode, StatusOK()
}

// Settings returns a snapshot of the driver's configuration and
// measurement bookkeeping without touching the bus.
func (d *Driver) Settings() (SettingsSnapshot, Status) {
	if !d.initialized {
		return SettingsSnapshot{}, Err(NotInitialized, "begin() not called")
	}
	return SettingsSnapshot{
		Mode:               d.mode,
		Repeatability:      d.cfg.Repeatability,
		PeriodicRate:       d.cfg.PeriodicRate,
		ClockStretch:       d.cfg.ClockStretch,
		PeriodicActive:     d.periodicActive,
		MeasurementPending: d.measurementRequested && !d.measurementReady,
		MeasurementReady:   d.measurementReady,
		MeasurementReadyMs: d.measurementReadyMs,
		SampleTimestampMs:  d.sampleTimestampMs,
		MissedSamples:      d.missedSamples,
	}, StatusOK()
}

// ReadSettings is Settings plus a best-effort status-register read. If the
// status read can't proceed because periodic mode has the bus reserved
// (Busy), ReadSettings still succeeds with RegStatusValid false rather than
// failing the whole snapshot over a read that was never expected to work.
func (d *Driver) ReadSettings() (SettingsSnapshot, Status) {
	out, st := d.Settings()
	if !st.Ok() {
		return out, st
	}

	reg, stStatus := d.ReadStatus()
	if stStatus.Ok() {
		out.RegStatus = reg
		out.RegStatusValid = true
		return out, stStatus
	}
	if stStatus.Code == Busy {
		out.RegStatusValid = false
		return out, StatusOK()
	}
	return out, stStatus
}

// CachedSettings returns the RAM-only mirror of device settings used for
// ResetAndRestore.
func (d *Driver) CachedSettings() CachedSettings { return d.cachedSettings }

// HasCachedSettings reports whether a cache has ever been populated.
func (d *Driver) HasCachedSettings() bool { return d.hasCachedSettings }

// syncCacheFromConfig seeds the settings cache from the configuration that
// just brought the device up. Called once, at the end of a successful
// Begin.
func (d *Driver) syncCacheFromConfig() {
	d.cachedSettings = CachedSettings{
		Mode:          d.cfg.Mode,
		Repeatability: d.cfg.Repeatability,
		PeriodicRate:  d.cfg.PeriodicRate,
		ClockStretch:  d.cfg.ClockStretch,
	}
	d.hasCachedSettings = true
}

// setDefaultsToConfigAndCache clears the settings cache to the library's
// own defaults, used by ResetToDefaults. It does not touch the bus; the
// ladder that precedes it already left the sensor at its own power-on
// defaults.
func (d *Driver) setDefaultsToConfigAndCache() {
	d.cachedSettings = CachedSettings{
		Mode:          ModeSingleShot,
		Repeatability: RepeatabilityHigh,
		PeriodicRate:  RateMPS1,
		ClockStretch:  StretchDisabled,
	}
	d.hasCachedSettings = true
}

// applyCachedSettingsAfterReset replays the settings cache onto a freshly
// recovered sensor in the order ResetAndRestore promises: repeatability,
// clock stretching, and periodic rate are plain config fields with no bus
// traffic of their own, so they're folded in before the heater and alert
// writes that do reach the bus, and the mode (which may itself restart
// periodic/ART acquisition) always runs last.
func (d *Driver) applyCachedSettingsAfterReset() Status {
	cs := d.cachedSettings

	d.cfg.Repeatability = cs.Repeatability
	d.cfg.ClockStretch = cs.ClockStretch
	d.cfg.PeriodicRate = cs.PeriodicRate

	if cs.HeaterEnabled {
		if st := d.SetHeater(true); !st.Ok() {
			return st
		}
	}

	for slot := AlertHighSet; slot <= AlertLowSet; slot++ {
		if !cs.AlertValid[slot] {
			continue
		}
		if st := d.WriteAlertLimitRaw(slot, cs.AlertRaw[slot]); !st.Ok() {
			return st
		}
	}

	switch cs.Mode {
	case ModePeriodic:
		return d.StartPeriodic(cs.PeriodicRate, cs.Repeatability)
	case ModeART:
		return d.StartART()
	default:
		d.mode = ModeSingleShot
		d.cfg.Mode = ModeSingleShot
		return StatusOK()
	}
}
