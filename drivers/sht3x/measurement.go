package sht3x

// readStatusRaw issues CMD_READ_STATUS and returns the checked 16-bit
// status word.
func (d *Driver) readStatusRaw(tracked bool) (uint16, Status) {
	if st := d.writeCommand(cmdReadStatus, tracked); !st.Ok() {
		return 0, st
	}
	var buf [statusDataLen]byte
	if st := d.readAfterCommand(buf[:], tracked, false); !st.Ok() {
		return 0, st
	}
	if crc8(buf[0:2]) != buf[2] {
		return 0, Err(CRCMismatch, "crc mismatch (status)")
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), StatusOK()
}

// readMeasurementRaw reads a 6-byte temperature+humidity frame, each half
// CRC-checked independently.
func (d *Driver) readMeasurementRaw(tracked, allowNoData bool) (RawSample, Status) {
	var buf [measurementDataLen]byte
	if st := d.readAfterCommand(buf[:], tracked, allowNoData); !st.Ok() {
		return RawSample{}, st
	}
	if crc8(buf[0:2]) != buf[2] {
		return RawSample{}, Err(CRCMismatch, "crc mismatch (temperature)")
	}
	if crc8(buf[3:5]) != buf[5] {
		return RawSample{}, Err(CRCMismatch, "crc mismatch (humidity)")
	}
	return RawSample{
		RawTemperature: uint16(buf[0])<<8 | uint16(buf[1]),
		RawHumidity:    uint16(buf[3])<<8 | uint16(buf[4]),
	}, StatusOK()
}

// fetchPeriodic issues Fetch-Data and interprets the result, including the
// not-ready escalation: once a sustained run of "not ready" reads exceeds
// NotReadyTimeoutMs, the next attempt stops allowing the no-data
// reinterpretation and lets the NACK register as a real tracked failure —
// a sensor stuck never-ready for that long is no longer "pending", it's
// unresponsive.
func (d *Driver) fetchPeriodic() Status {
	if !d.periodicActive {
		return Err(InvalidParam, "periodic mode not active")
	}

	if st := d.writeCommand(cmdFetchData, true); !st.Ok() {
		return st
	}

	allowNoData := hasCapability(d.cfg.Capabilities, CapReadHeaderNACK)
	now := nowMs()
	if allowNoData && d.cfg.NotReadyTimeoutMs > 0 && d.notReadyStartMs != 0 {
		deadline := d.notReadyStartMs + d.cfg.NotReadyTimeoutMs
		if timeElapsed(now, deadline) {
			allowNoData = false
		}
	}

	sample, st := d.readMeasurementRaw(true, allowNoData)
	if st.Code == MeasurementNotReady {
		if d.notReadyStartMs == 0 {
			d.notReadyStartMs = now
		}
		if d.notReadyCount < 0xFFFFFFFF {
			d.notReadyCount++
		}
		return st
	}
	d.notReadyStartMs = 0
	d.notReadyCount = 0
	if !st.Ok() {
		return st
	}

	d.rawSample = sample
	d.compSample.TempCx100 = convertTemperatureCx100(sample.RawTemperature)
	d.compSample.HumidityPctx100 = convertHumidityPctx100(sample.RawHumidity)
	return StatusOK()
}

func (d *Driver) startSingleShot() Status {
	if d.periodicActive {
		return Err(Busy, "periodic mode active")
	}
	cmd := commandForSingleShot(d.cfg.Repeatability, d.cfg.ClockStretch)
	if cmd == 0 {
		return Err(InvalidParam, "invalid single-shot configuration")
	}
	return d.writeCommand(cmd, true)
}

// enterPeriodic writes the rate/repeatability (or ART) start command,
// resets periodic bookkeeping, and records the new cadence. If periodic
// mode was already active it stops it first, via Break, to avoid leaving
// the sensor straddling two different periodic rates.
func (d *Driver) enterPeriodic(rate PeriodicRate, rep Repeatability, art bool) Status {
	if !isValidPeriodicRate(rate) || !isValidRepeatability(rep) {
		return Err(InvalidParam, "invalid periodic settings")
	}

	if d.periodicActive {
		if st := d.stopPeriodicInternal(); !st.Ok() {
			return st
		}
	}

	var cmd uint16
	if art {
		cmd = cmdART
	} else {
		cmd = commandForPeriodic(rep, rate)
	}
	if cmd == 0 {
		return Err(InvalidParam, "invalid periodic command")
	}

	if st := d.writeCommand(cmd, true); !st.Ok() {
		return st
	}

	d.measurementRequested = false
	d.measurementReady = false
	d.measurementReadyMs = 0
	d.periodicActive = true
	d.notReadyStartMs = 0
	d.notReadyCount = 0
	d.missedSamples = 0
	if art {
		d.mode = ModeART
		d.periodMs = artPeriodMs
	} else {
		d.mode = ModePeriodic
		d.cfg.PeriodicRate = rate
		d.cfg.Repeatability = rep
		d.periodMs = periodMsForRate(rate)
	}
	d.cfg.Mode = d.mode
	d.periodicStartMs = nowMs()
	d.lastFetchMs = 0
	d.cachedSettings.Mode = d.mode
	if !art {
		d.cachedSettings.PeriodicRate = rate
		d.cachedSettings.Repeatability = rep
	}
	return StatusOK()
}

func (d *Driver) stopPeriodicInternal() Status {
	if !d.periodicActive {
		d.mode = ModeSingleShot
		d.cfg.Mode = ModeSingleShot
		d.cachedSettings.Mode = ModeSingleShot
		d.periodicStartMs = 0
		d.lastFetchMs = 0
		d.periodMs = 0
		d.notReadyStartMs = 0
		d.notReadyCount = 0
		d.missedSamples = 0
		return StatusOK()
	}

	if st := d.writeCommand(cmdBreak, true); !st.Ok() {
		return st
	}
	if st := d.waitMs(breakDelayMs); !st.Ok() {
		return st
	}

	d.measurementRequested = false
	d.measurementReady = false
	d.measurementReadyMs = 0
	d.periodicActive = false
	d.mode = ModeSingleShot
	d.cfg.Mode = ModeSingleShot
	d.cachedSettings.Mode = ModeSingleShot
	d.periodicStartMs = 0
	d.lastFetchMs = 0
	d.periodMs = 0
	d.notReadyStartMs = 0
	d.notReadyCount = 0
	d.missedSamples = 0
	return StatusOK()
}

func (d *Driver) tickSingleShot(nowMs uint32) Status {
	if int32(nowMs-d.measurementReadyMs) < 0 {
		return StatusOK()
	}

	sample, st := d.readMeasurementRaw(true, false)
	if !st.Ok() {
		return st
	}

	d.rawSample = sample
	d.compSample.TempCx100 = convertTemperatureCx100(sample.RawTemperature)
	d.compSample.HumidityPctx100 = convertHumidityPctx100(sample.RawHumidity)

	d.sampleTimestampMs = nowMs
	d.measurementReady = true
	d.measurementRequested = false
	return StatusOK()
}

func (d *Driver) tickPeriodic(nowMs uint32) Status {
	if int32(nowMs-d.measurementReadyMs) < 0 {
		return StatusOK()
	}

	st := d.fetchPeriodic()
	if !st.Ok() {
		if st.Code == MeasurementNotReady {
			d.measurementReadyMs = nowMs + uint32(d.cfg.CommandDelayMs)
		}
		return st
	}

	if d.lastFetchMs != 0 && d.periodMs > 0 {
		elapsed := nowMs - d.lastFetchMs
		if elapsed > d.periodMs {
			missed := elapsed / d.periodMs
			if missed > 0 {
				d.missedSamples += missed - 1
			}
		}
	}

	d.measurementReady = true
	d.measurementRequested = false
	d.lastFetchMs = nowMs
	d.sampleTimestampMs = nowMs
	return StatusOK()
}

// fetchMarginMs returns the configured periodic fetch margin, or the
// default of max(2ms, periodMs/20) when configured is 0 — a small cushion
// so a fetch never lands right at the sensor's own conversion deadline.
func fetchMarginMs(configured, periodMs uint32) uint32 {
	if configured != 0 {
		return configured
	}
	m := periodMs / 20
	if m < 2 {
		m = 2
	}
	return m
}

// RequestMeasurement starts (SINGLE_SHOT) or schedules (PERIODIC/ART) a
// measurement. It never blocks: the result is always InProgress on success,
// with the actual data arriving through a later Tick.
func (d *Driver) RequestMeasurement() Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.measurementRequested && !d.measurementReady {
		return Err(Busy, "measurement in progress")
	}

	d.measurementReady = false

	if d.mode == ModeSingleShot {
		if st := d.startSingleShot(); !st.Ok() {
			return st
		}
		d.measurementRequested = true
		d.measurementReadyMs = nowMs() + estimateMeasurementTimeMs(d.cfg.Repeatability, d.cfg.LowVdd)
		return Err(InProgress, "measurement started")
	}

	if d.mode == ModePeriodic || d.mode == ModeART {
		if !d.periodicActive {
			return Err(InvalidParam, "periodic mode not active")
		}

		now := nowMs()
		anchor := d.periodicStartMs
		if d.lastFetchMs != 0 {
			anchor = d.lastFetchMs
		}
		readyAt := anchor + d.periodMs + fetchMarginMs(d.cfg.PeriodicFetchMarginMs, d.periodMs)
		if timeElapsed(now, readyAt) {
			readyAt = now
		}

		d.measurementRequested = true
		d.measurementReadyMs = readyAt
		return Err(InProgress, "measurement scheduled")
	}

	return Err(InvalidParam, "invalid mode")
}

// MeasurementReady reports whether a completed sample is waiting to be
// collected by GetMeasurement.
func (d *Driver) MeasurementReady() bool { return d.measurementReady }

// GetMeasurement returns the last completed sample as floating-point
// values and clears the ready flag. It returns MeasurementNotReady if no
// sample is waiting.
func (d *Driver) GetMeasurement() (Sample, Status) {
	if !d.initialized {
		return Sample{}, Err(NotInitialized, "begin() not called")
	}
	if !d.measurementReady {
		return Sample{}, Err(MeasurementNotReady, "measurement not ready")
	}

	s := Sample{
		TemperatureC: float32(d.compSample.TempCx100) / 100.0,
		HumidityPct:  float32(d.compSample.HumidityPctx100) / 100.0,
	}
	d.measurementReady = false
	return s, StatusOK()
}

// GetRawSample returns the raw 16-bit readings behind the last completed
// sample. Unlike GetMeasurement, it does not clear the ready flag.
func (d *Driver) GetRawSample() (RawSample, Status) {
	if !d.initialized {
		return RawSample{}, Err(NotInitialized, "begin() not called")
	}
	if !d.measurementReady {
		return RawSample{}, Err(MeasurementNotReady, "measurement not ready")
	}
	return d.rawSample, StatusOK()
}

// GetCompensatedSample returns the fixed-point converted readings behind
// the last completed sample, without clearing the ready flag.
func (d *Driver) GetCompensatedSample() (CompensatedSample, Status) {
	if !d.initialized {
		return CompensatedSample{}, Err(NotInitialized, "begin() not called")
	}
	if !d.measurementReady {
		return CompensatedSample{}, Err(MeasurementNotReady, "measurement not ready")
	}
	return d.compSample, StatusOK()
}

// SampleTimestampMs returns the Tick timestamp of the last completed
// sample, or 0 if none has ever completed.
func (d *Driver) SampleTimestampMs() uint32 { return d.sampleTimestampMs }

// SampleAgeMs returns how old the last completed sample is relative to
// nowMs, or 0 if no sample has ever completed.
func (d *Driver) SampleAgeMs(nowMs uint32) uint32 {
	if d.sampleTimestampMs == 0 {
		return 0
	}
	return nowMs - d.sampleTimestampMs
}

// MissedSamplesEstimate returns a best-effort count of periodic/ART samples
// that were never fetched in time, based on elapsed time versus the
// configured period.
func (d *Driver) MissedSamplesEstimate() uint32 { return d.missedSamples }
