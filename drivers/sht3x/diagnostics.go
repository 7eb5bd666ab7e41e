package sht3x

// ReadStatus reads and parses the sensor's status register. It fails with
// Busy while periodic/ART acquisition owns the bus cadence, matching the
// serial-number and alert-limit reads. (Probe and the recovery probes read
// the status register without this gate.)
func (d *Driver) ReadStatus() (StatusReg, Status) {
	if !d.initialized {
		return StatusReg{}, Err(NotInitialized, "begin() not called")
	}
	if d.periodicActive {
		return StatusReg{}, Err(Busy, "periodic mode active")
	}
	raw, st := d.readStatusRaw(true)
	if !st.Ok() {
		return StatusReg{}, st
	}
	return parseStatusReg(raw), StatusOK()
}

func parseStatusReg(raw uint16) StatusReg {
	return StatusReg{
		Raw:           raw,
		AlertPending:  raw&statusAlertPending != 0,
		HeaterOn:      raw&statusHeaterOn != 0,
		RHAlert:       raw&statusRHAlert != 0,
		TAlert:        raw&statusTAlert != 0,
		ResetDetected: raw&statusResetDetected != 0,
		CommandError:  raw&statusCommandError != 0,
		WriteCRCError: raw&statusWriteCRCError != 0,
	}
}

// ClearStatus clears the sticky bits of the status register (alert,
// reset-detected, command/write-CRC error).
func (d *Driver) ClearStatus() Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.periodicActive {
		return Err(Busy, "periodic mode active")
	}
	return d.writeCommand(cmdClearStatus, true)
}

// SetHeater enables or disables the sensor's built-in heater, used to drive
// off condensation, and records the outcome in the settings cache.
func (d *Driver) SetHeater(enable bool) Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.periodicActive {
		return Err(Busy, "periodic mode active")
	}

	cmd := cmdHeaterOff
	if enable {
		cmd = cmdHeaterOn
	}
	if st := d.writeCommand(cmd, true); !st.Ok() {
		return st
	}
	d.cachedSettings.HeaterEnabled = enable
	return StatusOK()
}

// ReadHeaterStatus reports whether the heater bit is currently set, via a
// full status-register read.
func (d *Driver) ReadHeaterStatus() (bool, Status) {
	reg, st := d.ReadStatus()
	if !st.Ok() {
		return false, st
	}
	return reg.HeaterOn, StatusOK()
}

// softReset issues the soft-reset command and waits out the sensor's
// documented reset delay. It is the second rung of the recovery ladder,
// after the bus reset, and always forces the driver back to SINGLE_SHOT: a soft reset clears the
// sensor's own periodic state, so the driver's bookkeeping must follow.
func (d *Driver) softReset() Status {
	if d.periodicActive {
		if st := d.writeCommand(cmdBreak, true); !st.Ok() {
			return st
		}
	}
	if st := d.writeCommand(cmdSoftReset, true); !st.Ok() {
		return st
	}
	if st := d.waitMs(resetDelayMs); !st.Ok() {
		return st
	}

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
	return StatusOK()
}

// interfaceReset asks the board's bus driver to reset the I2C bus lines
// (clock stretch stuck low, etc). It requires the Transport to implement
// BusResetter, and unlike
// softReset it does not force the mode back to SINGLE_SHOT: a bus reset
// doesn't reset the sensor's internal state machine, so if periodic was
// running it's still running, and only the acquisition-window clock is
// restarted.
func (d *Driver) interfaceReset() Status {
	resetter, ok := d.cfg.Transport.(BusResetter)
	if !ok {
		return Err(Unsupported, "transport has no bus reset")
	}
	if st := resetter.BusReset(); !st.Ok() {
		return st
	}

	d.measurementRequested = false
	d.measurementReady = false
	d.measurementReadyMs = 0
	d.notReadyStartMs = 0
	d.notReadyCount = 0
	if d.periodicActive {
		d.periodicStartMs = nowMs()
		d.lastFetchMs = 0
	}
	return StatusOK()
}

// generalCallReset issues an I2C general call reset (address 0x00, data
// 0x06), which resets every device on the bus, not just this one. It
// requires the caller to have opted in via Config.AllowGeneralCallReset.
func (d *Driver) generalCallReset() Status {
	if !d.cfg.AllowGeneralCallReset {
		return Err(InvalidConfig, "general call reset not allowed")
	}
	if d.periodicActive {
		if st := d.writeCommand(cmdBreak, true); !st.Ok() {
			return st
		}
	}

	buf := [1]byte{generalCallResetByte}
	if st := d.writeRawAddrTracked(generalCallAddress, buf[:]); !st.Ok() {
		return st
	}
	if st := d.waitMs(resetDelayMs); !st.Ok() {
		return st
	}

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
	return StatusOK()
}

// ReadSerialNumber reads the sensor's 32-bit factory serial number.
func (d *Driver) ReadSerialNumber() (uint32, Status) {
	if !d.initialized {
		return 0, Err(NotInitialized, "begin() not called")
	}
	if d.periodicActive {
		return 0, Err(Busy, "periodic mode active")
	}

	cmd := cmdSerialNoStretch
	if d.cfg.ClockStretch == StretchEnabled {
		cmd = cmdSerialStretch
	}
	if st := d.writeCommand(cmd, true); !st.Ok() {
		return 0, st
	}
	var buf [serialDataLen]byte
	if st := d.readAfterCommand(buf[:], true, false); !st.Ok() {
		return 0, st
	}
	if crc8(buf[0:2]) != buf[2] {
		return 0, Err(CRCMismatch, "crc mismatch (serial word 1)")
	}
	if crc8(buf[3:5]) != buf[5] {
		return 0, Err(CRCMismatch, "crc mismatch (serial word 2)")
	}
	word1 := uint32(buf[0])<<8 | uint32(buf[1])
	word2 := uint32(buf[3])<<8 | uint32(buf[4])
	return word1<<16 | word2, StatusOK()
}

// ReadAlertLimitRaw reads back one of the four alert-limit registers as its
// packed 16-bit wire value.
func (d *Driver) ReadAlertLimitRaw(slot AlertSlot) (uint16, Status) {
	if !d.initialized {
		return 0, Err(NotInitialized, "begin() not called")
	}
	if d.periodicActive {
		return 0, Err(Busy, "periodic mode active")
	}

	cmd := commandForAlertRead(slot)
	if cmd == 0 {
		return 0, Err(InvalidParam, "invalid alert slot")
	}
	if st := d.writeCommand(cmd, true); !st.Ok() {
		return 0, st
	}
	var buf [alertDataLen]byte
	if st := d.readAfterCommand(buf[:], true, false); !st.Ok() {
		return 0, st
	}
	if crc8(buf[0:2]) != buf[2] {
		return 0, Err(CRCMismatch, "crc mismatch (alert limit)")
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), StatusOK()
}

// ReadAlertLimit reads and decodes one of the four alert-limit registers
// into engineering units.
func (d *Driver) ReadAlertLimit(slot AlertSlot) (AlertLimit, Status) {
	raw, st := d.ReadAlertLimitRaw(slot)
	if !st.Ok() {
		return AlertLimit{}, st
	}
	t, rh := unpackAlertLimit(raw)
	return AlertLimit{TemperatureC: t, HumidityPct: rh}, StatusOK()
}

// WriteAlertLimitRaw writes a pre-packed 16-bit wire value to one of the
// four alert-limit registers and verifies the write via a status-register
// read, matching the sensor's own write-then-verify contract for these
// commands.
func (d *Driver) WriteAlertLimitRaw(slot AlertSlot, raw uint16) Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	if d.periodicActive {
		return Err(Busy, "periodic mode active")
	}

	cmd := commandForAlertWrite(slot)
	if cmd == 0 {
		return Err(InvalidParam, "invalid alert slot")
	}
	if st := d.writeCommandWithData(cmd, raw, true); !st.Ok() {
		return st
	}

	regRaw, st := d.readStatusRaw(true)
	if !st.Ok() {
		return st
	}
	reg := parseStatusReg(regRaw)
	if reg.WriteCRCError {
		return Err(WriteCRCError, "sensor rejected alert-limit write CRC")
	}
	if reg.CommandError {
		return Err(CommandFailed, "sensor rejected alert-limit write command")
	}

	d.cachedSettings.AlertValid[slot] = true
	d.cachedSettings.AlertRaw[slot] = raw
	return StatusOK()
}

// WriteAlertLimit packs temperatureC/humidityPct and writes them to one of
// the four alert-limit registers.
func (d *Driver) WriteAlertLimit(slot AlertSlot, temperatureC, humidityPct float32) Status {
	raw := packAlertLimit(temperatureC, humidityPct)
	return d.WriteAlertLimitRaw(slot, raw)
}

// DisableAlerts writes the high-set limit to its minimum (0x0000) and the
// low-set limit to its maximum (0xFFFF). The two clear limits are left
// unchanged.
func (d *Driver) DisableAlerts() Status {
	if st := d.WriteAlertLimitRaw(AlertHighSet, 0x0000); !st.Ok() {
		return st
	}
	return d.WriteAlertLimitRaw(AlertLowSet, 0xFFFF)
}
