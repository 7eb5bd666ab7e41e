package sht3x

// This file funnels every byte the driver puts on or takes off the bus
// through two layers: a "raw" layer with no health bookkeeping (used by
// Probe, whose result must not move the counters) and a
// "tracked" layer that reports every outcome to updateHealth. The command
// engine above it (writeCommand/writeCommandWithData/readAfterCommand)
// enforces the idle gate and the two-phase write-then-read pattern so no
// caller can accidentally combine them into one bus transaction.

func (d *Driver) writeRaw(buf []byte) Status {
	return d.cfg.Transport.Write(d.cfg.Address, buf, d.cfg.I2CTimeoutMs)
}

func (d *Driver) writeReadRaw(tx, rx []byte) Status {
	return d.cfg.Transport.WriteRead(d.cfg.Address, tx, rx, d.cfg.I2CTimeoutMs)
}

func (d *Driver) writeRawAddr(addr uint16, buf []byte) Status {
	return d.cfg.Transport.Write(addr, buf, d.cfg.I2CTimeoutMs)
}

func (d *Driver) writeRawAddrTracked(addr uint16, buf []byte) Status {
	if len(buf) == 0 {
		return Err(InvalidParam, "invalid i2c buffer")
	}
	return d.updateHealth(d.writeRawAddr(addr, buf))
}

func (d *Driver) writeTracked(buf []byte) Status {
	if len(buf) == 0 {
		return Err(InvalidParam, "invalid i2c buffer")
	}
	return d.updateHealth(d.writeRaw(buf))
}

// writeReadTrackedAllowNoData is the one path where a transport error can
// be reinterpreted rather than reported as-is: a pure read that NACKs at
// the header is "no new sample yet" rather than a bus fault, but only when
// both the caller opted in (allowNoData) and the transport declared it can
// actually tell the difference (CapReadHeaderNACK). Without the capability,
// the same NACK is remapped to I2CError before health update instead — a
// transport that cannot prove "not ready" must not be trusted to claim it.
func (d *Driver) writeReadTrackedAllowNoData(rx []byte, allowNoData bool) Status {
	if len(rx) == 0 {
		return Err(InvalidParam, "invalid i2c buffer")
	}

	canReportNack := hasCapability(d.cfg.Capabilities, CapReadHeaderNACK)
	allow := allowNoData && canReportNack

	st := d.writeReadRaw(nil, rx)
	if allow && st.Code == I2CNackRead {
		recordBusActivity(&d.health, nowMs())
		return Err(MeasurementNotReady, "no new data", st.Detail)
	}
	if !canReportNack && st.Code == I2CNackRead {
		st = Err(I2CError, "read-header NACK on a transport without that capability", st.Detail)
	}
	return d.updateHealth(st)
}

// writeCommand enforces the idle gate, transmits a bare 16-bit command
// MSB-first, and records the write's timestamp for the next gate check.
func (d *Driver) writeCommand(cmd uint16, tracked bool) Status {
	if st := d.ensureCommandDelay(); !st.Ok() {
		return st
	}

	buf := [2]byte{byte(cmd >> 8), byte(cmd)}
	var st Status
	if tracked {
		st = d.writeTracked(buf[:])
	} else {
		st = d.writeRaw(buf[:])
	}
	if !st.Ok() {
		return st
	}
	d.lastCommandUs = nowUs()
	return StatusOK()
}

// writeCommandWithData is writeCommand plus a 16-bit data word and its
// CRC-8, used only by the alert-limit writes.
func (d *Driver) writeCommandWithData(cmd, data uint16, tracked bool) Status {
	if st := d.ensureCommandDelay(); !st.Ok() {
		return st
	}

	var payload [maxWriteLen]byte
	payload[0] = byte(cmd >> 8)
	payload[1] = byte(cmd)
	payload[2] = byte(data >> 8)
	payload[3] = byte(data)
	payload[4] = crc8(payload[2:4])

	var st Status
	if tracked {
		st = d.writeTracked(payload[:])
	} else {
		st = d.writeRaw(payload[:])
	}
	if !st.Ok() {
		return st
	}
	d.lastCommandUs = nowUs()
	return StatusOK()
}

// readAfterCommand enforces the idle gate then performs a pure read. Used
// after every writeCommand that expects a response.
func (d *Driver) readAfterCommand(buf []byte, tracked, allowNoData bool) Status {
	if len(buf) == 0 {
		return Err(InvalidParam, "invalid read buffer")
	}
	if st := d.ensureCommandDelay(); !st.Ok() {
		return st
	}
	return d.readOnly(buf, tracked, allowNoData)
}

// readOnly is the pure-read transport call, with no command write and no
// idle-gate wait of its own (the caller already waited). Every tracked read
// goes through writeReadTrackedAllowNoData rather than branching on
// allowNoData here: the capability-gated remap of an uncapable transport's
// I2CNackRead to I2CError lives inside that function regardless of
// allowNoData, which only controls whether a capable transport's NACK is
// additionally allowed to mean "not ready yet" right now.
func (d *Driver) readOnly(buf []byte, tracked, allowNoData bool) Status {
	if len(buf) == 0 {
		return Err(InvalidParam, "invalid read buffer")
	}
	if tracked {
		return d.writeReadTrackedAllowNoData(buf, allowNoData)
	}
	return d.writeReadRaw(nil, buf)
}

func (d *Driver) ensureCommandDelay() Status {
	return ensureCommandDelay(d.lastCommandUs, d.cfg.CommandDelayMs, d.cfg.I2CTimeoutMs)
}

func (d *Driver) waitMs(delayMs uint32) Status {
	return waitMs(delayMs, d.cfg.I2CTimeoutMs)
}

// updateHealth routes a tracked transport result through the health
// tracker, using the driver's own state fields.
func (d *Driver) updateHealth(st Status) Status {
	return updateHealth(&d.health, &d.state, d.initialized, d.cfg.OfflineThreshold, st, nowMs())
}
