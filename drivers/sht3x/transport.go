package sht3x

import "tinygo.org/x/drivers"

// Transport is the I2C boundary this driver consumes. It deliberately
// mirrors the two-callback shape of the original C `I2cWriteFn` /
// `I2cWriteReadFn` pointers rather than a single combined Tx method: the
// command engine never mixes a write and a read in one bus transaction for
// a device-read flow, and a two-method interface makes that invariant
// visible in the type rather than relying on a convention over arguments.
//
// WriteRead MUST be called with len(tx) == 0 for every call this driver
// makes; a Transport implementation that receives tx with non-zero length
// is free to return InvalidParam.
type Transport interface {
	// Write transmits data to addr, address+W, STOP. Expected result codes:
	// OK, I2CNackAddr, I2CNackData, I2CTimeout, I2CBus, I2CError, InvalidParam.
	Write(addr uint16, data []byte, timeoutMs uint32) Status
	// WriteRead performs a pure read (tx always empty) from addr. In
	// addition to the Write codes it may return I2CNackRead, but only a
	// transport that declares CapReadHeaderNACK may be trusted to mean it.
	WriteRead(addr uint16, tx, rx []byte, timeoutMs uint32) Status
}

// BusResetter is an optional Transport capability: a callback that performs
// an opaque bus-level recovery action (e.g. an SCL clock-out sequence) to
// free a peripheral holding SDA low.
type BusResetter interface {
	BusReset() Status
}

// HardResetter is an optional Transport capability: a callback that performs
// an opaque hardware reset of the device (e.g. toggling a reset GPIO).
type HardResetter interface {
	HardReset() Status
}

// i2cBridge adapts a tinygo.org/x/drivers.I2C bus onto Transport. It never
// issues a combined write+read Tx call, preserving this driver's no-
// repeated-start invariant even though drivers.I2C.Tx could support one.
type i2cBridge struct {
	bus drivers.I2C
}

// NewI2CBridge wraps a generic tinygo I2C bus as a Transport. The returned
// Transport declares no capabilities: drivers.I2C.Tx returns an opaque
// error, so the bridge cannot distinguish a "not ready" NACK from any other
// bus fault and must not claim it can.
func NewI2CBridge(bus drivers.I2C) Transport {
	return &i2cBridge{bus: bus}
}

func (t *i2cBridge) Write(addr uint16, data []byte, timeoutMs uint32) Status {
	if len(data) == 0 {
		return Err(InvalidParam, "empty write")
	}
	if err := t.bus.Tx(addr, data, nil); err != nil {
		return Err(I2CError, "i2c write failed")
	}
	return StatusOK()
}

func (t *i2cBridge) WriteRead(addr uint16, tx, rx []byte, timeoutMs uint32) Status {
	if len(tx) != 0 {
		return Err(InvalidParam, "combined write+read not supported by this core")
	}
	if len(rx) == 0 {
		return Err(InvalidParam, "empty read")
	}
	if err := t.bus.Tx(addr, nil, rx); err != nil {
		return Err(I2CError, "i2c read failed")
	}
	return StatusOK()
}
