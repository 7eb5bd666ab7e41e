package sht3x

import (
	"sync"
	"testing"
)

// fakeTransport is a scripted stand-in for a real bus: it understands the
// handful of command words this package actually issues and answers them
// itself, rather than replaying a fixed byte script. Tests steer its
// behaviour through its fields (online, notReadyCountdown, the
// force* hooks) rather than pre-recording every transaction.
type fakeTransport struct {
	mu sync.Mutex

	online       bool
	capabilities TransportCapability

	lastWriteCmd   uint16
	periodicActive bool

	rawT, rawH uint16
	statusReg  uint16
	serial     uint32
	alertRaw   [4]uint16
	heaterOn   bool

	notReadyCountdown int

	forceWriteStatus     *Status
	forceWriteReadStatus *Status

	busResets  int
	hardResets int
	busResetFails bool
	hardResetFails bool

	writes [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		online: true,
		rawT:   0x6000, // ~20.6 degC
		rawH:   0x8000, // ~50.0 %RH
	}
}

func (f *fakeTransport) Write(addr uint16, data []byte, timeoutMs uint32) Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	f.writes = append(f.writes, cp)

	if !f.online {
		return Err(I2CNackAddr, "device offline")
	}
	if f.forceWriteStatus != nil {
		st := *f.forceWriteStatus
		f.forceWriteStatus = nil
		return st
	}

	if addr == generalCallAddress {
		f.resetDevice()
		return StatusOK()
	}

	switch len(data) {
	case 1:
		if data[0] == generalCallResetByte {
			f.resetDevice()
		}
		return StatusOK()
	case 2:
		cmd := uint16(data[0])<<8 | uint16(data[1])
		f.lastWriteCmd = cmd
		switch cmd {
		case cmdBreak:
			f.periodicActive = false
		case cmdSoftReset:
			f.resetDevice()
		case cmdHeaterOn:
			f.heaterOn = true
			f.statusReg |= statusHeaterOn
		case cmdHeaterOff:
			f.heaterOn = false
			f.statusReg &^= statusHeaterOn
		case cmdClearStatus:
			f.statusReg &^= statusAlertPending | statusResetDetected | statusCommandError | statusWriteCRCError
		case cmdART:
			f.periodicActive = true
		default:
			if isPeriodicStartCmd(cmd) {
				f.periodicActive = true
			}
		}
		return StatusOK()
	case 5:
		cmd := uint16(data[0])<<8 | uint16(data[1])
		f.lastWriteCmd = cmd
		word := uint16(data[2])<<8 | uint16(data[3])
		if slot, ok := alertWriteSlot(cmd); ok {
			f.alertRaw[slot] = word
		}
		return StatusOK()
	default:
		return Err(InvalidParam, "unscripted write length")
	}
}

func (f *fakeTransport) WriteRead(addr uint16, tx, rx []byte, timeoutMs uint32) Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.online {
		return Err(I2CNackAddr, "device offline")
	}
	if f.forceWriteReadStatus != nil {
		st := *f.forceWriteReadStatus
		f.forceWriteReadStatus = nil
		return st
	}

	switch f.lastWriteCmd {
	case cmdReadStatus:
		putWord(rx, f.statusReg)
		return StatusOK()
	case cmdFetchData:
		if f.notReadyCountdown > 0 {
			f.notReadyCountdown--
			return Err(I2CNackRead, "not ready")
		}
		putMeasurement(rx, f.rawT, f.rawH)
		return StatusOK()
	case cmdSerialStretch, cmdSerialNoStretch:
		putWord(rx[0:3], uint16(f.serial>>16))
		putWord(rx[3:6], uint16(f.serial))
		return StatusOK()
	case cmdAlertReadHighSet:
		putWord(rx, f.alertRaw[AlertHighSet])
		return StatusOK()
	case cmdAlertReadHighClear:
		putWord(rx, f.alertRaw[AlertHighClear])
		return StatusOK()
	case cmdAlertReadLowClear:
		putWord(rx, f.alertRaw[AlertLowClear])
		return StatusOK()
	case cmdAlertReadLowSet:
		putWord(rx, f.alertRaw[AlertLowSet])
		return StatusOK()
	default:
		if isSingleShotCmd(f.lastWriteCmd) {
			putMeasurement(rx, f.rawT, f.rawH)
			return StatusOK()
		}
		return Err(I2CError, "unscripted read")
	}
}

func (f *fakeTransport) BusReset() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busResets++
	if f.busResetFails {
		return Err(I2CError, "bus reset failed")
	}
	return StatusOK()
}

func (f *fakeTransport) HardReset() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hardResets++
	if f.hardResetFails {
		return Err(I2CError, "hard reset failed")
	}
	return StatusOK()
}

func (f *fakeTransport) resetDevice() {
	f.periodicActive = false
	f.statusReg = 0
	f.heaterOn = false
}

func (f *fakeTransport) goOffline() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = false
}

func (f *fakeTransport) goOnline() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = true
}

func putWord(buf []byte, word uint16) {
	buf[0] = byte(word >> 8)
	buf[1] = byte(word)
	buf[2] = crc8(buf[0:2])
}

func putMeasurement(buf []byte, rawT, rawH uint16) {
	buf[0] = byte(rawT >> 8)
	buf[1] = byte(rawT)
	buf[2] = crc8(buf[0:2])
	buf[3] = byte(rawH >> 8)
	buf[4] = byte(rawH)
	buf[5] = crc8(buf[3:5])
}

func isSingleShotCmd(cmd uint16) bool {
	switch cmd {
	case cmdSingleShotStretchHigh, cmdSingleShotStretchMed, cmdSingleShotStretchLow,
		cmdSingleShotNoStretchHigh, cmdSingleShotNoStretchMed, cmdSingleShotNoStretchLow:
		return true
	default:
		return false
	}
}

func isPeriodicStartCmd(cmd uint16) bool {
	switch cmd {
	case cmdPeriodic05High, cmdPeriodic05Med, cmdPeriodic05Low,
		cmdPeriodic1High, cmdPeriodic1Med, cmdPeriodic1Low,
		cmdPeriodic2High, cmdPeriodic2Med, cmdPeriodic2Low,
		cmdPeriodic4High, cmdPeriodic4Med, cmdPeriodic4Low,
		cmdPeriodic10High, cmdPeriodic10Med, cmdPeriodic10Low:
		return true
	default:
		return false
	}
}

func alertWriteSlot(cmd uint16) (AlertSlot, bool) {
	switch cmd {
	case cmdAlertWriteHighSet:
		return AlertHighSet, true
	case cmdAlertWriteHighClear:
		return AlertHighClear, true
	case cmdAlertWriteLowClear:
		return AlertLowClear, true
	case cmdAlertWriteLowSet:
		return AlertLowSet, true
	default:
		return 0, false
	}
}

func newTestDriver(t *testing.T, configure func(*Config)) (*Driver, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport()
	cfg := DefaultConfig()
	cfg.Transport = tr
	cfg.Capabilities = CapReadHeaderNACK
	cfg.I2CTimeoutMs = 200
	if configure != nil {
		configure(&cfg)
	}
	drv, st := New(cfg)
	if !st.Ok() {
		t.Fatalf("New failed: %v", st)
	}
	return drv, tr
}
