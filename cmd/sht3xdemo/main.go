// cmd/sht3xdemo/main.go
package main

import (
	"math/rand"
	"time"

	"sht3x/drivers/sht3x"
	"sht3x/errcode"
)

// statusToCode maps a driver Status onto the shared errcode vocabulary, the
// way errcode.MapDriverErr invites a caller to extend its heuristics per
// driver.
func statusToCode(st sht3x.Status) errcode.Code {
	switch st.Code {
	case sht3x.OK:
		return errcode.OK
	case sht3x.Busy, sht3x.InProgress:
		return errcode.Busy
	case sht3x.InvalidConfig, sht3x.InvalidParam:
		return errcode.InvalidParams
	case sht3x.I2CTimeout:
		return errcode.Timeout
	default:
		return errcode.Error
	}
}

func fatal(op string, st sht3x.Status) {
	e := &errcode.E{C: statusToCode(st), Op: op, Msg: st.Msg}
	println("sht3xdemo:", e.Error())
}

// simTransport stands in for a real I2C bus during host development. It
// behaves like a healthy sensor that drifts slowly around room conditions,
// with an occasional dropped ACK to exercise the recovery ladder.
type simTransport struct {
	rng      *rand.Rand
	rawT     uint16
	rawH     uint16
	nackOdds int
}

func (s *simTransport) Write(addr uint16, data []byte, timeoutMs uint32) sht3x.Status {
	if s.rng.Intn(s.nackOdds) == 0 {
		return sht3x.Err(sht3x.I2CNackAddr, "simulated nack")
	}
	return sht3x.StatusOK()
}

func (s *simTransport) WriteRead(addr uint16, tx, rx []byte, timeoutMs uint32) sht3x.Status {
	if s.rng.Intn(s.nackOdds) == 0 {
		return sht3x.Err(sht3x.I2CNackRead, "simulated nack")
	}
	if len(rx) == 3 {
		// Status register read: all bits clear.
		rx[0], rx[1] = 0, 0
		rx[2] = sht3x.CRC8(rx[0:2])
		return sht3x.StatusOK()
	}
	s.rawT += uint16(s.rng.Intn(7) - 3)
	s.rawH += uint16(s.rng.Intn(7) - 3)
	fillMeasurement(rx, s.rawT, s.rawH)
	return sht3x.StatusOK()
}

// fillMeasurement packs a six-byte SHT3x measurement frame (temperature
// word+CRC, humidity word+CRC) using the package's own exported CRC helper.
func fillMeasurement(buf []byte, rawT, rawH uint16) {
	if len(buf) < 6 {
		return
	}
	buf[0] = byte(rawT >> 8)
	buf[1] = byte(rawT)
	buf[2] = sht3x.CRC8(buf[0:2])
	buf[3] = byte(rawH >> 8)
	buf[4] = byte(rawH)
	buf[5] = sht3x.CRC8(buf[3:5])
}

func main() {
	time.Sleep(200 * time.Millisecond)
	println("sht3xdemo: boot")

	sim := &simTransport{rng: rand.New(rand.NewSource(1)), rawT: 0x6200, rawH: 0x8500, nackOdds: 25}

	cfg := sht3x.DefaultConfig()
	cfg.Transport = sim
	cfg.Mode = sht3x.ModePeriodic
	cfg.PeriodicRate = sht3x.RateMPS1
	cfg.Capabilities = sht3x.CapReadHeaderNACK | sht3x.CapTimeout

	drv, st := sht3x.New(cfg)
	if !st.Ok() {
		fatal("new", st)
		return
	}

	if st := drv.Begin(); !st.Ok() {
		fatal("begin", st)
		return
	}
	println("sht3xdemo: online, state =", int(drv.State()))

	start := time.Now()
	nowMs := func() uint32 { return uint32(time.Since(start).Milliseconds()) }

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for range tick.C {
		now := nowMs()

		if !drv.MeasurementReady() {
			if st := drv.RequestMeasurement(); st.Code != sht3x.InProgress && st.Code != sht3x.Busy {
				println("sht3xdemo: request measurement failed:", st.Msg)
			}
		}

		if st := drv.Tick(now); !st.Ok() && st.Code != sht3x.Busy {
			println("sht3xdemo: tick error:", st.Msg)
		}

		if !drv.IsOnline() {
			println("sht3xdemo: offline, attempting recovery")
			if st := drv.Recover(now); st.Ok() {
				println("sht3xdemo: recovered")
			} else {
				println("sht3xdemo: recovery failed:", st.Msg)
			}
			continue
		}

		if drv.MeasurementReady() {
			sample, st := drv.GetMeasurement()
			if !st.Ok() {
				println("sht3xdemo: get measurement failed:", st.Msg)
				continue
			}
			println("sht3xdemo: T =", int(sample.TemperatureC*100), "x0.01C  RH =", int(sample.HumidityPct*100), "x0.01%")
		}
	}
}
