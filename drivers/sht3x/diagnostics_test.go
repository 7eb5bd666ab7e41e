package sht3x

import "testing"

func TestReadStatusParsesBits(t *testing.T) {
	drv, tr := newTestDriver(t, nil)
	if st := drv.Begin(); !st.Ok() {
		t.Fatalf("Begin: %v", st)
	}
	tr.statusReg = statusHeaterOn | statusTAlert

	reg, st := drv.ReadStatus()
	if !st.Ok() {
		t.Fatalf("ReadStatus: %v", st)
	}
	if !reg.HeaterOn || !reg.TAlert || reg.RHAlert || reg.AlertPending {
		t.Fatalf("unexpected parsed bits: %+v", reg)
	}
}

func TestReadStatusBusyDuringPeriodic(t *testing.T) {
	drv, _ := newTestDriver(t, func(c *Config) { c.Mode = ModePeriodic })
	if st := drv.Begin(); !st.Ok() {
		t.Fatalf("Begin: %v", st)
	}
	if _, st := drv.ReadStatus(); st.Code != Busy {
		t.Fatalf("ReadStatus during periodic = %v, want Busy", st)
	}
}

func TestWriteAndReadAlertLimitRoundTrip(t *testing.T) {
	drv, _ := newTestDriver(t, nil)
	if st := drv.Begin(); !st.Ok() {
		t.Fatalf("Begin: %v", st)
	}
	if st := drv.WriteAlertLimit(AlertHighSet, 55.0, 80.0); !st.Ok() {
		t.Fatalf("WriteAlertLimit: %v", st)
	}
	got, st := drv.ReadAlertLimit(AlertHighSet)
	if !st.Ok() {
		t.Fatalf("ReadAlertLimit: %v", st)
	}
	if got.TemperatureC < 50 || got.TemperatureC > 60 {
		t.Errorf("round-tripped temperature out of expected band: %v", got.TemperatureC)
	}
	if got.HumidityPct < 75 || got.HumidityPct > 85 {
		t.Errorf("round-tripped humidity out of expected band: %v", got.HumidityPct)
	}
}

func TestWriteAlertLimitDetectsCRCRejection(t *testing.T) {
	drv, tr := newTestDriver(t, nil)
	if st := drv.Begin(); !st.Ok() {
		t.Fatalf("Begin: %v", st)
	}
	tr.statusReg = statusWriteCRCError

	st := drv.WriteAlertLimit(AlertLowSet, 0, 50)
	if st.Code != WriteCRCError {
		t.Fatalf("WriteAlertLimit = %v, want WriteCRCError", st)
	}
}

func TestDisableAlertsWritesBothExtremes(t *testing.T) {
	drv, tr := newTestDriver(t, nil)
	if st := drv.Begin(); !st.Ok() {
		t.Fatalf("Begin: %v", st)
	}
	if st := drv.DisableAlerts(); !st.Ok() {
		t.Fatalf("DisableAlerts: %v", st)
	}
	if tr.alertRaw[AlertHighSet] != 0x0000 || tr.alertRaw[AlertLowSet] != 0xFFFF {
		t.Fatalf("unexpected disabled alert raw values: high=%#04x low=%#04x",
			tr.alertRaw[AlertHighSet], tr.alertRaw[AlertLowSet])
	}
}

func TestReadSerialNumber(t *testing.T) {
	drv, tr := newTestDriver(t, nil)
	if st := drv.Begin(); !st.Ok() {
		t.Fatalf("Begin: %v", st)
	}
	tr.serial = 0x12345678

	serial, st := drv.ReadSerialNumber()
	if !st.Ok() {
		t.Fatalf("ReadSerialNumber: %v", st)
	}
	if serial != 0x12345678 {
		t.Fatalf("ReadSerialNumber = %#08x, want %#08x", serial, uint32(0x12345678))
	}
}

func TestInterfaceResetPreservesPeriodicMode(t *testing.T) {
	drv, _ := newTestDriver(t, func(c *Config) {
		c.Mode = ModePeriodic
		c.PeriodicRate = RateMPS1
	})
	if st := drv.Begin(); !st.Ok() {
		t.Fatalf("Begin: %v", st)
	}

	if st := drv.interfaceReset(); !st.Ok() {
		t.Fatalf("interfaceReset: %v", st)
	}
	mode, st := drv.Mode()
	if !st.Ok() || mode != ModePeriodic {
		t.Fatalf("interfaceReset must not force SINGLE_SHOT, mode = %v/%v", mode, st)
	}
}

func TestSoftResetForcesSingleShot(t *testing.T) {
	drv, _ := newTestDriver(t, func(c *Config) {
		c.Mode = ModePeriodic
		c.PeriodicRate = RateMPS1
	})
	if st := drv.Begin(); !st.Ok() {
		t.Fatalf("Begin: %v", st)
	}

	if st := drv.softReset(); !st.Ok() {
		t.Fatalf("softReset: %v", st)
	}
	mode, st := drv.Mode()
	if !st.Ok() || mode != ModeSingleShot {
		t.Fatalf("softReset must force SINGLE_SHOT, mode = %v/%v", mode, st)
	}
}
