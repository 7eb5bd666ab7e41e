package sht3x

import "testing"

func TestCRC8KnownVectors(t *testing.T) {
	// From the sensor datasheet's own worked example: 0xBEEF -> CRC 0x92.
	if got := crc8([]byte{0xBE, 0xEF}); got != 0x92 {
		t.Fatalf("crc8(0xBEEF) = 0x%02X, want 0x92", got)
	}
}

func TestConvertTemperatureCx100(t *testing.T) {
	cases := []struct {
		raw      uint16
		wantX100 int32
	}{
		{0, -4500},
		{65535, 13000},
		{32768, 4250}, // -45 + 175*32768/65535 ~= 42.50
	}
	for _, c := range cases {
		got := convertTemperatureCx100(c.raw)
		if got != c.wantX100 {
			t.Errorf("convertTemperatureCx100(%d) = %d, want %d", c.raw, got, c.wantX100)
		}
	}
}

func TestConvertHumidityPctx100(t *testing.T) {
	cases := []struct {
		raw     uint16
		wantX100 uint32
	}{
		{0, 0},
		{65535, 10000},
		{32768, 5000},
	}
	for _, c := range cases {
		got := convertHumidityPctx100(c.raw)
		if got != c.wantX100 {
			t.Errorf("convertHumidityPctx100(%d) = %d, want %d", c.raw, got, c.wantX100)
		}
	}
}

func TestAlertLimitPackUnpackIsLossyButBounded(t *testing.T) {
	cases := []struct {
		temperatureC, humidityPct float32
	}{
		{25.0, 50.0},
		{-45.0, 0.0},
		{130.0, 100.0},
		{200.0, 150.0}, // out of range, must clamp rather than overflow
	}
	for _, c := range cases {
		raw := packAlertLimit(c.temperatureC, c.humidityPct)
		gotT, gotH := unpackAlertLimit(raw)
		if gotT < -45.5 || gotT > 130.5 {
			t.Errorf("unpackAlertLimit temperature out of range: %v", gotT)
		}
		if gotH < -0.5 || gotH > 100.5 {
			t.Errorf("unpackAlertLimit humidity out of range: %v", gotH)
		}
	}
}

func TestEstimateMeasurementTimeMs(t *testing.T) {
	if got := estimateMeasurementTimeMs(RepeatabilityHigh, false); got != 16 {
		t.Errorf("estimateMeasurementTimeMs(High, normal) = %d, want 16", got)
	}
	if got := estimateMeasurementTimeMs(RepeatabilityLow, true); got != 6 {
		t.Errorf("estimateMeasurementTimeMs(Low, lowVdd) = %d, want 6", got)
	}
}

func TestCommandSelection(t *testing.T) {
	if cmd := commandForSingleShot(RepeatabilityHigh, StretchEnabled); cmd != cmdSingleShotStretchHigh {
		t.Errorf("commandForSingleShot(High, stretch) = 0x%04X, want 0x%04X", cmd, cmdSingleShotStretchHigh)
	}
	if cmd := commandForPeriodic(RepeatabilityMedium, RateMPS4); cmd != cmdPeriodic4Med {
		t.Errorf("commandForPeriodic(Medium, 4mps) = 0x%04X, want 0x%04X", cmd, cmdPeriodic4Med)
	}
	if cmd := commandForSingleShot(Repeatability(0xFF), StretchDisabled); cmd != 0 {
		t.Errorf("commandForSingleShot with invalid repeatability = 0x%04X, want 0", cmd)
	}
}
