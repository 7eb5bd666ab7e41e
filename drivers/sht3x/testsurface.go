package sht3x

// This file exposes the package's pure, state-free helpers under names a
// test or a calling application can use directly, without reaching into
// package-private code via a second _test.go file in this package. None of
// these touch the bus, a Driver, or the clock.

// CRC8 computes the SHT3x checksum over data.
func CRC8(data []byte) byte { return crc8(data) }

// ConvertTemperatureC converts a raw 16-bit sample to degrees Celsius.
func ConvertTemperatureC(raw uint16) float32 { return convertTemperatureC(raw) }

// ConvertHumidityPct converts a raw 16-bit sample to percent relative humidity.
func ConvertHumidityPct(raw uint16) float32 { return convertHumidityPct(raw) }

// ConvertTemperatureCx100 converts a raw 16-bit sample to centi-degrees Celsius.
func ConvertTemperatureCx100(raw uint16) int32 { return convertTemperatureCx100(raw) }

// ConvertHumidityPctx100 converts a raw 16-bit sample to centi-percent
// relative humidity.
func ConvertHumidityPctx100(raw uint16) uint32 { return convertHumidityPctx100(raw) }

// PackAlertLimit encodes a physical (temperature, humidity) pair into the
// device's packed alert-limit word.
func PackAlertLimit(temperatureC, humidityPct float32) uint16 {
	return packAlertLimit(temperatureC, humidityPct)
}

// UnpackAlertLimit decodes a packed alert-limit word into approximate
// physical values.
func UnpackAlertLimit(limit uint16) (temperatureC, humidityPct float32) {
	return unpackAlertLimit(limit)
}

// TimeElapsed reports whether target has passed as of now, under wrap-safe
// 32-bit arithmetic.
func TimeElapsed(now, target uint32) bool { return timeElapsed(now, target) }

// EstimateMeasurementTimeMs returns the worst-case conversion time for a
// repeatability setting.
func EstimateMeasurementTimeMs(rep Repeatability, lowVdd bool) uint32 {
	return estimateMeasurementTimeMs(rep, lowVdd)
}

// SelectSingleShotCommand returns the wire command for a single-shot
// measurement at the given repeatability and clock-stretch setting, or 0
// for an invalid combination.
func SelectSingleShotCommand(rep Repeatability, stretch ClockStretching) uint16 {
	return commandForSingleShot(rep, stretch)
}

// SelectPeriodicCommand returns the wire command to start periodic
// acquisition at the given repeatability and rate, or 0 for an invalid
// combination.
func SelectPeriodicCommand(rep Repeatability, rate PeriodicRate) uint16 {
	return commandForPeriodic(rep, rate)
}
