package sht3x

// Repeatability selects the sensor's internal averaging/noise trade-off.
type Repeatability uint8

const (
	RepeatabilityLow Repeatability = iota
	RepeatabilityMedium
	RepeatabilityHigh
)

// ClockStretching selects whether the sensor holds SCL low while a
// single-shot or serial-number read is pending.
type ClockStretching uint8

const (
	StretchDisabled ClockStretching = iota
	StretchEnabled
)

// PeriodicRate selects the periodic/ART sampling cadence in measurements
// per second.
type PeriodicRate uint8

const (
	RateMPS05 PeriodicRate = iota
	RateMPS1
	RateMPS2
	RateMPS4
	RateMPS10
)

// Mode selects the driver's acquisition strategy.
type Mode uint8

const (
	ModeSingleShot Mode = iota
	ModePeriodic
	ModeART
)

func isValidRepeatability(r Repeatability) bool {
	return r == RepeatabilityLow || r == RepeatabilityMedium || r == RepeatabilityHigh
}

func isValidClockStretching(c ClockStretching) bool {
	return c == StretchDisabled || c == StretchEnabled
}

func isValidPeriodicRate(r PeriodicRate) bool {
	switch r {
	case RateMPS05, RateMPS1, RateMPS2, RateMPS4, RateMPS10:
		return true
	default:
		return false
	}
}

func isValidMode(m Mode) bool {
	switch m {
	case ModeSingleShot, ModePeriodic, ModeART:
		return true
	default:
		return false
	}
}

// TransportCapability is a bit in the capability set a Transport declares
// about the diagnostic fidelity it can offer. The driver only trusts a
// capability-gated reinterpretation of a bus error when the transport has
// told it, up front, that it can actually distinguish the case.
type TransportCapability uint8

const (
	// CapReadHeaderNACK means the transport can distinguish a NACK on the
	// address+R byte of a pure read (the device saying "no new sample
	// yet") from other bus faults, and reports it as I2CNackRead.
	CapReadHeaderNACK TransportCapability = 1 << iota
	// CapTimeout means the transport distinguishes a timeout from a bus error.
	CapTimeout
	// CapBusError means the transport distinguishes a bus-level fault
	// (arbitration loss, stuck SDA/SCL) from a plain NACK.
	CapBusError
)

func hasCapability(set, cap TransportCapability) bool { return set&cap != 0 }

// Config configures a Driver. Built with DefaultConfig and then adjusted by
// the caller; validated by Validate, and again implicitly by Begin.
type Config struct {
	// Transport settings.
	Address      uint16
	Transport    Transport
	Capabilities TransportCapability

	// Measurement settings.
	Repeatability Repeatability
	ClockStretch  ClockStretching
	PeriodicRate  PeriodicRate
	Mode          Mode
	LowVdd        bool

	// Timing.
	I2CTimeoutMs    uint32
	CommandDelayMs  uint16
	NotReadyTimeoutMs uint32
	PeriodicFetchMarginMs uint32
	RecoverBackoffMs uint32

	// Safety / health.
	OfflineThreshold    uint8
	AllowGeneralCallReset bool
	RecoverUseBusReset  bool
	RecoverUseSoftReset bool
	RecoverUseHardReset bool
}

const minCommandDelayMs uint16 = 1

// DefaultConfig returns a Config with the datasheet-recommended and
// conservative driver defaults. Transport must still be set by the caller;
// Address defaults to AddressLow and everything else is usable as-is.
func DefaultConfig() Config {
	return Config{
		Address:         AddressLow,
		Repeatability:   RepeatabilityHigh,
		ClockStretch:    StretchDisabled,
		PeriodicRate:    RateMPS1,
		Mode:            ModeSingleShot,
		I2CTimeoutMs:    50,
		CommandDelayMs:  1,
		OfflineThreshold: 5,
		RecoverUseBusReset:  true,
		RecoverUseSoftReset: true,
		RecoverUseHardReset: true,
	}
}

// Validate reports whether the configuration is well-formed. It never
// touches the bus.
func (c Config) Validate() Status {
	if c.Transport == nil {
		return Err(InvalidConfig, "transport not set")
	}
	if c.I2CTimeoutMs == 0 {
		return Err(InvalidConfig, "i2c timeout must be > 0")
	}
	if c.Address != AddressLow && c.Address != AddressHigh {
		return Err(InvalidConfig, "invalid i2c address")
	}
	if !isValidRepeatability(c.Repeatability) || !isValidClockStretching(c.ClockStretch) ||
		!isValidPeriodicRate(c.PeriodicRate) || !isValidMode(c.Mode) {
		return Err(InvalidConfig, "invalid configuration value")
	}
	return StatusOK()
}

// normalize fills in the two self-healing fields the original fixes up
// silently rather than rejecting: a zero offline threshold is raised to 1,
// the lowest meaningful value (OFFLINE on the first tracked failure), and a
// sub-minimum command delay, which would violate tIDLE outright, is raised
// to the minimum.
func (c Config) normalize() Config {
	if c.OfflineThreshold == 0 {
		c.OfflineThreshold = 1
	}
	if c.CommandDelayMs < minCommandDelayMs {
		c.CommandDelayMs = minCommandDelayMs
	}
	return c
}
