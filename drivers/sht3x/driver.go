// Package sht3x implements a bounded-latency, heap-free driver core for the
// Sensirion SHT3x family of I2C humidity/temperature sensors.
//
// The driver never blocks waiting for a measurement: RequestMeasurement
// starts one and returns immediately with InProgress, and the caller's
// regular Tick(nowMs) call advances the state machine and performs the
// follow-up read once the sensor's conversion time (or the periodic fetch
// window) has elapsed. The handful of calls that legitimately need to wait
// a couple of milliseconds on the wire — resets, Break, alert writes — use
// the bounded waits in timing.go rather than the cooperative Tick path.
//
// The driver talks to the bus only through the Transport interface; wiring
// it to a real bus is the caller's job (see NewI2CBridge for a
// tinygo.org/x/drivers.I2C adaptor, or faketransport_test.go for a scripted
// fake used in this package's own tests).
package sht3x

// RawSample holds the last uncorrected 16-bit readings straight off the wire.
type RawSample struct {
	RawTemperature uint16
	RawHumidity    uint16
}

// CompensatedSample holds fixed-point converted readings: TempCx100 is
// degrees Celsius times 100 (so 2534 means 25.34 degC), HumidityPctx100 is
// percent relative humidity times 100.
type CompensatedSample struct {
	TempCx100       int32
	HumidityPctx100 uint32
}

// Sample is the floating-point measurement result returned by GetMeasurement.
type Sample struct {
	TemperatureC float32
	HumidityPct  float32
}

// StatusReg is the parsed form of the sensor's status register.
type StatusReg struct {
	Raw            uint16
	AlertPending   bool
	HeaterOn       bool
	RHAlert        bool
	TAlert         bool
	ResetDetected  bool
	CommandError   bool
	WriteCRCError  bool
}

// SettingsSnapshot is a point-in-time view of the driver's configuration
// and measurement bookkeeping, with no I2C traffic of its own unless
// obtained via Driver.ReadSettings.
type SettingsSnapshot struct {
	Mode              Mode
	Repeatability     Repeatability
	PeriodicRate      PeriodicRate
	ClockStretch      ClockStretching
	PeriodicActive    bool
	MeasurementPending bool
	MeasurementReady  bool
	MeasurementReadyMs uint32
	SampleTimestampMs uint32
	MissedSamples     uint32
	RegStatus         StatusReg
	RegStatusValid    bool
}

// AlertLimit is an alert-limit register decoded into engineering units.
type AlertLimit struct {
	TemperatureC float32
	HumidityPct  float32
}

// CachedSettings is a RAM-only mirror of device-side configuration, used to
// optionally replay settings onto the sensor after a reset. It is updated
// only after a setting is successfully applied, and is never itself read
// from the device.
type CachedSettings struct {
	Mode          Mode
	Repeatability Repeatability
	PeriodicRate  PeriodicRate
	ClockStretch  ClockStretching
	HeaterEnabled bool
	AlertValid    [4]bool
	AlertRaw      [4]uint16
}

// Driver is a single SHT3x device instance. All of its state lives in this
// struct; there is no global mutable state and no heap allocation on any
// method below Begin.
type Driver struct {
	cfg         Config
	initialized bool
	state       DriverState
	health      Health

	lastCommandUs uint32
	lastRecoverMs uint32

	measurementRequested bool
	measurementReady     bool
	measurementReadyMs   uint32
	periodicStartMs      uint32
	lastFetchMs          uint32
	periodMs             uint32
	sampleTimestampMs    uint32
	missedSamples        uint32
	notReadyStartMs      uint32
	notReadyCount        uint32

	mode           Mode
	periodicActive bool

	rawSample  RawSample
	compSample CompensatedSample

	cachedSettings    CachedSettings
	hasCachedSettings bool
}

// New constructs a Driver from cfg. It never touches the bus and does not
// validate cfg; call Begin to validate the configuration, probe the device
// and bring the driver up.
func New(cfg Config) (*Driver, Status) {
	return &Driver{cfg: cfg.normalize(), state: StateUninit}, StatusOK()
}

// Begin validates the driver's configuration, probes the device, and — if
// the configured Mode is PERIODIC or ART — starts periodic acquisition.
// A configuration error leaves the driver exactly as it was (DriverState
// stays UNINIT, health counters untouched): it never reached the bus. A
// probe failure, by contrast, does reach the bus and does timestamp the
// attempt, but still does not move DriverState off UNINIT or touch the
// failure counters — Begin either fully succeeds or the driver never came
// up, there is no DEGRADED "half a device".
func (d *Driver) Begin() Status {
	d.initialized = false
	d.state = StateUninit
	d.health = Health{}

	d.measurementRequested = false
	d.measurementReady = false
	d.measurementReadyMs = 0
	d.periodicStartMs = 0
	d.lastFetchMs = 0
	d.periodMs = 0
	d.sampleTimestampMs = 0
	d.missedSamples = 0
	d.notReadyStartMs = 0
	d.notReadyCount = 0
	d.lastRecoverMs = 0
	d.rawSample = RawSample{}
	d.compSample = CompensatedSample{}
	d.mode = ModeSingleShot
	d.periodicActive = false
	d.lastCommandUs = 0

	if st := d.cfg.Validate(); !st.Ok() {
		return st
	}
	d.cfg = d.cfg.normalize()

	_, st := d.readStatusRaw(true)
	if !st.Ok() {
		if isI2CFailure(st.Code) {
			return Err(DeviceNotFound, "device not responding", st.Detail)
		}
		return st
	}

	d.mode = d.cfg.Mode
	switch d.mode {
	case ModePeriodic:
		if st := d.enterPeriodic(d.cfg.PeriodicRate, d.cfg.Repeatability, false); !st.Ok() {
			return st
		}
	case ModeART:
		if st := d.enterPeriodic(d.cfg.PeriodicRate, d.cfg.Repeatability, true); !st.Ok() {
			return st
		}
	}

	d.syncCacheFromConfig()
	d.initialized = true
	d.state = StateReady
	return StatusOK()
}

// End returns the driver to the UNINIT state. It does not touch the bus:
// there is nothing to tell an SHT3x about host-side shutdown.
func (d *Driver) End() {
	d.initialized = false
	d.state = StateUninit
}

// Tick drives the cooperative measurement state machine. It performs at
// most one read exchange per call (the single-shot read, or the periodic
// Fetch-Data command and its read) and is idempotent for an unchanged
// nowMs: calling it twice with the same timestamp only drives I/O once. A
// failed attempt stays pending and is retried no sooner than
// CommandDelayMs later.
func (d *Driver) Tick(nowMs uint32) Status {
	if !d.initialized || !d.measurementRequested {
		return StatusOK()
	}

	var st Status
	switch d.mode {
	case ModeSingleShot:
		st = d.tickSingleShot(nowMs)
	case ModePeriodic, ModeART:
		st = d.tickPeriodic(nowMs)
	default:
		return StatusOK()
	}
	if !st.Ok() && st.Code != MeasurementNotReady && d.measurementRequested {
		d.measurementReadyMs = nowMs + uint32(d.cfg.CommandDelayMs)
	}
	return st
}

// Probe checks whether the device responds, without touching the health
// tracker — it is a diagnostic peek, not part of the operational health
// signal that drives DriverState.
func (d *Driver) Probe() Status {
	if !d.initialized {
		return Err(NotInitialized, "begin() not called")
	}
	_, st := d.readStatusRaw(false)
	if !st.Ok() {
		if isI2CFailure(st.Code) {
			return Err(DeviceNotFound, "device not responding", st.Detail)
		}
		return st
	}
	return StatusOK()
}

// State returns the current DriverState.
func (d *Driver) State() DriverState { return d.state }

// IsOnline reports whether the driver is fit to be used: READY or
// DEGRADED both still accept calls, only OFFLINE means give up without
// calling Recover first.
func (d *Driver) IsOnline() bool {
	return d.state == StateReady || d.state == StateDegraded
}

// Health returns a copy of the driver's running reliability counters.
func (d *Driver) Health() Health { return d.health }

// LastError returns the most recently recorded failure Status.
func (d *Driver) LastError() Status { return d.health.LastError }

// LastBusActivityMs returns the timestamp of the most recent bus activity,
// including an expected "not ready" NACK.
func (d *Driver) LastBusActivityMs() uint32 { return d.health.LastBusActivityMs }
