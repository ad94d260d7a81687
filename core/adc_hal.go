package core

// ADCChannelID identifies a hardware-enumerated analog input channel.
type ADCChannelID uint32

// ADCValue is a raw sample (typically 12-bit, 0-4095).
type ADCValue uint16

// ADCConfig holds setup parameters for the ADC peripheral as a whole.
type ADCConfig struct {
	// Reference is the ADC reference voltage in millivolts. Zero means
	// use the platform default.
	Reference uint32
}

// ADCDriver is the abstract ADC interface that core code uses.
// Platform-specific implementations handle actual hardware sampling.
type ADCDriver interface {
	// Init configures the ADC peripheral.
	Init(cfg ADCConfig) error

	// ConfigureChannel prepares a specific channel for sampling (pin mux,
	// internal sensor enable, and so on).
	ConfigureChannel(ch ADCChannelID) error

	// ReadRaw returns a single raw sample from ch.
	ReadRaw(ch ADCChannelID) (ADCValue, error)
}

// Global singleton used by core code.
var adcDriver ADCDriver

// SetADCDriver is called by target-specific code to register its driver.
func SetADCDriver(d ADCDriver) {
	adcDriver = d
}

// MustADC returns the configured driver or panics if missing.
func MustADC() ADCDriver {
	if adcDriver == nil {
		panic("ADC driver not configured")
	}
	return adcDriver
}
