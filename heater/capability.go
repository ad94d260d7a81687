// Package heater implements the heater controller (spec.md §4.3):
// bang-bang and PID control modes plus Åström–Hägglund relay-feedback
// autotune, driving an on/off heater output from a temperature sensor
// capability. Grounded on original_source/isochron-drivers/src/heater's
// bang_bang/pid/autotune split and on the teacher's core/adc.go
// (oversample + range-check idiom, adapted to sensor-validity reporting)
// and core/gpio.go (DigitalOut on/off idiom, adapted to the heater relay).
package heater

// Output is the capability a heater controller drives: an on/off relay or
// SSR line. Implementations live alongside the board HAL.
type Output interface {
	SetOn(on bool)
}

// TemperatureSensor reads the latest temperature, x10 fixed point (0.1 degC
// resolution). The second return is false if the reading is unusable (open
// or shorted thermistor) — callers must force the heater off and report a
// sensor fault rather than trust a stale or garbage value.
type TemperatureSensor interface {
	ReadTempX10() (tempX10 int16, valid bool)
}
