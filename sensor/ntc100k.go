// Package sensor implements a concrete heater.TemperatureSensor: an NTC
// 100K thermistor read through a pull-up divider and converted to a
// temperature via an integer-only lookup table with linear interpolation
// (spec.md §4.3's "x10 fixed point temperature sensor"). Grounded directly
// on original_source/isochron-drivers/src/sensor/ntc100k.rs, translated
// into the teacher's ADC-reader-capability idiom (core/adc.go's
// oversample-then-range-check shape) rather than the original's ADC trait.
package sensor

import "fmt"

// AdcReader reads a raw ADC sample (typically 12-bit, 0-4095).
type AdcReader interface {
	ReadRaw() (uint16, error)
}

// tempTableEntry pairs a resistance in ohms with a temperature in x10
// degrees C. Sorted by decreasing resistance (increasing temperature).
type tempTableEntry struct {
	ohms   uint32
	tempX10 int16
}

// tempTable is a resistance curve for an NTC thermistor of 100k at 25C,
// covering -20C to 150C.
var tempTable = []tempTableEntry{
	{1_750_000, -200},
	{1_000_000, -100},
	{600_000, 0},
	{350_000, 100},
	{200_000, 200},
	{100_000, 250},
	{80_000, 300},
	{55_000, 400},
	{40_000, 450},
	{30_000, 500},
	{25_000, 550},
	{18_000, 600},
	{12_000, 700},
	{8_000, 800},
	{5_500, 900},
	{4_000, 1000},
	{2_000, 1200},
	{1_000, 1500},
}

// NTC100K reads an NTC 100K thermistor wired VCC -- pullup -- ADC_PIN --
// NTC -- GND.
type NTC100K struct {
	adc        AdcReader
	pullupOhms uint32
	adcMax     uint16
}

// NewNTC100K builds an NTC100K sensor. pullupOhms is the pull-up resistor
// value (typically 4700 for a 3.3V system); adcMax is the ADC's full-scale
// value (4095 for a 12-bit ADC).
func NewNTC100K(adc AdcReader, pullupOhms uint32, adcMax uint16) *NTC100K {
	return &NTC100K{adc: adc, pullupOhms: pullupOhms, adcMax: adcMax}
}

// adcToResistance converts a raw ADC sample to a thermistor resistance in
// ohms, reporting an error for an out-of-range (open/short) reading.
func (n *NTC100K) adcToResistance(adcValue uint16) (uint32, error) {
	if adcValue >= n.adcMax-10 {
		return 0, fmt.Errorf("sensor: open circuit (adc=%d)", adcValue)
	}
	if adcValue < 10 {
		return 0, fmt.Errorf("sensor: short circuit (adc=%d)", adcValue)
	}
	numerator := uint64(n.pullupOhms) * uint64(adcValue)
	denominator := uint64(n.adcMax - adcValue)
	return uint32(numerator / denominator), nil
}

// resistanceToTempX10 converts a resistance to a temperature in x10
// degrees C via linear interpolation over tempTable.
func resistanceToTempX10(ohms uint32) (int16, error) {
	if ohms > tempTable[0].ohms || ohms < tempTable[len(tempTable)-1].ohms {
		return 0, fmt.Errorf("sensor: resistance %d ohms out of table range", ohms)
	}
	for i := 0; i < len(tempTable)-1; i++ {
		rHigh, tLow := tempTable[i].ohms, tempTable[i].tempX10
		rLow, tHigh := tempTable[i+1].ohms, tempTable[i+1].tempX10
		if ohms <= rHigh && ohms >= rLow {
			rRange := int32(rHigh - rLow)
			tRange := int32(tHigh - tLow)
			rOffset := int32(rHigh - ohms)
			return tLow + int16(tRange*rOffset/rRange), nil
		}
	}
	return 0, fmt.Errorf("sensor: resistance %d ohms not found in table", ohms)
}

// ReadTempX10 implements heater.TemperatureSensor.
func (n *NTC100K) ReadTempX10() (tempX10 int16, valid bool) {
	raw, err := n.adc.ReadRaw()
	if err != nil {
		return 0, false
	}
	ohms, err := n.adcToResistance(raw)
	if err != nil {
		return 0, false
	}
	temp, err := resistanceToTempX10(ohms)
	if err != nil {
		return 0, false
	}
	return temp, true
}
