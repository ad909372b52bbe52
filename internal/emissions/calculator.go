// Package emissions converts elapsed work time and per-component power draw
// into a CO2-equivalent mass.
package emissions

// CarbonIntensity converts an energy figure into kilograms of CO2-equivalent.
// The value is a fixed regional average and is calibrated against the energy
// scale produced by Energy below; changing either side alone would skew every
// stored total.
const CarbonIntensity = 0.475

// PowerDraw is the resolved per-component wattage for a device. PSU is zero
// for mobile devices; for desktops it is the rated supply wattage added as a
// flat contribution.
type PowerDraw struct {
	CPU float64
	GPU float64
	RAM float64
	PSU float64
}

// Total sums all component contributions in watts.
func (d PowerDraw) Total() float64 {
	return d.CPU + d.GPU + d.RAM + d.PSU
}

// Energy returns the energy consumed over elapsedSeconds of activity.
// The divisor converts watt-seconds to watt-hours; the result feeds
// CarbonIntensity, which expects exactly this scale. elapsedSeconds must be
// non-negative.
func Energy(draw PowerDraw, elapsedSeconds int64) float64 {
	return draw.Total() * float64(elapsedSeconds) / 3600
}

// Emissions returns the kilograms of CO2-equivalent for elapsedSeconds of
// activity at the given draw. No rounding is applied; display rounding is a
// presentation concern.
func Emissions(draw PowerDraw, elapsedSeconds int64) float64 {
	return Energy(draw, elapsedSeconds) * CarbonIntensity
}
