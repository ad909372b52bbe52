package emissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmissions_DesktopHourScenario(t *testing.T) {
	// Desktop profile: CPU 65 W, GPU 120 W, RAM 5 W, PSU 550 W flat, one hour.
	draw := PowerDraw{CPU: 65, GPU: 120, RAM: 5, PSU: 550}

	assert.Equal(t, 740.0, draw.Total())
	assert.Equal(t, 740.0, Energy(draw, 3600))
	assert.InDelta(t, 351.5, Emissions(draw, 3600), 1e-9)
}

func TestEmissions_ZeroElapsed(t *testing.T) {
	draw := PowerDraw{CPU: 65, GPU: 120, RAM: 5, PSU: 550}
	assert.Equal(t, 0.0, Emissions(draw, 0))
}

func TestEmissions_MobileHasNoPSU(t *testing.T) {
	mobile := PowerDraw{CPU: 15, GPU: 25, RAM: 3}
	assert.Equal(t, 43.0, mobile.Total())
	assert.InDelta(t, 43*CarbonIntensity, Emissions(mobile, 3600), 1e-9)
}

func TestEmissions_Deterministic(t *testing.T) {
	draw := PowerDraw{CPU: 65, GPU: 120, RAM: 5, PSU: 550}
	first := Emissions(draw, 1234)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Emissions(draw, 1234))
	}
}

func TestEmissions_NonNegative(t *testing.T) {
	assert.GreaterOrEqual(t, Emissions(PowerDraw{}, 3600), 0.0)
	assert.GreaterOrEqual(t, Emissions(PowerDraw{CPU: 65}, 1), 0.0)
}
