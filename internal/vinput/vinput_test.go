package vinput

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArrayBolt3/kloak-v2/internal/scheduler"
)

func TestBoolToWireState(t *testing.T) {
	assert.Equal(t, uint32(1), boolToWireState(true))
	assert.Equal(t, uint32(0), boolToWireState(false))
}

func TestWireAxisSource(t *testing.T) {
	assert.Equal(t, uint32(0), wireAxisSource(scheduler.AxisSourceWheel))
	assert.Equal(t, uint32(1), wireAxisSource(scheduler.AxisSourceFinger))
	assert.Equal(t, uint32(2), wireAxisSource(scheduler.AxisSourceContinuous))
}
