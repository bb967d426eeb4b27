package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArrayBolt3/kloak-v2/internal/scheduler"
)

func TestClassify_RelMotion(t *testing.T) {
	p, ok := Classify(RawEvent{Type: EvRel, Code: RelX, Value: 5})
	require.True(t, ok)
	assert.Equal(t, scheduler.PointerMotionRel, p.Kind)
	assert.Equal(t, int32(5), p.DX)

	p, ok = Classify(RawEvent{Type: EvRel, Code: RelY, Value: -3})
	require.True(t, ok)
	assert.Equal(t, int32(-3), p.DY)
}

func TestClassify_Scroll(t *testing.T) {
	p, ok := Classify(RawEvent{Type: EvRel, Code: RelWheel, Value: 0})
	require.True(t, ok)
	assert.Equal(t, scheduler.PointerScroll, p.Kind)
	assert.Equal(t, float64(0), p.AxisValue)
	assert.Equal(t, scheduler.AxisSourceWheel, p.AxisSrc)
}

func TestClassify_Button(t *testing.T) {
	p, ok := Classify(RawEvent{Type: EvKey, Code: 0x110, Value: 1}) // BTN_LEFT press
	require.True(t, ok)
	assert.Equal(t, scheduler.PointerButton, p.Kind)
	assert.Equal(t, scheduler.StatePressed, p.ButtonState)

	p, ok = Classify(RawEvent{Type: EvKey, Code: 0x110, Value: 0})
	require.True(t, ok)
	assert.Equal(t, scheduler.StateReleased, p.ButtonState)
}

func TestClassify_Key(t *testing.T) {
	p, ok := Classify(RawEvent{Type: EvKey, Code: 30, Value: 1}) // KEY_A press
	require.True(t, ok)
	assert.Equal(t, scheduler.Key, p.Kind)
	assert.Equal(t, uint16(30), p.KeyCode)
	assert.Equal(t, scheduler.StatePressed, p.KeyState)
}

func TestClassify_UnrecognizedTypeDropped(t *testing.T) {
	_, ok := Classify(RawEvent{Type: 0xFF, Code: 0, Value: 0})
	assert.False(t, ok)
}

func TestClassify_SynAlreadyFilteredUpstream(t *testing.T) {
	_, ok := Classify(RawEvent{Type: EvSyn, Code: 0, Value: 0})
	assert.False(t, ok)
}
