package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArrayBolt3/kloak-v2/internal/randsrc"
)

// TestDelayScheduler_MonotoneRelease is property 1 (§8): admit order implies
// non-decreasing release times.
func TestDelayScheduler_MonotoneRelease(t *testing.T) {
	s := New(randsrc.New(), 100)
	var prev int64 = -1
	now := int64(0)
	for i := 0; i < 2000; i++ {
		s.Admit(InputPacket{Kind: Key, KeyCode: 30}, now)
		rt, ok := lastReleaseTime(s)
		require.True(t, ok)
		assert.GreaterOrEqual(t, rt, prev)
		prev = rt
		now += 1
	}
}

// TestDelayScheduler_BoundedDelay is property 2 (§8): every admitted
// packet's release time lies in [admit_time, admit_time+max_delay_ms].
func TestDelayScheduler_BoundedDelay(t *testing.T) {
	const maxDelay = int64(100)
	s := New(randsrc.New(), maxDelay)
	now := int64(0)
	for i := 0; i < 2000; i++ {
		s.Admit(InputPacket{Kind: Key, KeyCode: 30}, now)
		rt, ok := lastReleaseTime(s)
		require.True(t, ok)
		assert.GreaterOrEqual(t, rt, now)
		assert.LessOrEqual(t, rt, now+maxDelay)
		now += 3
	}
}

// TestDelayScheduler_DrainStablePreservesAdmitOrder checks that equal
// release times drain in admit order (§4.1's stable-draining invariant).
func TestDelayScheduler_DrainStablePreservesAdmitOrder(t *testing.T) {
	rng := &fixedSampler{value: 0}
	s := New(rng, 100)
	for i := 0; i < 5; i++ {
		s.Admit(InputPacket{Kind: Key, KeyCode: uint16(i)}, 0)
	}
	ready := s.DrainReady(0)
	require.Len(t, ready, 5)
	for i, p := range ready {
		assert.Equal(t, uint16(i), p.KeyCode)
	}
}

// TestDelayScheduler_DrainReadyOnlyRemovesDue verifies packets whose
// release time has not arrived stay queued.
func TestDelayScheduler_DrainReadyOnlyRemovesDue(t *testing.T) {
	rng := &sequenceSampler{values: []int64{10, 50}}
	s := New(rng, 100)
	s.Admit(InputPacket{Kind: Key, KeyCode: 1}, 0) // release 10
	s.Admit(InputPacket{Kind: Key, KeyCode: 2}, 0) // lower clamps to 10, release 10+50=60

	assert.Empty(t, s.DrainReady(5))
	ready := s.DrainReady(10)
	require.Len(t, ready, 1)
	assert.Equal(t, uint16(1), ready[0].KeyCode)
	assert.Equal(t, 1, s.Len())

	ready = s.DrainReady(60)
	require.Len(t, ready, 1)
	assert.Equal(t, uint16(2), ready[0].KeyCode)
}

// TestDelayScheduler_SingleKeystrokeUnderLoad is scenario S1 (§8): a press
// at t=0 and a release at t=5 with max_delay_ms=100, drained at t=200, both
// emitted in order with release_time(press) <= release_time(release) and
// both bounded by [0, 105].
func TestDelayScheduler_SingleKeystrokeUnderLoad(t *testing.T) {
	s := New(randsrc.New(), 100)
	s.Admit(InputPacket{Kind: Key, KeyCode: 30, KeyState: StatePressed}, 0)
	s.Admit(InputPacket{Kind: Key, KeyCode: 30, KeyState: StateReleased}, 5)

	ready := s.DrainReady(200)
	require.Len(t, ready, 2)
	assert.Equal(t, StatePressed, ready[0].KeyState)
	assert.Equal(t, StateReleased, ready[1].KeyState)
	assert.LessOrEqual(t, ready[0].ReleaseTime, ready[1].ReleaseTime)
	assert.GreaterOrEqual(t, ready[0].ReleaseTime, int64(0))
	assert.LessOrEqual(t, ready[0].ReleaseTime, int64(105))
	assert.GreaterOrEqual(t, ready[1].ReleaseTime, int64(5))
	assert.LessOrEqual(t, ready[1].ReleaseTime, int64(105))
}

func TestDelayScheduler_NextReleaseTime(t *testing.T) {
	s := New(&fixedSampler{value: 42}, 100)
	_, ok := s.NextReleaseTime()
	assert.False(t, ok)

	s.Admit(InputPacket{Kind: Key}, 10)
	rt, ok := s.NextReleaseTime()
	require.True(t, ok)
	assert.Equal(t, int64(52), rt)
}

func lastReleaseTime(s *DelayScheduler) (int64, bool) {
	if s.queue.Len() == 0 {
		return 0, false
	}
	return s.queue.items[s.queue.Len()-1].ReleaseTime, true
}

// fixedSampler always returns the lower bound plus a fixed offset, clamped
// to the interval, for deterministic assertions.
type fixedSampler struct {
	value int64
}

func (f *fixedSampler) UniformIntClosed(lower, upper int64) int64 {
	v := lower + f.value
	if v > upper {
		v = upper
	}
	return v
}

// sequenceSampler returns successive fixed offsets from lower, one per call.
type sequenceSampler struct {
	values []int64
	i      int
}

func (s *sequenceSampler) UniformIntClosed(lower, upper int64) int64 {
	v := lower + s.values[s.i]
	s.i++
	if v > upper {
		v = upper
	}
	return v
}
