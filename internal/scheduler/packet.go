// Package scheduler implements the anti-fingerprinting delay engine: a FIFO
// of captured input packets, each stamped with a release time drawn from a
// strong random source under ordering and monotonicity constraints.
package scheduler

// PacketKind identifies what an InputPacket carries. Pointer motion kinds
// exist here only so CaptureLoop and VirtualInput share one vocabulary;
// the DelayScheduler itself never admits a motion packet, since motion is
// applied to CursorPosition immediately rather than queued.
type PacketKind int

const (
	PointerMotionRel PacketKind = iota
	PointerMotionAbs
	PointerButton
	PointerScroll
	Key
)

// AxisSource identifies the physical origin of a scroll event, forwarded
// verbatim to the virtual pointer's axis-source event.
type AxisSource int

const (
	AxisSourceWheel AxisSource = iota
	AxisSourceFinger
	AxisSourceContinuous
)

// KeyState is shared between key and button packets: both are simple
// press/release transitions on the same code space.
type KeyState int

const (
	StateReleased KeyState = iota
	StatePressed
)

// InputPacket is one captured event, preserved with its raw payload for
// its specific kind and stamped with a scheduled release time once it has
// been admitted into a ScheduledQueue.
type InputPacket struct {
	Kind PacketKind

	// Relative or absolute motion payload. Never admitted into a queue;
	// carried here purely so capture and virtual-input code share one type.
	DX, DY     int32
	AbsX, AbsY int32

	// Button payload.
	ButtonCode  uint16
	ButtonState KeyState

	// Scroll payload.
	AxisCode   uint32
	AxisValue  float64
	AxisSrc    AxisSource

	// Key payload.
	KeyCode  uint16
	KeyState KeyState

	// ReleaseTime is set by DelayScheduler.Admit and is meaningless before
	// admission.
	ReleaseTime int64
}
