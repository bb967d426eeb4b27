package capture

import "github.com/ArrayBolt3/kloak-v2/internal/scheduler"

// Relative-motion axis codes (EV_REL).
const (
	RelX      = 0x00
	RelY      = 0x01
	RelHWheel = 0x06
	RelWheel  = 0x08
)

// btnRangeStart/End bound the EV_KEY codes classified as pointer buttons
// rather than keyboard keys: BTN_LEFT through BTN_GEAR_UP, which covers the
// mouse, joystick, gamepad and digitizer button codes.
const (
	btnRangeStart = 0x110 // BTN_LEFT
	btnRangeEnd   = 0x151 // BTN_GEAR_UP
)

// Classify turns one decoded RawEvent into an InputPacket, or reports ok
// == false for a kind this daemon does not act on (malformed/unrecognized
// events are dropped without effect and without logging, per the
// per-event error taxonomy).
func Classify(e RawEvent) (scheduler.InputPacket, bool) {
	switch e.Type {
	case EvRel:
		return classifyRel(e)
	case EvKey:
		return classifyKey(e)
	default:
		return scheduler.InputPacket{}, false
	}
}

func classifyRel(e RawEvent) (scheduler.InputPacket, bool) {
	switch e.Code {
	case RelX:
		return scheduler.InputPacket{Kind: scheduler.PointerMotionRel, DX: e.Value}, true
	case RelY:
		return scheduler.InputPacket{Kind: scheduler.PointerMotionRel, DY: e.Value}, true
	case RelWheel:
		return scheduler.InputPacket{
			Kind:      scheduler.PointerScroll,
			AxisCode:  0, // vertical
			AxisValue: float64(e.Value),
			AxisSrc:   scheduler.AxisSourceWheel,
		}, true
	case RelHWheel:
		return scheduler.InputPacket{
			Kind:      scheduler.PointerScroll,
			AxisCode:  1, // horizontal
			AxisValue: float64(e.Value),
			AxisSrc:   scheduler.AxisSourceWheel,
		}, true
	default:
		return scheduler.InputPacket{}, false
	}
}

func classifyKey(e RawEvent) (scheduler.InputPacket, bool) {
	state := scheduler.StateReleased
	if e.Value != 0 {
		state = scheduler.StatePressed
	}

	if int(e.Code) >= btnRangeStart && int(e.Code) <= btnRangeEnd {
		return scheduler.InputPacket{
			Kind:        scheduler.PointerButton,
			ButtonCode:  e.Code,
			ButtonState: state,
		}, true
	}

	return scheduler.InputPacket{
		Kind:     scheduler.Key,
		KeyCode:  e.Code,
		KeyState: state,
	}, true
}
