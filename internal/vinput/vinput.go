package vinput

import (
	"bytes"
	"fmt"
	"syscall"

	"github.com/bnema/wlturbo/wl"

	"github.com/ArrayBolt3/kloak-v2/internal/protocols"
	"github.com/ArrayBolt3/kloak-v2/internal/scheduler"
)

// KeyboardUnauthorizedID is the sentinel object ID the compositor returns
// in place of a real virtual-keyboard handle when it refuses authorization.
// The wire protocol conveys failure as an integer enum in the same slot a
// handle pointer would occupy; object ID zero is Wayland's "null object"
// and is never a valid handle otherwise.
const KeyboardUnauthorizedID = 0

// xkbKeymapFormat is the "xkb v1" keymap format enum value used by the
// virtual-keyboard protocol's keymap request.
const xkbKeymapFormat = 1

// VirtualInput is the one process-wide virtual pointer and virtual
// keyboard, plus the bookkeeping needed to emit modifier-atomic key events
// and idempotent keymap updates.
type VirtualInput struct {
	pointer  *protocols.VirtualPointer
	keyboard *protocols.VirtualKeyboard
	tracker  *KeymapTracker

	lastKeymap []byte
}

// New wraps an already-created virtual pointer and virtual keyboard. The
// caller must have already checked the keyboard for KeyboardUnauthorizedID.
func New(pointer *protocols.VirtualPointer, keyboard *protocols.VirtualKeyboard) *VirtualInput {
	return &VirtualInput{
		pointer:  pointer,
		keyboard: keyboard,
		tracker:  NewKeymapTracker(),
	}
}

// EmitMotionAbsolute sends an absolute cursor position, closed with a
// frame marker.
func (v *VirtualInput) EmitMotionAbsolute(timeMs uint32, x, y int32, extentW, extentH uint32) error {
	if err := v.pointer.MotionAbsolute(timeMs, uint32(x), uint32(y), extentW, extentH); err != nil {
		return fmt.Errorf("vinput: motion absolute: %w", err)
	}
	return v.frame()
}

// EmitButton sends a button press or release, closed with a frame marker.
// Button codes pass through unchanged: the raw and virtual-pointer
// protocols share one code space.
func (v *VirtualInput) EmitButton(timeMs uint32, buttonCode uint32, pressed bool) error {
	if err := v.pointer.Button(timeMs, buttonCode, boolToWireState(pressed)); err != nil {
		return fmt.Errorf("vinput: button: %w", err)
	}
	return v.frame()
}

// EmitScroll sends a scroll axis event, or an axis-stop when value is
// exactly zero, paired with a matching axis-source event, closed with a
// frame marker.
func (v *VirtualInput) EmitScroll(timeMs uint32, axisCode uint32, value float64, src scheduler.AxisSource) error {
	if err := v.pointer.AxisSource(wireAxisSource(src)); err != nil {
		return fmt.Errorf("vinput: axis source: %w", err)
	}

	if value == 0 {
		if err := v.pointer.AxisStop(timeMs, axisCode); err != nil {
			return fmt.Errorf("vinput: axis stop: %w", err)
		}
	} else {
		if err := v.pointer.Axis(timeMs, axisCode, wl.NewFixed(value)); err != nil {
			return fmt.Errorf("vinput: axis: %w", err)
		}
	}
	return v.frame()
}

func (v *VirtualInput) frame() error {
	if err := v.pointer.Frame(); err != nil {
		return fmt.Errorf("vinput: frame: %w", err)
	}
	return nil
}

// EmitKey snapshots the current modifier state and pushes it to the
// virtual keyboard before emitting the key itself, then advances the
// tracker for the transition that just happened. This ordering is the
// modifier-atomicity invariant: a modifier update always precedes the key
// event it applies to, within the same loop iteration.
func (v *VirtualInput) EmitKey(timeMs uint32, rawKeycode uint32, pressed bool) error {
	depressed, latched, locked, group := v.tracker.Modifiers()
	if err := v.keyboard.Modifiers(depressed, latched, locked, group); err != nil {
		return fmt.Errorf("vinput: modifiers: %w", err)
	}

	if err := v.keyboard.Key(timeMs, rawKeycode, boolToWireState(pressed)); err != nil {
		return fmt.Errorf("vinput: key: %w", err)
	}

	v.tracker.HandleKeyEvent(rawKeycode, pressed)
	return nil
}

// UpdateKeymap forwards a newly received keymap to the virtual keyboard
// unless it is byte-for-byte identical to the keymap already accepted, in
// which case it is dropped silently: compositors resend the same keymap
// redundantly.
func (v *VirtualInput) UpdateKeymap(text []byte) error {
	if bytes.Equal(text, v.lastKeymap) {
		return nil
	}

	fd, size, err := anonymousFileFromBytes(text)
	if err != nil {
		return fmt.Errorf("vinput: keymap fd: %w", err)
	}
	defer func() { _ = syscall.Close(fd) }()

	if err := v.keyboard.Keymap(xkbKeymapFormat, fd, size); err != nil {
		return fmt.Errorf("vinput: keymap: %w", err)
	}

	v.tracker.LoadKeymap(text)
	v.lastKeymap = append([]byte(nil), text...)
	return nil
}

// anonymousFileFromBytes writes text into a freshly created anonymous
// shared-memory file and rewinds it, following the same
// CreateAnonymousFile/MapMemory/UnmapMemory sequence used for the default
// bootstrap keymap.
func anonymousFileFromBytes(text []byte) (fd int, size uint32, err error) {
	n := len(text)
	f, err := wl.CreateAnonymousFile(int64(n))
	if err != nil {
		return -1, 0, err
	}

	data, err := wl.MapMemory(f, n)
	if err != nil {
		_ = syscall.Close(f)
		return -1, 0, err
	}
	copy(data, text)
	_ = wl.UnmapMemory(data)

	if _, err := syscall.Seek(f, 0, 0); err != nil {
		_ = syscall.Close(f)
		return -1, 0, err
	}

	if n < 0 || n > 0x7FFFFFFF {
		_ = syscall.Close(f)
		return -1, 0, fmt.Errorf("invalid keymap size: %d", n)
	}
	return f, uint32(n), nil
}

func boolToWireState(pressed bool) uint32 {
	if pressed {
		return 1
	}
	return 0
}

func wireAxisSource(src scheduler.AxisSource) uint32 {
	switch src {
	case scheduler.AxisSourceWheel:
		return 0
	case scheduler.AxisSourceFinger:
		return 1
	case scheduler.AxisSourceContinuous:
		return 2
	default:
		return 0
	}
}
