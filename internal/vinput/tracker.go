// Package vinput adapts released scheduler packets into calls on the
// compositor's virtual-pointer and virtual-keyboard protocol objects.
//
// Real keymap compilation (resolving a text XKB keymap into full modifier
// and layout semantics) is an opaque external collaborator per this
// daemon's scope: the tracker here only needs to answer "what are the
// current modifier masks" well enough to keep the virtual keyboard's
// modifier state consistent with what was actually pressed, not to
// reimplement xkbcommon.
package vinput

// Modifier bit positions, matching the conventional XKB modifier mask
// layout (Shift, Lock, Control, Mod1/Alt, Mod4/Super).
const (
	modShift = 1 << 0
	modLock  = 1 << 1
	modCtrl  = 1 << 2
	modAlt   = 1 << 3
	modSuper = 1 << 6
)

// keymapKeycodeOffset is the constant difference between a raw evdev
// keycode and its XKB keycode. The tracker applies it on every lookup;
// emitted wire events never do.
const keymapKeycodeOffset = 8

// xkbModifierKeys maps XKB keycodes (raw + keymapKeycodeOffset) for the
// handful of keys that carry modifier semantics to the bit they set.
var xkbModifierKeys = map[uint32]uint32{
	50:  modShift, // KEY_LEFTSHIFT
	62:  modShift, // KEY_RIGHTSHIFT
	37:  modCtrl,  // KEY_LEFTCTRL
	105: modCtrl,  // KEY_RIGHTCTRL
	64:  modAlt,   // KEY_LEFTALT
	108: modAlt,   // KEY_RIGHTALT
	133: modSuper, // KEY_LEFTMETA
	134: modSuper, // KEY_RIGHTMETA
}

var xkbLockKeys = map[uint32]uint32{
	66: modLock, // KEY_CAPSLOCK
}

// KeymapTracker tracks the modifier state implied by a stream of raw key
// transitions, against the most recently loaded keymap's text.
type KeymapTracker struct {
	keymapText []byte
	pressed    map[uint32]bool
	locked     uint32
	group      uint32
}

// NewKeymapTracker returns a tracker with no keymap loaded and no keys held.
func NewKeymapTracker() *KeymapTracker {
	return &KeymapTracker{pressed: make(map[uint32]bool)}
}

// LoadKeymap records the newly accepted keymap text and resets transient
// press state; held keys from a previous keymap do not carry over, since
// their XKB semantics may have changed.
func (t *KeymapTracker) LoadKeymap(text []byte) {
	t.keymapText = append([]byte(nil), text...)
	t.pressed = make(map[uint32]bool)
	t.group = 0
}

// HandleKeyEvent advances tracked state for a raw keycode transition. Must
// be called after the corresponding Modifiers() snapshot has already been
// emitted, per the atomicity requirement: modifiers reflect state *before*
// this transition, not after.
func (t *KeymapTracker) HandleKeyEvent(rawKeycode uint32, pressed bool) {
	xkbCode := rawKeycode + keymapKeycodeOffset
	t.pressed[xkbCode] = pressed

	if bit, ok := xkbLockKeys[xkbCode]; ok && pressed {
		t.locked ^= bit
	}
}

// Modifiers returns the current (depressed, latched, locked, group) mask.
// This tracker never latches a modifier, since latching requires full XKB
// layout semantics this daemon treats as opaque.
func (t *KeymapTracker) Modifiers() (depressed, latched, locked, group uint32) {
	for xkbCode, isDown := range t.pressed {
		if !isDown {
			continue
		}
		if bit, ok := xkbModifierKeys[xkbCode]; ok {
			depressed |= bit
		}
	}
	return depressed, 0, t.locked, t.group
}
