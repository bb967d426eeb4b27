package vinput

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	rawLeftShift = 42
	rawLeftCtrl  = 29
	rawLeftAlt   = 56
	rawCapsLock  = 58
)

func TestKeymapTracker_ModifierDepressedWhileHeld(t *testing.T) {
	tr := NewKeymapTracker()
	d, latched, locked, group := tr.Modifiers()
	assert.Zero(t, d)
	assert.Zero(t, latched)
	assert.Zero(t, locked)
	assert.Zero(t, group)

	tr.HandleKeyEvent(rawLeftShift, true)
	d, _, _, _ = tr.Modifiers()
	assert.Equal(t, uint32(modShift), d)

	tr.HandleKeyEvent(rawLeftShift, false)
	d, _, _, _ = tr.Modifiers()
	assert.Zero(t, d)
}

func TestKeymapTracker_MultipleModifiersCombine(t *testing.T) {
	tr := NewKeymapTracker()
	tr.HandleKeyEvent(rawLeftShift, true)
	tr.HandleKeyEvent(rawLeftCtrl, true)
	tr.HandleKeyEvent(rawLeftAlt, true)

	d, _, _, _ := tr.Modifiers()
	assert.Equal(t, uint32(modShift|modCtrl|modAlt), d)
}

// TestKeymapTracker_UsesKeycodeOffsetInternally verifies the tracker
// looks keys up by raw+8 (XKB convention), not by the raw evdev code.
func TestKeymapTracker_UsesKeycodeOffsetInternally(t *testing.T) {
	tr := NewKeymapTracker()
	tr.HandleKeyEvent(rawLeftShift, true) // raw=42, xkb=50
	assert.True(t, tr.pressed[rawLeftShift+keymapKeycodeOffset])
	assert.False(t, tr.pressed[rawLeftShift])
}

func TestKeymapTracker_CapsLockToggles(t *testing.T) {
	tr := NewKeymapTracker()
	_, _, locked, _ := tr.Modifiers()
	assert.Zero(t, locked)

	tr.HandleKeyEvent(rawCapsLock, true)
	_, _, locked, _ = tr.Modifiers()
	assert.Equal(t, uint32(modLock), locked)

	// release doesn't untoggle; another press does.
	tr.HandleKeyEvent(rawCapsLock, false)
	_, _, locked, _ = tr.Modifiers()
	assert.Equal(t, uint32(modLock), locked)

	tr.HandleKeyEvent(rawCapsLock, true)
	_, _, locked, _ = tr.Modifiers()
	assert.Zero(t, locked)
}

func TestKeymapTracker_LoadKeymapResetsPressState(t *testing.T) {
	tr := NewKeymapTracker()
	tr.HandleKeyEvent(rawLeftShift, true)
	tr.LoadKeymap([]byte("xkb_keymap {};"))

	d, _, _, _ := tr.Modifiers()
	assert.Zero(t, d)
}
