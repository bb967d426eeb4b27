// Package capture owns exclusive ownership of every physical input device
// on the host: it enumerates event devices, grabs each one exclusively,
// and decodes raw evdev events for admission into the delay scheduler.
//
// Device enumeration itself is treated as an opaque external collaborator
// (golang-evdev's ListInputDevices) — CaptureLoop's own job is grab
// policy, hot-plug bookkeeping, and decoding, not device discovery.
package capture

import (
	"fmt"
	"strings"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/ArrayBolt3/kloak-v2/internal/logger"
)

// DevicePattern is the glob CaptureLoop enumerates against, matching the
// kernel's event-device naming convention.
const DevicePattern = "/dev/input/event*"

const (
	EvSyn = 0x00
	EvKey = 0x01
	EvRel = 0x02
)

// RawEvent is one decoded evdev event, stripped of its originating device
// and timestamp: the scheduler only needs type/code/value.
type RawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// CaptureLoop tracks every grabbed device by both its filesystem path
// (hot-plug identity) and its file descriptor (poll/read identity).
type CaptureLoop struct {
	pattern string
	byPath  map[string]*evdev.InputDevice
	byFd    map[int]*evdev.InputDevice
}

// New returns a CaptureLoop that will enumerate DevicePattern.
func New() *CaptureLoop {
	return &CaptureLoop{
		pattern: DevicePattern,
		byPath:  make(map[string]*evdev.InputDevice),
		byFd:    make(map[int]*evdev.InputDevice),
	}
}

// Open enumerates every currently present event device and grabs each one
// exclusively. A grab refusal is fatal per the capture error taxonomy:
// partial capture would leave a side channel the daemon exists to close.
func (c *CaptureLoop) Open() error {
	_, err := c.Rescan()
	return err
}

// Rescan grabs any device that has appeared since the last call (startup
// counts as the first call) and returns the newly grabbed fds so the
// caller can add them to its poll set. This is the hot-plug path; the
// main loop calls it periodically rather than watching a dedicated
// notification fd, per the spec's "short periodic timeout is also
// acceptable as a simpler equivalent" allowance.
func (c *CaptureLoop) Rescan() ([]int, error) {
	devices, err := evdev.ListInputDevices(c.pattern)
	if err != nil {
		return nil, fmt.Errorf("capture: enumerate devices: %w", err)
	}

	var added []int
	for _, d := range devices {
		if _, known := c.byPath[d.Fn]; known {
			// Already grabbed through an earlier handle; drop this one.
			_ = d.File.Close()
			continue
		}
		if err := c.grab(d); err != nil {
			_ = d.File.Close()
			return nil, err
		}
		added = append(added, int(d.File.Fd()))
		logger.Debugf("capture: grabbed %s (%s)", d.Fn, d.Name)
	}
	return added, nil
}

func (c *CaptureLoop) grab(d *evdev.InputDevice) error {
	if err := d.Grab(); err != nil {
		return fmt.Errorf("capture: exclusive grab refused for %s: %w", d.Fn, err)
	}
	c.configureTapToClick(d)

	c.byPath[d.Fn] = d
	c.byFd[int(d.File.Fd())] = d
	return nil
}

// touchpadNameHints are substrings commonly present in touchpad device
// names, used as a coarse stand-in for real capability introspection.
var touchpadNameHints = []string{"touchpad", "trackpad"}

// configureTapToClick recognizes devices that look like touchpads and logs
// them. It does not change tap-to-click: the device keeps whatever setting
// its driver already has.
func (c *CaptureLoop) configureTapToClick(d *evdev.InputDevice) {
	name := strings.ToLower(d.Name)
	for _, hint := range touchpadNameHints {
		if strings.Contains(name, hint) {
			logger.Debugf("capture: %s looks like a touchpad, tap-to-click left to its existing driver default", d.Fn)
			return
		}
	}
}

// Fds returns every currently grabbed device's file descriptor, for the
// main loop's poll set.
func (c *CaptureLoop) Fds() []int {
	fds := make([]int, 0, len(c.byFd))
	for fd := range c.byFd {
		fds = append(fds, fd)
	}
	return fds
}

// ReadFd decodes every available event from the device at fd, dropping
// EV_SYN markers: they carry no actionable payload of their own.
func (c *CaptureLoop) ReadFd(fd int) ([]RawEvent, error) {
	d, ok := c.byFd[fd]
	if !ok {
		return nil, fmt.Errorf("capture: read from unknown fd %d", fd)
	}

	events, err := d.Read()
	if err != nil {
		return nil, fmt.Errorf("capture: read %s: %w", d.Fn, err)
	}

	out := make([]RawEvent, 0, len(events))
	for _, e := range events {
		if e.Type == EvSyn {
			continue
		}
		out = append(out, RawEvent{Type: e.Type, Code: e.Code, Value: e.Value})
	}
	return out, nil
}

// Close releases every grab. Called during clean shutdown so devices are
// never left exclusively grabbed by a dead process.
func (c *CaptureLoop) Close() {
	for path, d := range c.byPath {
		if err := d.Release(); err != nil {
			logger.Debugf("capture: release %s: %v", path, err)
		}
		_ = d.File.Close()
	}
	c.byPath = make(map[string]*evdev.InputDevice)
	c.byFd = make(map[int]*evdev.InputDevice)
}
