// Package core wires every other package into the single owned context
// struct the main loop threads through one cooperative, single-threaded
// iteration at a time.
package core

import (
	"github.com/bnema/wlturbo/wl"

	"github.com/ArrayBolt3/kloak-v2/internal/capture"
	"github.com/ArrayBolt3/kloak-v2/internal/clock"
	"github.com/ArrayBolt3/kloak-v2/internal/geometry"
	"github.com/ArrayBolt3/kloak-v2/internal/overlay"
	"github.com/ArrayBolt3/kloak-v2/internal/protocols"
	"github.com/ArrayBolt3/kloak-v2/internal/randsrc"
	"github.com/ArrayBolt3/kloak-v2/internal/scheduler"
	"github.com/ArrayBolt3/kloak-v2/internal/vinput"
)

// Minimum protocol versions the daemon requires, per the external
// interfaces contract.
const (
	minCompositorVersion            = 5
	minShmVersion                   = 2
	minSeatVersion                  = 9
	minOutputVersion                = 4
	minXdgOutputManagerVersion      = 3
	minLayerShellVersion            = 4
	minVirtualPointerManagerVersion = 2
	minVirtualKeyboardManagerVersion = 1
)

// Config carries the CLI-overridable construction parameters; the core
// types themselves never read an environment variable or config file.
type Config struct {
	MaxDelayMs int64
	SeatName   string
}

// outputState is everything the bootstrap path tracks for one compositor
// output between its "global advertised" and "global removed" events.
type outputState struct {
	registryName uint32
	wlOutput     *wl.Output
	xdgOutput    *protocols.XdgOutput
	layerSurface *protocols.LayerSurface
	surface      *wl.Surface
	buffer       *wl.Buffer
	output       *geometry.Output
	overlay      *overlay.Overlay
}

// Context is the single mutable-state owner the event loop threads
// through. No field here is touched outside the main loop's goroutine.
type Context struct {
	cfg Config

	display  *wl.Display
	registry *wl.Registry
	wlCtx    *wl.Context
	seat     *wl.Seat

	compositor   *wl.Compositor
	shm          *wl.Shm
	pointerMgr   *protocols.VirtualPointerManager
	keyboardMgr  *protocols.VirtualKeyboardManager
	layerShell   *protocols.LayerShell
	xdgOutputMgr *protocols.XdgOutputManager

	pendingGlobals map[uint32]string // registry name -> interface, before bind

	outputs     *geometry.Geometry
	outputByReg map[uint32]*outputState
	globalSpace *geometry.GlobalSpace
	walker      *geometry.Walker

	cursor     geometry.Position
	prevCursor geometry.Position

	vin       *vinput.VirtualInput
	scheduler *scheduler.DelayScheduler
	capture   *capture.CaptureLoop
	clk       *clock.Clock
	rng       *randsrc.Source

	nextKeepAliveAt int64
	shuttingDown    bool
}
