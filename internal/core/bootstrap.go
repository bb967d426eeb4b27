package core

import (
	"fmt"

	"github.com/bnema/wlturbo/wl"

	"github.com/ArrayBolt3/kloak-v2/internal/capture"
	"github.com/ArrayBolt3/kloak-v2/internal/clock"
	"github.com/ArrayBolt3/kloak-v2/internal/geometry"
	"github.com/ArrayBolt3/kloak-v2/internal/logger"
	"github.com/ArrayBolt3/kloak-v2/internal/protocols"
	"github.com/ArrayBolt3/kloak-v2/internal/randsrc"
	"github.com/ArrayBolt3/kloak-v2/internal/scheduler"
	"github.com/ArrayBolt3/kloak-v2/internal/vinput"
)

// New connects to the compositor, binds every required global, grabs
// every physical input device, and returns a Context ready to run. Every
// failure here is a fatal environmental condition: there is no degraded
// startup path.
func New(cfg Config) (*Context, error) {
	display, err := wl.Connect("")
	if err != nil {
		return nil, fmt.Errorf("core: connect to compositor: %w", err)
	}

	c := &Context{
		cfg:            cfg,
		display:        display,
		wlCtx:          display.Context(),
		pendingGlobals: make(map[uint32]string),
		outputs:        geometry.New(),
		outputByReg:    make(map[uint32]*outputState),
		globalSpace:    &geometry.GlobalSpace{},
		clk:            clock.New(),
		rng:            randsrc.New(),
		scheduler:      scheduler.New(randsrc.New(), cfg.MaxDelayMs),
		capture:        capture.New(),
	}
	c.walker = geometry.NewWalker(c.outputs)

	c.registry = display.GetRegistry()
	c.registry.AddGlobalHandler(c)
	c.registry.AddGlobalRemoveHandler(c)

	if err := display.Roundtrip(); err != nil {
		return nil, fmt.Errorf("core: initial roundtrip: %w", err)
	}

	if err := c.bindManagers(); err != nil {
		return nil, err
	}

	if err := display.Roundtrip(); err != nil {
		return nil, fmt.Errorf("core: post-bind roundtrip: %w", err)
	}

	if err := c.createVirtualInput(); err != nil {
		return nil, err
	}

	if err := c.capture.Open(); err != nil {
		return nil, fmt.Errorf("core: capture devices: %w", err)
	}

	return c, nil
}

// HandleRegistryGlobal implements wl.RegistryGlobalHandler. It records
// every global by registry name, and binds wl_output, wl_compositor,
// wl_shm and wl_seat right away; the protocol managers are bound later in
// bindManagers, once the initial roundtrip has completed the name map.
func (c *Context) HandleRegistryGlobal(event wl.RegistryGlobalEvent) {
	c.pendingGlobals[event.Name] = event.Interface

	if event.Interface == "wl_output" {
		c.handleNewOutput(event.Name, event.Version)
		return
	}
	if event.Interface == "wl_compositor" && c.compositor == nil {
		c.bindCompositor(event.Name, event.Version)
	}
	if event.Interface == "wl_shm" && c.shm == nil {
		c.bindShm(event.Name, event.Version)
	}
	if event.Interface == "wl_seat" && c.seat == nil {
		c.bindSeat(event.Name, event.Version)
	}
}

// HandleRegistryGlobalRemove implements wl.RegistryGlobalRemoveHandler.
func (c *Context) HandleRegistryGlobalRemove(event wl.RegistryGlobalRemoveEvent) {
	delete(c.pendingGlobals, event.Name)
	if _, ok := c.outputByReg[event.Name]; ok {
		c.handleOutputRemoved(event.Name)
	}
}

func (c *Context) bindCompositor(name, version uint32) {
	id, err := c.registry.BindID(name, "wl_compositor", clampVersion(version, minCompositorVersion))
	if err != nil {
		logger.Fatalf("core: bind wl_compositor: %v", err)
	}
	comp := wl.NewCompositor(c.wlCtx)
	comp.SetID(id)
	c.wlCtx.Register(comp)
	c.compositor = comp
}

func (c *Context) bindShm(name, version uint32) {
	id, err := c.registry.BindID(name, "wl_shm", clampVersion(version, minShmVersion))
	if err != nil {
		logger.Fatalf("core: bind wl_shm: %v", err)
	}
	shm := wl.NewShm(c.wlCtx)
	shm.SetID(id)
	c.wlCtx.Register(shm)
	c.shm = shm
}

func (c *Context) bindSeat(name, version uint32) {
	id, err := c.registry.BindID(name, "wl_seat", clampVersion(version, minSeatVersion))
	if err != nil {
		logger.Fatalf("core: bind wl_seat: %v", err)
	}
	seat := wl.NewSeat(c.wlCtx)
	seat.SetID(id)
	c.wlCtx.Register(seat)
	c.seat = seat
}

// bindManagers binds the virtual-pointer, virtual-keyboard, layer-shell
// and xdg-output manager globals discovered during the initial roundtrip.
// Outputs, the compositor, shm and the seat are bound eagerly in
// HandleRegistryGlobal instead.
func (c *Context) bindManagers() error {
	for name, iface := range c.pendingGlobals {
		switch iface {
		case "zwlr_virtual_pointer_manager_v1":
			id, err := c.registry.BindID(name, iface, minVirtualPointerManagerVersion)
			if err != nil {
				return fmt.Errorf("core: bind %s: %w", iface, err)
			}
			mgr := protocols.NewVirtualPointerManager(c.wlCtx)
			mgr.SetID(id)
			c.pointerMgr = mgr

		case "zwp_virtual_keyboard_manager_v1":
			id, err := c.registry.BindID(name, iface, minVirtualKeyboardManagerVersion)
			if err != nil {
				return fmt.Errorf("core: bind %s: %w", iface, err)
			}
			mgr := protocols.NewVirtualKeyboardManager(c.wlCtx)
			mgr.SetID(id)
			c.wlCtx.Register(mgr)
			c.keyboardMgr = mgr

		case "zwlr_layer_shell_v1":
			id, err := c.registry.BindID(name, iface, minLayerShellVersion)
			if err != nil {
				return fmt.Errorf("core: bind %s: %w", iface, err)
			}
			shell := protocols.NewLayerShell(c.wlCtx)
			shell.SetID(id)
			c.wlCtx.Register(shell)
			c.layerShell = shell

		case "zxdg_output_manager_v1":
			id, err := c.registry.BindID(name, iface, minXdgOutputManagerVersion)
			if err != nil {
				return fmt.Errorf("core: bind %s: %w", iface, err)
			}
			mgr := protocols.NewXdgOutputManager(c.wlCtx)
			mgr.SetID(id)
			c.wlCtx.Register(mgr)
			c.xdgOutputMgr = mgr
			c.retrofitXdgOutputs()
		}
	}

	if c.compositor == nil || c.shm == nil || c.seat == nil || c.pointerMgr == nil ||
		c.keyboardMgr == nil || c.layerShell == nil {
		return fmt.Errorf("core: compositor is missing a required global")
	}
	return nil
}

// createVirtualInput creates the one process-wide virtual pointer and
// virtual keyboard. A keyboard handle whose ID equals the unauthorized
// sentinel is a fatal authorization failure, not a retry condition.
func (c *Context) createVirtualInput() error {
	pointer, err := c.pointerMgr.CreateVirtualPointer(c.seat)
	if err != nil {
		return fmt.Errorf("core: create virtual pointer: %w", err)
	}

	keyboard, err := c.keyboardMgr.CreateVirtualKeyboard(c.seat)
	if err != nil {
		return fmt.Errorf("core: create virtual keyboard: %w", err)
	}
	if keyboard.ID() == vinput.KeyboardUnauthorizedID {
		logger.Fatalf("core: virtual keyboard creation unauthorized by compositor")
	}

	c.vin = vinput.New(pointer, keyboard)
	return nil
}

// clampVersion returns the lower of the advertised version and the minimum
// this daemon requires: it never requests more than the compositor
// advertised. A compositor advertising less than the minimum is bound at
// its advertised version; nothing here rejects it.
func clampVersion(advertised, minimum uint32) uint32 {
	if advertised < minimum {
		return advertised
	}
	return minimum
}
