package core

import (
	"fmt"

	"github.com/bnema/wlturbo/wl"

	"github.com/ArrayBolt3/kloak-v2/internal/geometry"
	"github.com/ArrayBolt3/kloak-v2/internal/logger"
	"github.com/ArrayBolt3/kloak-v2/internal/overlay"
	"github.com/ArrayBolt3/kloak-v2/internal/protocols"
)

// layerSurfaceNamespace identifies this daemon's overlay surfaces in
// compositor debug output (wlr-layer-shell's "namespace" argument).
const layerSurfaceNamespace = "kloak-cursor-overlay"

// shmFormatArgb8888 is wl_shm.format's ARGB8888 enum value.
const shmFormatArgb8888 uint32 = 0

// handleNewOutput binds a freshly announced wl_output global and starts
// tracking its physical geometry. The output is not usable for cursor
// containment until its done event arrives; see finalizeOutput.
func (c *Context) handleNewOutput(name, version uint32) {
	id, err := c.registry.BindID(name, "wl_output", clampVersion(version, minOutputVersion))
	if err != nil {
		logger.Errorf("core: bind wl_output %d: %v", name, err)
		return
	}

	wlOutput := wl.NewOutput(c.wlCtx)
	wlOutput.SetID(id)
	c.wlCtx.Register(wlOutput)

	st := &outputState{
		registryName: name,
		wlOutput:     wlOutput,
		output:       &geometry.Output{RegistryName: name},
	}
	c.outputByReg[name] = st

	wlOutput.SetGeometryHandler(func(x, y, _, _, _ int32, _, _ string, _ int32) {
		st.output.X = x
		st.output.Y = y
	})
	wlOutput.SetModeHandler(func(_ uint32, width, height, _ int32) {
		st.output.Width = width
		st.output.Height = height
	})
	wlOutput.SetDoneHandler(func() {
		c.requestLogicalGeometryOrFinalize(st)
	})

	if c.xdgOutputMgr != nil {
		c.requestXdgOutput(st)
	}
}

// retrofitXdgOutputs requests logical geometry for every output that was
// announced before zxdg_output_manager_v1 finished binding.
func (c *Context) retrofitXdgOutputs() {
	for _, st := range c.outputByReg {
		if st.xdgOutput == nil && !st.output.InitDone {
			c.requestXdgOutput(st)
		}
	}
}

func (c *Context) requestXdgOutput(st *outputState) {
	xo, err := c.xdgOutputMgr.GetXdgOutput(st.wlOutput)
	if err != nil {
		logger.Errorf("core: get_xdg_output for registry name %d: %v", st.registryName, err)
		return
	}
	st.xdgOutput = xo

	xo.SetLogicalPositionHandler(func(x, y int32) {
		st.output.X = x
		st.output.Y = y
	})
	xo.SetLogicalSizeHandler(func(width, height int32) {
		st.output.Width = width
		st.output.Height = height
	})
	xo.SetDoneHandler(func() {
		c.finalizeOutput(st)
	})
}

// requestLogicalGeometryOrFinalize runs when wl_output.done arrives. If
// zxdg_output_manager_v1 is bound, the logical geometry it reports
// supersedes the raw physical geometry and finalization waits for its own
// done event instead. Otherwise the physical geometry already collected is
// final.
func (c *Context) requestLogicalGeometryOrFinalize(st *outputState) {
	if st.xdgOutput != nil {
		return
	}
	c.finalizeOutput(st)
}

// finalizeOutput is idempotent: both wl_output.done (no xdg-output path)
// and zxdg_output_v1.done (xdg-output path) can reach it, but only the
// first call for a given output does anything.
func (c *Context) finalizeOutput(st *outputState) {
	if st.output.InitDone {
		return
	}
	st.output.InitDone = true

	if err := c.outputs.Add(st.output); err != nil {
		logger.Errorf("core: %v", err)
		return
	}
	c.recomputeGlobalSpace()

	if err := c.createOverlaySurface(st); err != nil {
		logger.Fatalf("core: create overlay surface for registry name %d: %v", st.registryName, err)
	}
}

// recomputeGlobalSpace is gap-tolerant: an interior void between outputs
// degrades the cursor walker's void-avoidance guarantee but must never
// itself bring the daemon down at runtime.
func (c *Context) recomputeGlobalSpace() {
	gs, err := geometry.Compute(c.outputs, true)
	if err != nil {
		logger.Errorf("core: compute global space: %v", err)
		return
	}
	c.globalSpace = gs
}

// createOverlaySurface allocates the per-output pixel buffer and anchors a
// layer-shell surface to all four edges of the output, with an empty input
// region so the overlay never intercepts pointer or keyboard events.
func (c *Context) createOverlaySurface(st *outputState) error {
	ov, err := overlay.New(st.output, c.rng)
	if err != nil {
		return fmt.Errorf("allocate pixel buffer: %w", err)
	}
	st.overlay = ov

	surface, err := c.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	st.surface = surface

	region, err := c.compositor.CreateRegion()
	if err != nil {
		return fmt.Errorf("create empty input region: %w", err)
	}
	if err := surface.SetInputRegion(region); err != nil {
		return fmt.Errorf("set empty input region: %w", err)
	}
	_ = region.Destroy()

	ls, err := c.layerShell.GetLayerSurface(surface, st.wlOutput, protocols.LayerOverlay, layerSurfaceNamespace)
	if err != nil {
		return fmt.Errorf("get_layer_surface: %w", err)
	}
	st.layerSurface = ls

	_ = ls.SetAnchor(protocols.AnchorAllEdges)
	_ = ls.SetExclusiveZone(-1)
	_ = ls.SetKeyboardInteractivity(protocols.KeyboardInteractivityNone)
	_ = ls.SetSize(uint32(st.output.Width), uint32(st.output.Height))

	ls.SetConfigureHandler(func(serial uint32, _, _ uint32) {
		_ = ls.AckConfigure(serial)
		if !st.overlay.Configured {
			st.overlay.Configured = true
			if err := c.attachBuffer(st); err != nil {
				logger.Errorf("core: attach overlay buffer for registry name %d: %v", st.registryName, err)
			}
		}
	})
	ls.SetClosedHandler(func() {
		logger.Debugf("core: compositor closed overlay surface for registry name %d", st.registryName)
	})

	return surface.Commit()
}

// attachBuffer creates the wl_shm_pool backing the overlay's pixel buffer,
// keeps the resulting wl_buffer around for every later redraw, and attaches
// it once so the first frame (blank, fully transparent) is on screen before
// any crosshair is painted. A release handler flips the overlay's
// frame_released flag back on whenever the compositor is done with the
// buffer's current contents, which is what lets redrawPending reuse this
// same buffer for every subsequent frame instead of drawing exactly once.
func (c *Context) attachBuffer(st *outputState) error {
	width, height, stride := st.overlay.Size()
	size := height * stride

	pool, err := c.shm.CreatePool(st.overlay.ShmFD(), size)
	if err != nil {
		return fmt.Errorf("create shm pool: %w", err)
	}
	defer func() { _ = pool.Destroy() }()

	buf, err := pool.CreateBuffer(0, width, height, stride, shmFormatArgb8888)
	if err != nil {
		return fmt.Errorf("create buffer: %w", err)
	}
	buf.SetReleaseHandler(func() {
		st.overlay.FrameReleased = true
	})
	st.buffer = buf

	if err := st.surface.Attach(buf, 0, 0); err != nil {
		return fmt.Errorf("attach buffer: %w", err)
	}
	if err := st.surface.DamageBuffer(0, 0, width, height); err != nil {
		return fmt.Errorf("damage buffer: %w", err)
	}
	return st.surface.Commit()
}

// handleOutputRemoved tears down every handle owned for a departed output
// and recomputes the global space without it.
func (c *Context) handleOutputRemoved(name uint32) {
	st, ok := c.outputByReg[name]
	if !ok {
		return
	}
	delete(c.outputByReg, name)
	c.outputs.Remove(name)

	if st.layerSurface != nil {
		_ = st.layerSurface.Destroy()
	}
	if st.xdgOutput != nil {
		_ = st.xdgOutput.Destroy()
	}
	st.wlOutput.Context().Unregister(st.wlOutput)

	c.recomputeGlobalSpace()
}
