package core

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/ArrayBolt3/kloak-v2/internal/capture"
	"github.com/ArrayBolt3/kloak-v2/internal/geometry"
	"github.com/ArrayBolt3/kloak-v2/internal/logger"
	"github.com/ArrayBolt3/kloak-v2/internal/scheduler"
)

// Run blocks until an unrecoverable failure or SIGINT/SIGTERM, running the
// single-threaded cooperative loop described by the concurrency model:
// drain compositor messages, admit or apply capture events, release due
// packets, redraw pending overlays, flush writes, then block in one
// multiplex wait.
func (c *Context) Run() error {
	sigPipeR, sigPipeW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("core: signal self-pipe: %w", err)
	}
	defer sigPipeR.Close()
	defer sigPipeW.Close()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range sigCh {
			_, _ = sigPipeW.Write([]byte{0})
		}
	}()
	defer signal.Stop(sigCh)

	displayFd := c.wlCtx.Fd()
	c.scheduleNextKeepAlive(c.clk.NowMillis())

	for {
		if err := c.display.Dispatch(); err != nil {
			return fmt.Errorf("core: dispatch compositor messages: %w", err)
		}

		if err := c.drainCapture(); err != nil {
			return err
		}

		now := c.clk.NowMillis()
		c.releaseDue(now)
		c.redrawPending()

		if err := c.wlCtx.Flush(); err != nil {
			return fmt.Errorf("core: flush compositor writes: %w", err)
		}

		if now >= c.nextKeepAliveAt {
			c.emitKeepAlive(now)
			c.scheduleNextKeepAlive(now)
		}

		timeoutMs := c.pollTimeoutMs(now)
		if ka := int(c.nextKeepAliveAt - now); ka < 0 {
			timeoutMs = 0
		} else if timeoutMs < 0 || ka < timeoutMs {
			timeoutMs = ka
		}

		fds := []unix.PollFd{
			{Fd: int32(displayFd), Events: unix.POLLIN},
			{Fd: int32(sigPipeR.Fd()), Events: unix.POLLIN},
		}
		for _, fd := range c.capture.Fds() {
			fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		}

		n, err := unix.Poll(fds, timeoutMs)
		if err != nil && err != unix.EINTR {
			return fmt.Errorf("core: poll: %w", err)
		}
		if n <= 0 {
			continue
		}

		if fds[1].Revents&unix.POLLIN != 0 {
			logger.Infof("core: received shutdown signal")
			return c.shutdown()
		}
	}
}

// drainCapture pulls every currently available raw event from every
// grabbed device, classifies it, and either applies it immediately
// (pointer motion) or admits it into the delay scheduler (everything
// else). It also re-scans for newly appeared devices, the daemon's
// hot-plug path for physical input.
func (c *Context) drainCapture() error {
	if _, err := c.capture.Rescan(); err != nil {
		return fmt.Errorf("core: rescan capture devices: %w", err)
	}

	now := c.clk.NowMillis()
	for _, fd := range c.capture.Fds() {
		raws, err := c.capture.ReadFd(fd)
		if err != nil {
			return fmt.Errorf("core: read capture device: %w", err)
		}
		for _, raw := range raws {
			packet, ok := capture.Classify(raw)
			if !ok {
				continue
			}
			c.handlePacket(packet, now)
		}
	}
	return nil
}

func (c *Context) handlePacket(p scheduler.InputPacket, now int64) {
	switch p.Kind {
	case scheduler.PointerMotionRel:
		c.applyRelativeMotion(p.DX, p.DY)
	default:
		c.scheduler.Admit(p, now)
	}
}

// applyRelativeMotion moves the cursor model immediately: motion packets
// are never queued, since delaying the pointer's position itself (as
// opposed to delaying when that position is revealed to the compositor)
// would make the cursor feel laggy without buying any anonymity.
func (c *Context) applyRelativeMotion(dx, dy int32) {
	c.prevCursor = c.cursor
	desired := geometry.Position{X: c.cursor.X + dx, Y: c.cursor.Y + dy}
	c.cursor = c.walker.Walk(c.prevCursor, desired)
	c.markOverlaysPending(c.prevCursor, c.cursor)
}

// releaseDue drains every packet whose delayed release time has arrived
// and forwards it to the virtual-input handles, in admit order.
func (c *Context) releaseDue(now int64) {
	for _, p := range c.scheduler.DrainReady(now) {
		if err := c.emitReleasedPacket(p, now); err != nil {
			logger.Errorf("core: emit released packet: %v", err)
		}
	}
}

func (c *Context) emitReleasedPacket(p scheduler.InputPacket, now int64) error {
	timeMs := uint32(now)
	switch p.Kind {
	case scheduler.PointerButton:
		return c.vin.EmitButton(timeMs, uint32(p.ButtonCode), p.ButtonState == scheduler.StatePressed)
	case scheduler.PointerScroll:
		return c.vin.EmitScroll(timeMs, p.AxisCode, p.AxisValue, p.AxisSrc)
	case scheduler.Key:
		return c.vin.EmitKey(timeMs, uint32(p.KeyCode), p.KeyState == scheduler.StatePressed)
	default:
		return nil
	}
}

// redrawPending draws every overlay that has a pending frame and has had
// its previous buffer released by the compositor, re-attaches that same
// buffer (its contents were just rewritten in place by Draw), and submits
// the damage Draw returns. Re-attaching on every frame, rather than only
// once at configure time, is what hands the compositor a new frame to
// composite each time; without it the surface would keep showing whatever
// was in the buffer the one time it was attached.
func (c *Context) redrawPending() {
	for _, st := range c.outputByReg {
		if st.overlay == nil || !st.overlay.ShouldDraw() {
			continue
		}
		damages := st.overlay.Draw(c.cursor.X, c.cursor.Y)
		if len(damages) == 0 {
			continue
		}
		if err := st.surface.Attach(st.buffer, 0, 0); err != nil {
			logger.Errorf("core: attach overlay buffer: %v", err)
			continue
		}
		for _, d := range damages {
			if err := st.surface.DamageBuffer(d.X, d.Y, d.W, d.H); err != nil {
				logger.Errorf("core: damage buffer: %v", err)
			}
		}
		if err := st.surface.Commit(); err != nil {
			logger.Errorf("core: commit overlay surface: %v", err)
		}
	}
}

// markOverlaysPending flags frame_pending on every overlay whose output
// contained either the previous or the new cursor position, since both
// need their crosshair cleared or redrawn.
func (c *Context) markOverlaysPending(prev, cur geometry.Position) {
	for _, st := range c.outputByReg {
		if st.overlay == nil {
			continue
		}
		if st.output.Contains(prev.X, prev.Y) || st.output.Contains(cur.X, cur.Y) {
			st.overlay.FramePending = true
		}
	}
}

// pollTimeoutMs computes the multiplex wait's timeout from the scheduler's
// next release time, or blocks indefinitely (poll timeout -1) when the
// queue is empty.
func (c *Context) pollTimeoutMs(now int64) int {
	next, ok := c.scheduler.NextReleaseTime()
	if !ok {
		return -1
	}
	remaining := next - now
	if remaining < 0 {
		remaining = 0
	}
	if remaining > int64(^uint32(0)>>1) {
		remaining = int64(^uint32(0) >> 1)
	}
	return int(remaining)
}

// emitKeepAlive resends the cursor's current position so idle compositors
// never hide it.
func (c *Context) emitKeepAlive(now int64) {
	first := c.outputs.First()
	if first == nil {
		return
	}
	space := c.globalSpace
	if err := c.vin.EmitMotionAbsolute(uint32(now), c.cursor.X, c.cursor.Y, uint32(space.Width), uint32(space.Height)); err != nil {
		logger.Errorf("core: keep-alive motion: %v", err)
	}
}

// scheduleNextKeepAlive draws the next keep-alive deadline uniformly from
// [now, now+max_delay_ms], the same decorrelation discipline every other
// emitted event gets, rather than a fixed period that would drift out of
// step with how aggressively max_delay_ms is configured.
func (c *Context) scheduleNextKeepAlive(now int64) {
	c.nextKeepAliveAt = now + c.rng.UniformIntClosed(0, c.cfg.MaxDelayMs)
}

// shutdown releases every device grab and destroys every Wayland object
// this process created, so a kill signal never leaves an input device
// exclusively grabbed by a dead process.
func (c *Context) shutdown() error {
	c.shuttingDown = true
	c.capture.Close()

	for name := range c.outputByReg {
		c.handleOutputRemoved(name)
	}

	return c.wlCtx.Close()
}
