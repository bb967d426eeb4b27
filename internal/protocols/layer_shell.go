package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names for the layer-shell overlay surfaces.
const (
	LayerShellInterface  = "zwlr_layer_shell_v1"
	LayerSurfaceInterface = "zwlr_layer_surface_v1"
)

// Layer values for get_layer_surface's layer argument.
const (
	LayerBackground uint32 = 0
	LayerBottom     uint32 = 1
	LayerTop        uint32 = 2
	LayerOverlay    uint32 = 3
)

// Anchor bits for SetAnchor. Anchoring all four edges makes the compositor
// size the surface to the full output.
const (
	AnchorTop    uint32 = 1 << 0
	AnchorBottom uint32 = 1 << 1
	AnchorLeft   uint32 = 1 << 2
	AnchorRight  uint32 = 1 << 3
)

const AnchorAllEdges = AnchorTop | AnchorBottom | AnchorLeft | AnchorRight

// KeyboardInteractivityNone keeps the overlay from ever receiving keyboard
// focus: it is display-only.
const KeyboardInteractivityNone uint32 = 0

// LayerShell manages layer-surface objects, one per output overlay.
type LayerShell struct {
	wl.BaseProxy
}

// NewLayerShell wraps the registry-bound zwlr_layer_shell_v1 global.
func NewLayerShell(ctx *wl.Context) *LayerShell {
	s := &LayerShell{}
	s.SetContext(ctx)
	return s
}

// GetLayerSurface requests a layer surface for surface, anchored to
// output, at the given layer, identified by namespace.
func (s *LayerShell) GetLayerSurface(surface *wl.Surface, output *wl.Output, layer uint32, namespace string) (*LayerSurface, error) {
	ls := &LayerSurface{}
	ls.SetContext(s.Context())
	ls.SetID(s.Context().AllocateID())
	s.Context().Register(ls)

	// Opcode 0: get_layer_surface
	const opcode = 0
	err := s.Context().SendRequest(s, opcode, ls, surface, output, layer, namespace)
	if err != nil {
		s.Context().Unregister(ls)
		return nil, err
	}
	return ls, nil
}

// Destroy destroys the layer-shell manager binding.
func (s *LayerShell) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := s.Context().SendRequest(s, opcode)
	s.Context().Unregister(s)
	return err
}

// Dispatch handles incoming events (the manager itself has none).
func (s *LayerShell) Dispatch(_ *wl.Event) {}

// LayerSurface is one overlay's anchored, sized layer-shell surface.
type LayerSurface struct {
	wl.BaseProxy
	configureHandler func(serial uint32, width, height uint32)
	closedHandler    func()
}

// SetConfigureHandler registers the callback invoked when the compositor
// assigns this surface its size.
func (l *LayerSurface) SetConfigureHandler(h func(serial uint32, width, height uint32)) {
	l.configureHandler = h
}

// SetClosedHandler registers the callback invoked when the compositor asks
// this surface to close.
func (l *LayerSurface) SetClosedHandler(h func()) {
	l.closedHandler = h
}

// SetSize sets the surface's requested logical size.
func (l *LayerSurface) SetSize(width, height uint32) error {
	const opcode = 0
	return l.Context().SendRequest(l, opcode, width, height)
}

// SetAnchor sets which edges of the output this surface is anchored to.
func (l *LayerSurface) SetAnchor(anchor uint32) error {
	const opcode = 1
	return l.Context().SendRequest(l, opcode, anchor)
}

// SetExclusiveZone reserves (or, with -1, disclaims) space other surfaces
// must not occupy. An overlay reticle always passes -1.
func (l *LayerSurface) SetExclusiveZone(zone int32) error {
	const opcode = 2
	return l.Context().SendRequest(l, opcode, zone)
}

// SetKeyboardInteractivity controls whether this surface can receive
// keyboard focus.
func (l *LayerSurface) SetKeyboardInteractivity(v uint32) error {
	const opcode = 4
	return l.Context().SendRequest(l, opcode, v)
}

// AckConfigure acknowledges a configure event by serial.
func (l *LayerSurface) AckConfigure(serial uint32) error {
	const opcode = 6
	return l.Context().SendRequest(l, opcode, serial)
}

// Destroy destroys the layer surface.
func (l *LayerSurface) Destroy() error {
	const opcode = 7
	err := l.Context().SendRequest(l, opcode)
	l.Context().Unregister(l)
	return err
}

// SetLayer moves the surface to a different stacking layer.
func (l *LayerSurface) SetLayer(layer uint32) error {
	const opcode = 8
	return l.Context().SendRequest(l, opcode, layer)
}

// Dispatch handles configure and closed events.
func (l *LayerSurface) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // configure
		serial := event.Uint32()
		width := event.Uint32()
		height := event.Uint32()
		if l.configureHandler != nil {
			l.configureHandler(serial, width, height)
		}
	case 1: // closed
		if l.closedHandler != nil {
			l.closedHandler()
		}
		l.Context().Unregister(l)
	}
}
