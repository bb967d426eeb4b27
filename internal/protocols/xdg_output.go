package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names for logical output geometry.
const (
	XdgOutputManagerInterface = "zxdg_output_manager_v1"
	XdgOutputInterface        = "zxdg_output_v1"
)

// XdgOutputManager creates logical-geometry handles for wl_output globals.
// Where the raw wl_output reports physical position and mode, this manager
// reports the logical (possibly scaled, possibly transformed) position and
// size that actually matters for placing the virtual cursor.
type XdgOutputManager struct {
	wl.BaseProxy
}

// NewXdgOutputManager wraps the registry-bound zxdg_output_manager_v1 global.
func NewXdgOutputManager(ctx *wl.Context) *XdgOutputManager {
	m := &XdgOutputManager{}
	m.SetContext(ctx)
	return m
}

// GetXdgOutput creates a logical-geometry handle for output.
func (m *XdgOutputManager) GetXdgOutput(output *wl.Output) (*XdgOutput, error) {
	xo := &XdgOutput{}
	xo.SetContext(m.Context())
	xo.SetID(m.Context().AllocateID())
	m.Context().Register(xo)

	// Opcode 0: get_xdg_output
	const opcode = 0
	err := m.Context().SendRequest(m, opcode, xo, output)
	if err != nil {
		m.Context().Unregister(xo)
		return nil, err
	}
	return xo, nil
}

// Destroy destroys the xdg-output manager binding.
func (m *XdgOutputManager) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events (the manager itself has none).
func (m *XdgOutputManager) Dispatch(_ *wl.Event) {}

// XdgOutput is one output's logical position and size.
type XdgOutput struct {
	wl.BaseProxy
	logicalPositionHandler func(x, y int32)
	logicalSizeHandler     func(width, height int32)
	doneHandler            func()
}

// SetLogicalPositionHandler registers the callback for logical_position.
func (o *XdgOutput) SetLogicalPositionHandler(h func(x, y int32)) {
	o.logicalPositionHandler = h
}

// SetLogicalSizeHandler registers the callback for logical_size.
func (o *XdgOutput) SetLogicalSizeHandler(h func(width, height int32)) {
	o.logicalSizeHandler = h
}

// SetDoneHandler registers the callback for done (superseded by
// wl_output.done since version 3, but still dispatched here for older
// compositors).
func (o *XdgOutput) SetDoneHandler(h func()) {
	o.doneHandler = h
}

// Destroy destroys the logical-geometry handle.
func (o *XdgOutput) Destroy() error {
	const opcode = 0
	err := o.Context().SendRequest(o, opcode)
	o.Context().Unregister(o)
	return err
}

// Dispatch handles logical_position, logical_size, done, name, and
// description events.
func (o *XdgOutput) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // logical_position
		x := event.Int32()
		y := event.Int32()
		if o.logicalPositionHandler != nil {
			o.logicalPositionHandler(x, y)
		}
	case 1: // logical_size
		w := event.Int32()
		h := event.Int32()
		if o.logicalSizeHandler != nil {
			o.logicalSizeHandler(w, h)
		}
	case 2: // done
		if o.doneHandler != nil {
			o.doneHandler()
		}
	case 3: // name
		_ = event.String()
	case 4: // description
		_ = event.String()
	}
}
