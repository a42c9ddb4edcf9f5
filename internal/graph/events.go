package graph

import "github.com/lumipallolabs/nanovis/internal/model"

// Pointer is the pointer state accompanying an interaction, in logical
// canvas coordinates.
type Pointer struct {
	X, Y   float64
	Button int
	Ctrl   bool
	Meta   bool
	Shift  bool
}

// Wheel is a wheel or trackpad scroll. Handlers set Prevented when they
// consume the event.
type Wheel struct {
	Pointer
	DeltaX, DeltaY float64
	Prevented      bool
}

// observers is an ordered list of callbacks of one kind
type observers[F any] struct {
	nextID int
	list   []observer[F]
}

type observer[F any] struct {
	id int
	fn F
}

func (o *observers[F]) add(fn F) (remove func()) {
	o.nextID++
	id := o.nextID
	o.list = append(o.list, observer[F]{id: id, fn: fn})
	return func() {
		for i, ob := range o.list {
			if ob.id == id {
				o.list = append(o.list[:i:i], o.list[i+1:]...)
				return
			}
		}
	}
}

// each calls fn for every observer registered when each was called
func (o *observers[F]) each(fn func(F)) {
	snapshot := make([]observer[F], len(o.list))
	copy(snapshot, o.list)
	for _, ob := range snapshot {
		fn(ob.fn)
	}
}

func (o *observers[F]) count() int { return len(o.list) }

// events holds the chart's listeners, one list per event kind
type events struct {
	hover observers[func(*model.Node, *Pointer)]
	click observers[func(*model.Node, *Pointer)]
	sel   observers[func(*model.Node)]
	leave observers[func(*Pointer)]
}

// OnHover subscribes to hover changes. The node is nil when the pointer
// is not over a node.
func (c *Context) OnHover(fn func(node *model.Node, p *Pointer)) (unsubscribe func()) {
	return c.events.hover.add(fn)
}

// OnClick subscribes to clicks on nodes
func (c *Context) OnClick(fn func(node *model.Node, p *Pointer)) (unsubscribe func()) {
	return c.events.click.add(fn)
}

// OnSelect subscribes to focus changes. The node is nil when focus is
// cleared.
func (c *Context) OnSelect(fn func(node *model.Node)) (unsubscribe func()) {
	return c.events.sel.add(fn)
}

// OnLeave subscribes to the pointer leaving the chart
func (c *Context) OnLeave(fn func(p *Pointer)) (unsubscribe func()) {
	return c.events.leave.add(fn)
}

func (c *Context) EmitHover(node *model.Node, p *Pointer) {
	c.events.hover.each(func(fn func(*model.Node, *Pointer)) { fn(node, p) })
}

func (c *Context) EmitClick(node *model.Node, p *Pointer) {
	c.events.click.each(func(fn func(*model.Node, *Pointer)) { fn(node, p) })
}

func (c *Context) EmitSelect(node *model.Node) {
	c.events.sel.each(func(fn func(*model.Node)) { fn(node) })
}

// PointerLeave reports that the pointer left the chart's area
func (c *Context) PointerLeave(p *Pointer) {
	c.events.leave.each(func(fn func(*Pointer)) { fn(p) })
}
