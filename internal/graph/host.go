package graph

import "time"

// Host is the environment a chart lives in. It supplies the chart's size,
// the clock and frame scheduling, and global listeners.
type Host interface {
	// ClientSize is the chart's size in logical pixels
	ClientSize() (width, height float64)
	// PixelRatio is the number of device pixels per logical pixel
	PixelRatio() float64
	Now() time.Time

	// RequestFrame schedules fn for the next frame
	RequestFrame(fn func()) (cancel func())
	// Defer runs fn once the current event has been handled
	Defer(fn func())

	OnResize(fn func()) (remove func())
	OnWheel(fn func(*Wheel)) (remove func())
	OnSchemeChange(fn func()) (remove func())

	// Detach removes the chart from the host
	Detach()
}

// FrameInterval is the frame period Loop.Drain advances the clock by
const FrameInterval = 16 * time.Millisecond

// Loop is a Host driven by its owner: frames and deferred calls run only
// when the owner pumps them. Tests drive it with a manual clock; the
// terminal playground sets Clock to time.Now.
type Loop struct {
	// Clock, when set, replaces the manual clock
	Clock func() time.Time

	width, height float64
	ratio         float64
	now           time.Time

	frames   observers[func()]
	deferred []func()
	resize   observers[func()]
	wheel    observers[func(*Wheel)]
	scheme   observers[func()]
	detached bool
}

// NewLoop returns a loop with a manual clock at a fixed epoch
func NewLoop(width, height, ratio float64) *Loop {
	if ratio <= 0 {
		ratio = 1
	}
	return &Loop{
		width:  width,
		height: height,
		ratio:  ratio,
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (l *Loop) ClientSize() (float64, float64) { return l.width, l.height }
func (l *Loop) PixelRatio() float64 { return l.ratio }

func (l *Loop) Now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return l.now
}

// Advance moves the manual clock forward
func (l *Loop) Advance(d time.Duration) {
	l.now = l.now.Add(d)
}

func (l *Loop) RequestFrame(fn func()) func() {
	return l.frames.add(fn)
}

func (l *Loop) Defer(fn func()) {
	l.deferred = append(l.deferred, fn)
}

func (l *Loop) OnResize(fn func()) func() { return l.resize.add(fn) }
func (l *Loop) OnWheel(fn func(*Wheel)) func() { return l.wheel.add(fn) }
func (l *Loop) OnSchemeChange(fn func()) func() { return l.scheme.add(fn) }
func (l *Loop) Detach() { l.detached = true }

// Detached reports whether a chart detached itself
func (l *Loop) Detached() bool { return l.detached }

// SetSize changes the client size and notifies resize listeners
func (l *Loop) SetSize(width, height float64) {
	l.width, l.height = width, height
	l.resize.each(func(fn func()) { fn() })
}

// SetPixelRatio changes the ratio and notifies resize listeners
func (l *Loop) SetPixelRatio(ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	l.ratio = ratio
	l.resize.each(func(fn func()) { fn() })
}

// DispatchWheel delivers w to the wheel listeners and reports whether one
// of them consumed it.
func (l *Loop) DispatchWheel(w *Wheel) bool {
	l.wheel.each(func(fn func(*Wheel)) { fn(w) })
	return w.Prevented
}

// ChangeScheme notifies color scheme listeners
func (l *Loop) ChangeScheme() {
	l.scheme.each(func(fn func()) { fn() })
}

// Listeners counts the registered resize, wheel and scheme listeners
func (l *Loop) Listeners() int {
	return l.resize.count() + l.wheel.count() + l.scheme.count()
}

// Pending reports whether a frame or deferred call is waiting
func (l *Loop) Pending() bool {
	return len(l.deferred) > 0 || l.frames.count() > 0
}

// RunFrame runs the deferred calls, then the frames requested so far.
// Frames requested while running wait for the next call. It returns the
// number of callbacks run.
func (l *Loop) RunFrame() int {
	n := 0
	for len(l.deferred) > 0 {
		fn := l.deferred[0]
		l.deferred = l.deferred[1:]
		fn()
		n++
	}
	pending := l.frames
	l.frames = observers[func()]{nextID: pending.nextID}
	pending.each(func(fn func()) {
		fn()
		n++
	})
	return n
}

// Drain runs frames, advancing the manual clock by FrameInterval before
// each, until nothing is pending or max frames have run.
func (l *Loop) Drain(max int) int {
	frames := 0
	for frames < max && l.Pending() {
		l.Advance(FrameInterval)
		l.RunFrame()
		frames++
	}
	return frames
}

var _ Host = (*Loop)(nil)
