package graph

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween maps wall-clock time to animation progress. Progress depends only
// on the start, duration, easing and the time asked about.
type Tween struct {
	Start    time.Time
	Duration time.Duration
	Ease     ease.TweenFunc
}

// NewTween starts a tween at start
func NewTween(start time.Time, duration time.Duration, fn ease.TweenFunc) Tween {
	return Tween{Start: start, Duration: duration, Ease: fn}
}

// Progress returns the eased progress at now in [0, 1] and whether the
// animation has finished. Times before the start or past the end count as
// finished with progress 1.
func (tw Tween) Progress(now time.Time) (float64, bool) {
	elapsed := now.Sub(tw.Start)
	if tw.Duration <= 0 || elapsed < 0 || elapsed > tw.Duration {
		return 1, true
	}
	fn := tw.Ease
	if fn == nil {
		fn = ease.Linear
	}
	g := gween.New(0, 1, float32(tw.Duration.Seconds()), fn)
	v, _ := g.Set(float32(elapsed.Seconds()))
	return float64(v), false
}
