// Package render commits region updates to a display driver, redrawing only
// the regions whose content changed since the last committed draw.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/zeebo/xxh3"

	"github.com/rileyhilliard/lcdash/internal/errors"
	"github.com/rileyhilliard/lcdash/internal/logger"
	"github.com/rileyhilliard/lcdash/internal/present"
	"github.com/rileyhilliard/lcdash/pkg/display"
)

// Options configure the device at initialization.
type Options struct {
	Brightness  int
	Orientation display.Orientation
	Background  lipgloss.Color
}

// DefaultOptions matches the panel's stock setup.
func DefaultOptions() Options {
	return Options{
		Brightness:  10,
		Orientation: display.Portrait,
		Background:  present.ColorBackground,
	}
}

// Stats describes one Render call.
type Stats struct {
	Full    bool // the base image was redrawn
	Drawn   int
	Skipped int
}

// Renderer owns the render state for one driver. It is not safe for
// concurrent use; the refresh loop is its only caller.
type Renderer struct {
	drv  display.Driver
	opts Options
	log  logger.Logger

	base image.Image
	bg   color.Color

	committed map[string]uint64
	full      bool
}

// New creates a renderer for a display of the given size. The blank base
// image is created here once and reused for every full redraw.
func New(drv display.Driver, bounds image.Rectangle, opts Options, log logger.Logger) *Renderer {
	if log == nil {
		log = logger.Noop()
	}
	bg := toRGB(opts.Background, color.Black)
	base := image.NewRGBA(bounds)
	draw.Draw(base, base.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	r := &Renderer{
		drv:  drv,
		opts: opts,
		log:  log,
		base: base,
		bg:   bg,
	}
	r.Reset()
	return r
}

// Init resets and configures the device, then forces a full redraw.
func (r *Renderer) Init() error {
	r.Reset()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"reset", r.drv.Reset},
		{"initialize", r.drv.InitializeComm},
		{"set brightness", func() error { return r.drv.SetBrightness(r.opts.Brightness) }},
		{"set orientation", func() error { return r.drv.SetOrientation(r.opts.Orientation) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return errors.WrapWithCode(err, errors.ErrDisplay,
				fmt.Sprintf("display %s failed", s.name),
				"Check the display connection; the next tick will retry")
		}
	}
	r.log.Debug("display initialized (brightness %d, %s)", r.opts.Brightness, r.opts.Orientation)
	return nil
}

// Reset forgets every committed region so the next Render redraws the whole
// screen.
func (r *Renderer) Reset() {
	r.committed = make(map[string]uint64)
	r.full = true
}

// NeedsFullRedraw reports whether the next Render starts from the base image.
func (r *Renderer) NeedsFullRedraw() bool {
	return r.full
}

// Render draws the updates that differ from what is on screen. A region's
// state is committed right after its draw succeeds. Any driver error aborts
// the render and resets all state, so the next call redraws everything.
func (r *Renderer) Render(updates []present.RegionUpdate) (Stats, error) {
	var stats Stats

	if r.full {
		if err := r.drv.DrawBitmap(r.base, r.base.Bounds().Min.X, r.base.Bounds().Min.Y); err != nil {
			r.Reset()
			return stats, errors.WrapWithCode(err, errors.ErrDisplay,
				"drawing background failed", "The screen will be fully redrawn next tick")
		}
		r.full = false
		stats.Full = true
	}

	for _, u := range updates {
		fp := fingerprint(u.Text, u.Color)
		if prev, ok := r.committed[u.Region.ID]; ok && prev == fp {
			stats.Skipped++
			continue
		}
		if err := r.drv.DrawText(r.textOp(u)); err != nil {
			r.Reset()
			return stats, errors.WrapWithCode(err, errors.ErrDisplay,
				fmt.Sprintf("drawing region %s failed", u.Region.ID),
				"The screen will be fully redrawn next tick")
		}
		r.committed[u.Region.ID] = fp
		stats.Drawn++
	}

	r.log.Debug("rendered %d regions, %d unchanged (full=%v)", stats.Drawn, stats.Skipped, stats.Full)
	return stats, nil
}

func (r *Renderer) textOp(u present.RegionUpdate) display.TextOp {
	reg := u.Region
	return display.TextOp{
		Name:       reg.ID,
		Text:       u.Text,
		X:          reg.X,
		Y:          reg.Y,
		Width:      reg.W,
		Height:     reg.H,
		Font:       reg.Font,
		Size:       reg.Size,
		Color:      toRGB(u.Color, color.White),
		Background: r.bg,
		Align:      reg.Align,
		Anchor:     reg.Anchor,
	}
}

// fingerprint identifies what a region shows. Text and colour are separated
// by a NUL so ("ab", "c") and ("a", "bc") differ.
func fingerprint(text string, c lipgloss.Color) uint64 {
	buf := make([]byte, 0, len(text)+1+len(c))
	buf = append(buf, text...)
	buf = append(buf, 0)
	buf = append(buf, c...)
	return xxh3.Hash(buf)
}

// toRGB converts a hex palette colour, falling back when it does not parse.
func toRGB(c lipgloss.Color, fallback color.Color) color.Color {
	rgb, err := colorful.Hex(string(c))
	if err != nil {
		return fallback
	}
	return rgb
}
