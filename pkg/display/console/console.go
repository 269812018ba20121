// Package console logs every display call as a line of styled text. It is
// the fallback preview when stdout is not a terminal, e.g. under systemd.
package console

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rileyhilliard/lcdash/pkg/display"
)

// Driver writes one line per call to w.
type Driver struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
	label    lipgloss.Style
}

// New creates a console driver. Colours are emitted only when w supports them.
func New(w io.Writer) *Driver {
	r := lipgloss.NewRenderer(w)
	return &Driver{
		w:        w,
		renderer: r,
		label:    r.NewStyle().Faint(true),
	}
}

func (d *Driver) printf(format string, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := fmt.Fprintf(d.w, format, args...)
	return err
}

func (d *Driver) tag(name string) string {
	return d.label.Render(fmt.Sprintf("%-20s", name))
}

func (d *Driver) Reset() error {
	return d.printf("%s\n", d.tag("reset"))
}

func (d *Driver) InitializeComm() error {
	return d.printf("%s\n", d.tag("initialize"))
}

func (d *Driver) SetBrightness(level int) error {
	return d.printf("%s %d%%\n", d.tag("brightness"), level)
}

func (d *Driver) SetOrientation(o display.Orientation) error {
	return d.printf("%s %s\n", d.tag("orientation"), o)
}

func (d *Driver) DrawBitmap(img image.Image, x, y int) error {
	b := img.Bounds()
	return d.printf("%s %dx%d at (%d,%d)\n", d.tag("bitmap"), b.Dx(), b.Dy(), x, y)
}

func (d *Driver) DrawText(op display.TextOp) error {
	style := d.renderer.NewStyle().Bold(op.Font == display.FontBold)
	if hex, ok := toHex(op.Color); ok {
		style = style.Foreground(lipgloss.Color(hex))
	}
	if hex, ok := toHex(op.Background); ok {
		style = style.Background(lipgloss.Color(hex))
	}
	name := op.Name
	if name == "" {
		name = fmt.Sprintf("(%d,%d)", op.X, op.Y)
	}
	return d.printf("%s %s\n", d.tag(name), style.Render(op.Text))
}

func (d *Driver) Close() error {
	return nil
}

func toHex(c color.Color) (string, bool) {
	if c == nil {
		return "", false
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "", false
	}
	return cf.Hex(), true
}

var _ display.Driver = (*Driver)(nil)
