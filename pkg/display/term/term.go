// Package term previews the dashboard in a terminal. Pixel coordinates are
// mapped onto character cells, so a 320x480 panel becomes a 40x30 grid.
package term

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/rileyhilliard/lcdash/pkg/display"
)

// Pixel size of one character cell.
const (
	CellWidth  = 8
	CellHeight = 16
)

// ErrNotInitialized is returned by draws before InitializeComm.
var ErrNotInitialized = errors.New("terminal display not initialized")

// Driver is a display.Driver backed by a tcell screen.
type Driver struct {
	mu          sync.Mutex
	newScreen   func() (tcell.Screen, error)
	screen      tcell.Screen
	initialized bool
	closed      bool
	brightness  int
	orientation display.Orientation

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a driver for the controlling terminal. The terminal is not
// touched until InitializeComm.
func New() *Driver {
	return &Driver{newScreen: tcell.NewScreen, quit: make(chan struct{})}
}

// NewWithScreen creates a driver over an existing screen, such as a
// tcell simulation screen.
func NewWithScreen(s tcell.Screen) *Driver {
	return &Driver{
		newScreen: func() (tcell.Screen, error) { return s, nil },
		quit:      make(chan struct{}),
	}
}

// Done is closed when the user asks to quit (q, Esc or Ctrl-C). The terminal
// is in raw mode while the preview runs, so those keys never become signals.
func (d *Driver) Done() <-chan struct{} {
	return d.quit
}

// Reset blanks the screen.
func (d *Driver) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotInitialized
	}
	if d.initialized {
		d.screen.Clear()
		d.screen.Show()
	}
	return nil
}

// InitializeComm takes over the terminal. Calling it again is a no-op.
func (d *Driver) InitializeComm() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrNotInitialized
	}
	if d.initialized {
		return nil
	}
	if d.screen == nil {
		s, err := d.newScreen()
		if err != nil {
			return err
		}
		d.screen = s
	}
	if err := d.screen.Init(); err != nil {
		return err
	}
	d.screen.HideCursor()
	d.initialized = true
	go d.pollEvents(d.screen)
	return nil
}

func (d *Driver) pollEvents(s tcell.Screen) {
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				d.quitOnce.Do(func() { close(d.quit) })
			}
		}
	}
}

// SetBrightness records the level. Terminals have no backlight control.
func (d *Driver) SetBrightness(level int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brightness = level
	return nil
}

// Brightness returns the last level set.
func (d *Driver) Brightness() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

// SetOrientation records the orientation. The preview is always upright.
func (d *Driver) SetOrientation(o display.Orientation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orientation = o
	return nil
}

// DrawBitmap paints every cell covered by img with the colour of the pixel
// at the cell's centre.
func (d *Driver) DrawBitmap(img image.Image, x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized || d.closed {
		return ErrNotInitialized
	}

	b := img.Bounds()
	for cy := 0; cy*CellHeight < b.Dy(); cy++ {
		for cx := 0; cx*CellWidth < b.Dx(); cx++ {
			px := b.Min.X + min(cx*CellWidth+CellWidth/2, b.Dx()-1)
			py := b.Min.Y + min(cy*CellHeight+CellHeight/2, b.Dy()-1)
			style := tcell.StyleDefault.Background(toTcell(img.At(px, py)))
			d.screen.SetContent(x/CellWidth+cx, y/CellHeight+cy, ' ', nil, style)
		}
	}
	d.screen.Show()
	return nil
}

// DrawText clears the op's box with its background, then writes the text
// aligned inside it, truncating what does not fit.
func (d *Driver) DrawText(op display.TextOp) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized || d.closed {
		return ErrNotInitialized
	}

	col, row := op.X/CellWidth, op.Y/CellHeight
	cols := max(1, op.Width/CellWidth)
	rows := max(1, op.Height/CellHeight)

	bg := tcell.StyleDefault.Background(toTcell(op.Background))
	if op.Width > 0 && op.Height > 0 {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				d.screen.SetContent(col+c, row+r, ' ', nil, bg)
			}
		}
	}

	runes := []rune(op.Text)
	if len(runes) > cols {
		runes = runes[:cols]
	}
	start := col
	if op.Align == display.AlignRight {
		start = col + cols - utf8.RuneCountInString(string(runes))
	}
	style := bg.Foreground(toTcell(op.Color)).Bold(op.Font == display.FontBold)
	for i, r := range runes {
		d.screen.SetContent(start+i, row, r, nil, style)
	}
	d.screen.Show()
	return nil
}

// Close restores the terminal.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.initialized {
		d.screen.Fini()
	}
	return nil
}

func toTcell(c color.Color) tcell.Color {
	if c == nil {
		return tcell.ColorDefault
	}
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

var _ display.Driver = (*Driver)(nil)
