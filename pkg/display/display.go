// Package display defines the contract between the dashboard and a
// physical or virtual screen. The dashboard never talks to a transport
// (serial, USB, terminal) directly; it only issues the calls below.
package display

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Orientation is the screen rotation.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
	ReversePortrait
	ReverseLandscape
)

// String returns the orientation name accepted by ParseOrientation.
func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	case ReversePortrait:
		return "reverse_portrait"
	case ReverseLandscape:
		return "reverse_landscape"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// ParseOrientation parses an orientation name (case-insensitive).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait", "":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	case "reverse_portrait":
		return ReversePortrait, nil
	case "reverse_landscape":
		return ReverseLandscape, nil
	default:
		return Portrait, fmt.Errorf("unknown orientation %q", s)
	}
}

// Align is the horizontal text alignment inside a text box.
type Align string

const (
	AlignLeft  Align = "left"
	AlignRight Align = "right"
)

// Font files understood by the device firmware library.
const (
	FontRegular = "roboto/Roboto-Regular.ttf"
	FontBold    = "roboto/Roboto-Bold.ttf"
)

// TextOp is a single text draw.
type TextOp struct {
	// Name identifies the screen region. Drivers may use it for diagnostics.
	Name string

	Text string
	X, Y int

	// Width and Height describe the text box. When both are positive the
	// driver must paint the whole box with Background before drawing Text,
	// so a shorter string never leaves characters of a longer one behind.
	Width, Height int

	Font       string
	Size       int
	Color      color.Color
	Background color.Color
	Align      Align

	// Anchor is the PIL-style text anchor ("lt", "rt", ...).
	Anchor string
}

// Driver is implemented by every screen backend.
type Driver interface {
	// Reset hard-resets the device.
	Reset() error

	// InitializeComm opens the communication channel. It is called after
	// Reset and before any draw.
	InitializeComm() error

	// SetBrightness sets the backlight level (0-100).
	SetBrightness(level int) error

	// SetOrientation rotates the coordinate system.
	SetOrientation(o Orientation) error

	// DrawBitmap blits img with its top-left corner at (x, y).
	DrawBitmap(img image.Image, x, y int) error

	// DrawText draws one text box. See TextOp for the box-clearing rule.
	DrawText(op TextOp) error

	// Close releases the device.
	Close() error
}
