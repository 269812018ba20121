package present

import (
	"fmt"
	"image"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/lcdash/internal/errors"
	"github.com/rileyhilliard/lcdash/internal/telemetry"
	"github.com/rileyhilliard/lcdash/pkg/display"
)

// Layout holds every geometric parameter of the screen. Regions are derived
// from it once, by walking a cursor down the screen; nothing else hard-codes
// coordinates.
type Layout struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	MarginX int `yaml:"margin_x"`

	ClockY    int `yaml:"clock_y"`
	ClockSize int `yaml:"clock_size"`
	HostY     int `yaml:"host_y"`
	HostSize  int `yaml:"host_size"`

	// Top is the y of the first section title.
	Top            int `yaml:"top"`
	TitleSize      int `yaml:"title_size"`
	TextSize       int `yaml:"text_size"`
	HeaderGap      int `yaml:"header_gap"`
	RowHeight      int `yaml:"row_height"`
	SectionGap     int `yaml:"section_gap"`
	TableHeaderGap int `yaml:"table_header_gap"`
	TableRowHeight int `yaml:"table_row_height"`

	// Table columns, left to right: label, left value, divider, right value.
	LabelRight   int `yaml:"label_right"`
	ColumnGap    int `yaml:"column_gap"`
	LeftRight    int `yaml:"left_right"`
	DividerX     int `yaml:"divider_x"`
	DividerWidth int `yaml:"divider_width"`
	RightRight   int `yaml:"right_right"`
}

// DefaultLayout is tuned for the 320x480 portrait panel.
func DefaultLayout() Layout {
	return Layout{
		Width:          320,
		Height:         480,
		MarginX:        5,
		ClockY:         5,
		ClockSize:      24,
		HostY:          34,
		HostSize:       16,
		Top:            60,
		TitleSize:      24,
		TextSize:       20,
		HeaderGap:      30,
		RowHeight:      20,
		SectionGap:     20,
		TableHeaderGap: 34,
		TableRowHeight: 26,
		LabelRight:     100,
		ColumnGap:      5,
		LeftRight:      205,
		DividerX:       210,
		DividerWidth:   10,
		RightRight:     315,
	}
}

// Bounds returns the display rectangle.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height)
}

// Validate checks that the parameters describe a drawable screen.
func (l Layout) Validate() error {
	positive := map[string]int{
		"width":            l.Width,
		"height":           l.Height,
		"clock_size":       l.ClockSize,
		"host_size":        l.HostSize,
		"title_size":       l.TitleSize,
		"text_size":        l.TextSize,
		"header_gap":       l.HeaderGap,
		"row_height":       l.RowHeight,
		"table_header_gap": l.TableHeaderGap,
		"table_row_height": l.TableRowHeight,
		"divider_width":    l.DividerWidth,
	}
	for name, v := range positive {
		if v <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("layout %s must be positive, got %d", name, v),
				"Check the layout file or remove it to use the built-in layout")
		}
	}
	if l.MarginX < 0 || l.SectionGap < 0 || l.ColumnGap < 0 || l.Top < 0 {
		return errors.New(errors.ErrConfig,
			"layout margins and gaps cannot be negative",
			"Check margin_x, section_gap, column_gap and top in the layout file")
	}
	if !(l.MarginX < l.LabelRight &&
		l.LabelRight+l.ColumnGap < l.LeftRight &&
		l.LeftRight <= l.DividerX &&
		l.DividerX+l.DividerWidth < l.RightRight &&
		l.RightRight <= l.Width) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("layout columns overlap (label_right=%d left_right=%d divider_x=%d right_right=%d width=%d)",
				l.LabelRight, l.LeftRight, l.DividerX, l.RightRight, l.Width),
			"Columns must increase left to right and end inside the display")
	}
	titleH := l.TitleSize + 4
	clearances := []struct {
		name      string
		got, need int
	}{
		{"host_y", l.HostY, l.ClockY + l.ClockSize + 4},
		{"top", l.Top, l.HostY + l.HostSize + 4},
		{"header_gap", l.HeaderGap, titleH},
		{"table_header_gap", l.TableHeaderGap, titleH},
	}
	for _, c := range clearances {
		if c.got < c.need {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("layout %s is %d, needs at least %d to clear the row above", c.name, c.got, c.need),
				"Increase the gap or reduce the font size above it in the layout file")
		}
	}
	return nil
}

// Region is a fixed rectangular screen area.
type Region struct {
	ID     string
	X, Y   int
	W, H   int
	Align  display.Align
	Anchor string
	Font   string
	Size   int
}

// Rect returns the region's box.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

type (
	textFunc  func(telemetry.Snapshot) string
	colorFunc func(telemetry.Snapshot) lipgloss.Color
)

type regionSpec struct {
	Region
	text  textFunc
	color colorFunc
}

func constText(s string) textFunc {
	return func(telemetry.Snapshot) string { return s }
}

func constColor(c lipgloss.Color) colorFunc {
	return func(telemetry.Snapshot) lipgloss.Color { return c }
}

// builder lays out regions top to bottom. Every section, row and table
// advances the cursor, so adding a row moves everything below it.
type builder struct {
	l     Layout
	y     int
	specs []regionSpec
}

func newBuilder(l Layout) *builder {
	return &builder{l: l, y: l.Top}
}

func (b *builder) add(r Region, text textFunc, color colorFunc) {
	if r.Font == "" {
		r.Font = display.FontRegular
	}
	if r.Align == "" {
		r.Align = display.AlignLeft
	}
	if r.Anchor == "" {
		r.Anchor = anchorFor(r.Align)
	}
	b.specs = append(b.specs, regionSpec{Region: r, text: text, color: color})
}

func anchorFor(a display.Align) string {
	if a == display.AlignRight {
		return "rt"
	}
	return "lt"
}

func (b *builder) contentWidth() int {
	return b.l.Width - 2*b.l.MarginX
}

// section places a bold title at the cursor.
func (b *builder) section(id, title string) {
	b.add(Region{
		ID: id + ".title", X: b.l.MarginX, Y: b.y,
		W: b.contentWidth(), H: b.l.TitleSize + 4,
		Font: display.FontBold, Size: b.l.TitleSize,
	}, constText(title), constColor(ColorAccent))
	b.y += b.l.HeaderGap
}

// line places one full-width row.
func (b *builder) line(id string, text textFunc, color colorFunc) {
	b.add(Region{
		ID: id, X: b.l.MarginX, Y: b.y,
		W: b.contentWidth(), H: b.l.RowHeight,
		Size: b.l.TextSize,
	}, text, color)
	b.y += b.l.RowHeight
}

// halves places two half-width regions on one row.
func (b *builder) halves(id string, left textFunc, leftColor colorFunc, right textFunc, rightColor colorFunc) {
	half := b.l.Width / 2
	b.add(Region{
		ID: id + ".left", X: b.l.MarginX, Y: b.y,
		W: half - b.l.MarginX, H: b.l.RowHeight,
		Size: b.l.TextSize,
	}, left, leftColor)
	b.add(Region{
		ID: id + ".right", X: half, Y: b.y,
		W: b.l.Width - b.l.MarginX - half, H: b.l.RowHeight,
		Size: b.l.TextSize,
	}, right, rightColor)
	b.y += b.l.RowHeight
}

func (b *builder) endSection() {
	b.y += b.l.SectionGap
}

// columns places a label and two right-aligned values split by a divider.
func (b *builder) columns(id string, h int, font string, label textFunc, labelColor colorFunc,
	left textFunc, leftColor colorFunc, right textFunc, rightColor colorFunc) {
	l := b.l
	leftX := l.LabelRight + l.ColumnGap
	rightX := l.DividerX + l.DividerWidth
	b.add(Region{
		ID: id + ".label", X: l.MarginX, Y: b.y,
		W: l.LabelRight - l.MarginX, H: h,
		Font: font, Size: l.TextSize,
	}, label, labelColor)
	b.add(Region{
		ID: id + ".left", X: leftX, Y: b.y,
		W: l.LeftRight - leftX, H: h,
		Font: font, Size: l.TextSize, Align: display.AlignRight,
	}, left, leftColor)
	b.add(Region{
		ID: id + ".divider", X: l.DividerX, Y: b.y,
		W: l.DividerWidth, H: h,
		Size: l.TextSize,
	}, constText("|"), constColor(ColorNeutral))
	b.add(Region{
		ID: id + ".right", X: rightX, Y: b.y,
		W: l.RightRight - rightX, H: h,
		Font: font, Size: l.TextSize, Align: display.AlignRight,
	}, right, rightColor)
}

// table places a section title with two column headings on the same row.
func (b *builder) table(id, title, leftHead, rightHead string) {
	b.columns(id+".head", b.l.TitleSize+4, display.FontBold,
		constText(title), constColor(ColorAccent),
		constText(leftHead), constColor(ColorAccent),
		constText(rightHead), constColor(ColorAccent))
	b.y += b.l.TableHeaderGap
}

func (b *builder) tableRow(id, label string, left textFunc, leftColor colorFunc, right textFunc, rightColor colorFunc) {
	b.columns(id, b.l.TableRowHeight, display.FontRegular,
		constText(label), constColor(ColorNeutral),
		left, leftColor, right, rightColor)
	b.y += b.l.TableRowHeight
}

// place adds a region at an absolute position, outside the cursor flow.
func (b *builder) place(r Region, text textFunc, color colorFunc) {
	b.add(r, text, color)
}

// build checks every region against the display bounds, for duplicate IDs
// and for overlaps. Regions are redrawn independently, so two regions may
// never share a pixel.
func (b *builder) build() ([]regionSpec, error) {
	bounds := b.l.Bounds()
	seen := make(map[string]bool, len(b.specs))
	for _, s := range b.specs {
		if seen[s.ID] {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("duplicate region %q", s.ID), "")
		}
		seen[s.ID] = true
		if s.W <= 0 || s.H <= 0 || !s.Rect().In(bounds) {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("region %q %v does not fit the %dx%d display", s.ID, s.Rect(), b.l.Width, b.l.Height),
				"Reduce row heights or gaps in the layout file")
		}
	}
	for i, a := range b.specs {
		for _, c := range b.specs[i+1:] {
			if a.Rect().Overlaps(c.Rect()) {
				return nil, errors.New(errors.ErrConfig,
					fmt.Sprintf("regions %q %v and %q %v overlap", a.ID, a.Rect(), c.ID, c.Rect()),
					"Increase header_gap, top or table_header_gap, or reduce title_size in the layout file")
			}
		}
	}
	return b.specs, nil
}
