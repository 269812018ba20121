package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lcdash/internal/errors"
)

func TestDefaultLayout_Valid(t *testing.T) {
	require.NoError(t, DefaultLayout().Validate())
}

func TestLayout_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
		want   string
	}{
		{"zero width", func(l *Layout) { l.Width = 0 }, "width must be positive"},
		{"zero row height", func(l *Layout) { l.RowHeight = 0 }, "row_height must be positive"},
		{"negative gap", func(l *Layout) { l.SectionGap = -1 }, "cannot be negative"},
		{"columns overlap", func(l *Layout) { l.DividerX = 150; l.LeftRight = 200 }, "columns overlap"},
		{"right column past edge", func(l *Layout) { l.RightRight = 400 }, "columns overlap"},
		{"title taller than header gap", func(l *Layout) { l.TitleSize = 30 }, "header_gap is 30, needs at least 34"},
		{"header gap too small", func(l *Layout) { l.HeaderGap = 10 }, "header_gap"},
		{"table header gap too small", func(l *Layout) { l.TableHeaderGap = 20 }, "table_header_gap"},
		{"top inside host row", func(l *Layout) { l.Top = 40 }, "top is 40, needs at least 54"},
		{"host row inside clock", func(l *Layout) { l.HostY = 20 }, "host_y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			err := l.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func sectionY(t *testing.T, specs []regionSpec, id string) int {
	t.Helper()
	for _, s := range specs {
		if s.ID == id {
			return s.Y
		}
	}
	t.Fatalf("region %s not found", id)
	return 0
}

func TestBuilder_InsertingRowShiftsBelow(t *testing.T) {
	l := DefaultLayout()
	blank := constText("")
	neutral := constColor(ColorNeutral)

	build := func(rows int) []regionSpec {
		b := newBuilder(l)
		b.section("first", "FIRST")
		for i := 0; i < rows; i++ {
			b.line("first."+string(rune('a'+i)), blank, neutral)
		}
		b.endSection()
		b.section("second", "SECOND")
		b.line("second.a", blank, neutral)
		specs, err := b.build()
		require.NoError(t, err)
		return specs
	}

	two := build(2)
	three := build(3)

	assert.Equal(t, l.Top, sectionY(t, two, "first.title"))
	assert.Equal(t, l.Top+l.HeaderGap, sectionY(t, two, "first.a"))
	assert.Equal(t, l.Top+l.HeaderGap+2*l.RowHeight+l.SectionGap, sectionY(t, two, "second.title"))
	assert.Equal(t, l.RowHeight, sectionY(t, three, "second.title")-sectionY(t, two, "second.title"))
	assert.Equal(t, l.RowHeight, sectionY(t, three, "second.a")-sectionY(t, two, "second.a"))
}

func TestBuilder_TableColumns(t *testing.T) {
	l := DefaultLayout()
	b := newBuilder(l)
	b.table("t", "T", "L", "R")
	b.tableRow("t.row", "Row", constText("1"), constColor(ColorNeutral), constText("2"), constColor(ColorNeutral))
	specs, err := b.build()
	require.NoError(t, err)

	regions := map[string]Region{}
	for _, s := range specs {
		regions[s.ID] = s.Region
	}

	left := regions["t.row.left"]
	right := regions["t.row.right"]
	divider := regions["t.row.divider"]

	assert.Equal(t, l.LeftRight, left.X+left.W, "left value column ends at its right edge")
	assert.Equal(t, l.RightRight, right.X+right.W, "right value column ends at its right edge")
	assert.Equal(t, l.DividerX, divider.X)
	assert.Equal(t, l.Top+l.TableHeaderGap, left.Y)
	assert.Equal(t, regions["t.head.label"].Y, regions["t.head.right"].Y, "title and headings share a row")
}

func TestBuilder_RejectsDuplicateIDs(t *testing.T) {
	b := newBuilder(DefaultLayout())
	b.line("x", constText(""), constColor(ColorNeutral))
	b.line("x", constText(""), constColor(ColorNeutral))

	_, err := b.build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate region")
}

func TestBuilder_RejectsOverlaps(t *testing.T) {
	l := DefaultLayout()
	l.HeaderGap = 10
	b := newBuilder(l)
	b.section("s", "S")
	b.line("s.a", constText(""), constColor(ColorNeutral))

	_, err := b.build()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), `"s.title"`)
	assert.Contains(t, err.Error(), `"s.a"`)
	assert.Contains(t, err.Error(), "overlap")
}

func TestMapper_DefaultRegionsDoNotOverlap(t *testing.T) {
	m, err := NewMapper(DefaultLayout(), DefaultLabels(), DefaultColorRules())
	require.NoError(t, err)

	regions := m.Regions()
	for i, a := range regions {
		for _, c := range regions[i+1:] {
			assert.False(t, a.Rect().Overlaps(c.Rect()), "%s %v overlaps %s %v", a.ID, a.Rect(), c.ID, c.Rect())
		}
	}
}

func TestNewMapper_RejectsCrowdedLayouts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
	}{
		{"large titles", func(l *Layout) { l.TitleSize = 30 }},
		{"small header gap", func(l *Layout) { l.HeaderGap = 10 }},
		{"top inside host row", func(l *Layout) { l.Top = 40 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			_, err := NewMapper(l, DefaultLabels(), DefaultColorRules())
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}
