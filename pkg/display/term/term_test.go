package term

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lcdash/pkg/display"
)

func newSimDriver(t *testing.T) (*Driver, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	d := NewWithScreen(sim)
	require.NoError(t, d.InitializeComm())
	sim.SetSize(40, 30)
	t.Cleanup(func() { _ = d.Close() })
	return d, sim
}

func rowText(sim tcell.SimulationScreen, row, from, to int) string {
	var out []rune
	for x := from; x < to; x++ {
		ch, _, _, _ := sim.GetContent(x, row)
		out = append(out, ch)
	}
	return string(out)
}

func TestDrawText_LeftAligned(t *testing.T) {
	d, sim := newSimDriver(t)

	err := d.DrawText(display.TextOp{
		Text: "UPS", X: 5, Y: 190, Width: 310, Height: 28,
		Font: display.FontBold, Color: color.White, Background: color.Black,
		Align: display.AlignLeft,
	})
	require.NoError(t, err)

	assert.Equal(t, "UPS ", rowText(sim, 11, 0, 4))
	_, _, style, _ := sim.GetContent(0, 11)
	fg, bg, attrs := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 255, 255), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), bg)
	assert.NotZero(t, attrs&tcell.AttrBold)
}

func TestDrawText_RightAligned(t *testing.T) {
	d, sim := newSimDriver(t)

	// 105/8 = column 13, 100/8 = 12 columns wide, so the text ends at column 24.
	require.NoError(t, d.DrawText(display.TextOp{
		Text: "72.4C", X: 105, Y: 354, Width: 100, Height: 26,
		Color: color.White, Background: color.Black, Align: display.AlignRight,
	}))

	assert.Equal(t, "72.4C", rowText(sim, 22, 20, 25))
	ch, _, _, _ := sim.GetContent(19, 22)
	assert.Equal(t, ' ', ch)
}

func TestDrawText_ClearsPreviousText(t *testing.T) {
	d, sim := newSimDriver(t)
	op := display.TextOp{
		X: 5, Y: 90, Width: 310, Height: 20,
		Color: color.White, Background: color.Black,
	}

	op.Text = "ISP: A Very Long Provider Name"
	require.NoError(t, d.DrawText(op))
	op.Text = "ISP: Short"
	require.NoError(t, d.DrawText(op))

	assert.Equal(t, "ISP: Short          ", rowText(sim, 5, 0, 20))
}

func TestDrawText_Truncates(t *testing.T) {
	d, sim := newSimDriver(t)

	require.NoError(t, d.DrawText(display.TextOp{
		Text: "abcdefghij", X: 0, Y: 0, Width: 32, Height: 16,
	}))

	assert.Equal(t, "abcd", rowText(sim, 0, 0, 4))
	ch, _, _, _ := sim.GetContent(4, 0)
	assert.NotEqual(t, 'e', ch)
}

func TestDrawBitmap(t *testing.T) {
	d, sim := newSimDriver(t)
	img := image.NewRGBA(image.Rect(0, 0, 320, 480))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 10, G: 20, B: 30, A: 255}), image.Point{}, draw.Src)

	require.NoError(t, d.DrawBitmap(img, 0, 0))

	for _, pos := range [][2]int{{0, 0}, {39, 29}, {20, 15}} {
		_, _, style, _ := sim.GetContent(pos[0], pos[1])
		_, bg, _ := style.Decompose()
		assert.Equal(t, tcell.NewRGBColor(10, 20, 30), bg, "cell %v", pos)
	}
}

func TestDraws_RequireInit(t *testing.T) {
	d := NewWithScreen(tcell.NewSimulationScreen("UTF-8"))

	assert.ErrorIs(t, d.DrawText(display.TextOp{Text: "x"}), ErrNotInitialized)
	assert.ErrorIs(t, d.DrawBitmap(image.NewRGBA(image.Rect(0, 0, 8, 16)), 0, 0), ErrNotInitialized)
	assert.NoError(t, d.Reset(), "reset before init is a no-op")
}

func TestInitializeComm_Idempotent(t *testing.T) {
	d, _ := newSimDriver(t)
	assert.NoError(t, d.InitializeComm())
	assert.NoError(t, d.Reset())
}

func TestSettingsAreRecorded(t *testing.T) {
	d, _ := newSimDriver(t)
	require.NoError(t, d.SetBrightness(40))
	require.NoError(t, d.SetOrientation(display.Landscape))
	assert.Equal(t, 40, d.Brightness())
}

func TestDone_ClosedOnQuitKey(t *testing.T) {
	d, sim := newSimDriver(t)

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("quit key did not close Done")
	}
}

func TestClose(t *testing.T) {
	d, _ := newSimDriver(t)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.DrawText(display.TextOp{}), ErrNotInitialized)
}
