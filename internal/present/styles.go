package present

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/lcdash/internal/telemetry"
)

// Dashboard palette. Pastels read well on the small IPS panel.
const (
	ColorBackground = lipgloss.Color("#000000")
	ColorNeutral    = lipgloss.Color("#FFFFFF") // white
	ColorAccent     = lipgloss.Color("#87CEEB") // sky blue, section titles
	ColorCool       = lipgloss.Color("#90EE90") // light green
	ColorWarm       = lipgloss.Color("#FFFF99") // light yellow
	ColorHot        = lipgloss.Color("#FFA0A0") // light red
)

// Default thresholds per kind.
const (
	TempWarmThreshold    = 60.0
	TempHotThreshold     = 80.0
	PercentWarmThreshold = 70.0
	PercentHotThreshold  = 90.0
)

// Thresholds split the number line into cool, warm and hot brackets.
// A value equal to a threshold belongs to the bracket that starts there:
// v < Warm is cool, v < Hot is warm, everything else is hot.
type Thresholds struct {
	Warm float64 `yaml:"warm"`
	Hot  float64 `yaml:"hot"`
}

// ColorRules holds the thresholds for every colour-coded kind.
type ColorRules struct {
	Temperature Thresholds `yaml:"temperature"`
	Percent     Thresholds `yaml:"percent"`
}

// DefaultColorRules returns the stock thresholds.
func DefaultColorRules() ColorRules {
	return ColorRules{
		Temperature: Thresholds{Warm: TempWarmThreshold, Hot: TempHotThreshold},
		Percent:     Thresholds{Warm: PercentWarmThreshold, Hot: PercentHotThreshold},
	}
}

// ColorFor maps a value of the given kind to a palette colour using the
// default thresholds.
func ColorFor(kind telemetry.Kind, value any) lipgloss.Color {
	return DefaultColorRules().ColorFor(kind, value)
}

// ColorFor maps a value to a palette colour. Non-numeric values and kinds
// without thresholds are neutral.
func (r ColorRules) ColorFor(kind telemetry.Kind, value any) lipgloss.Color {
	v, ok := ToFloat(value)
	if !ok {
		return ColorNeutral
	}
	switch kind {
	case telemetry.KindTemperature:
		return BracketColor(v, r.Temperature)
	case telemetry.KindPercent:
		return BracketColor(v, r.Percent)
	default:
		return ColorNeutral
	}
}

// BracketColor returns the colour of v's bracket.
func BracketColor(v float64, t Thresholds) lipgloss.Color {
	switch {
	case math.IsNaN(v):
		return ColorNeutral
	case v < t.Warm:
		return ColorCool
	case v < t.Hot:
		return ColorWarm
	default:
		return ColorHot
	}
}
