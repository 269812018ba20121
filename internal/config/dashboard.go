package config

import (
	stderrors "errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/lcdash/internal/errors"
	"github.com/rileyhilliard/lcdash/internal/present"
	"github.com/rileyhilliard/lcdash/internal/render"
	"github.com/rileyhilliard/lcdash/internal/sources"
	"github.com/rileyhilliard/lcdash/pkg/display"
)

// ProbeSettings returns the time-series selectors.
func (c *Config) ProbeSettings() sources.ProbeSettings {
	return sources.ProbeSettings{
		Bucket:          c.Influx.Bucket,
		ServerTag:       c.Influx.ServerTag,
		SmallServer:     c.Servers.SmallAlias,
		BigServer:       c.Servers.BigAlias,
		TempMeasurement: c.Servers.TempMeasurement,
		TempField:       c.Servers.TempField,
		TempChip:        c.Servers.TempChip,
		TempFeature:     c.Servers.TempFeature,
		RAMMeasurement:  c.Servers.RAMMeasurement,
		RAMField:        c.Servers.RAMField,
		NVMeServer:      c.Servers.NVMeAlias,
		NVMeFeature:     c.Servers.NVMeFeature,
		NVMe0100Chip:    c.Servers.NVMe0100Chip,
		NVMe8100Chip:    c.Servers.NVMe8100Chip,
		UPSMeasurement:  c.Influx.UPSMeasurement,
	}
}

// ScreenLabels returns the on-screen names.
func (c *Config) ScreenLabels() present.Labels {
	return present.Labels{
		SmallServer: c.Labels.Small,
		BigServer:   c.Labels.Big,
		NVMe0100:    c.Labels.NVMe0100,
		NVMe8100:    c.Labels.NVMe8100,
	}
}

// ColorRules returns the colour thresholds.
func (c *Config) ColorRules() present.ColorRules {
	return present.ColorRules{
		Temperature: present.Thresholds{Warm: c.Thresholds.TempWarm, Hot: c.Thresholds.TempHot},
		Percent:     present.Thresholds{Warm: c.Thresholds.PercentWarm, Hot: c.Thresholds.PercentHot},
	}
}

// RenderOptions returns the device settings. Call Validate first; an
// unparseable orientation falls back to portrait.
func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Brightness = c.Display.Brightness
	if o, err := display.ParseOrientation(c.Display.Orientation); err == nil {
		opts.Orientation = o
	}
	return opts
}

// LoadLayout returns the built-in layout, overridden by the YAML file at
// path when path is set. Keys missing from the file keep their defaults;
// unknown keys are rejected.
func LoadLayout(path string) (present.Layout, error) {
	layout := present.DefaultLayout()
	if path == "" {
		return layout, nil
	}

	f, err := os.Open(ExpandTilde(path))
	if err != nil {
		return layout, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot open layout file "+path,
			"Check LAYOUT_FILE, or unset it to use the built-in layout")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&layout); err != nil && !stderrors.Is(err, io.EOF) {
		return layout, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid layout file "+path,
			"Check the YAML syntax and key names")
	}

	if err := layout.Validate(); err != nil {
		return layout, err
	}
	return layout, nil
}
