package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/lcdash/internal/errors"
	"github.com/rileyhilliard/lcdash/pkg/display"
)

// MinRefreshInterval keeps the panel's serial link from being flooded.
const MinRefreshInterval = time.Second

// Validate checks the config and returns the first problem found as a
// CONFIG error.
func Validate(cfg *Config) error {
	if cfg.RefreshInterval < MinRefreshInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("REFRESH_INTERVAL must be at least %s, got %s", MinRefreshInterval, cfg.RefreshInterval),
			"Use a duration like 30s or 1m")
	}
	if cfg.FetchTimeout <= 0 || cfg.FetchTimeout > cfg.RefreshInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("FETCH_TIMEOUT must be positive and no longer than REFRESH_INTERVAL, got %s", cfg.FetchTimeout),
			"The default of 5s works for most networks")
	}

	if err := validateInflux(cfg.Influx); err != nil {
		return err
	}
	if err := validateIdentity(cfg.Identity); err != nil {
		return err
	}
	if err := validateDisplay(cfg.Display); err != nil {
		return err
	}
	return validateThresholds(cfg.Thresholds)
}

func validateInflux(c InfluxConfig) error {
	if c.URL == "" {
		return nil
	}
	if err := validateHTTPURL("INFLUXDB_URL", c.URL); err != nil {
		return err
	}
	if c.Org == "" {
		return errors.New(errors.ErrConfig,
			"INFLUXDB_ORG is required when INFLUXDB_URL is set",
			"Set INFLUXDB_ORG to the organization that owns the bucket")
	}
	if c.Bucket == "" {
		return errors.New(errors.ErrConfig,
			"INFLUXDB_BUCKET cannot be empty",
			"Remove the variable to use the default bucket \"homelab\"")
	}
	return nil
}

func validateIdentity(c IdentityConfig) error {
	if err := validateHTTPURL("PUBLIC_IP_URL", c.PublicIPURL); err != nil {
		return err
	}
	if !strings.Contains(c.GeoURLTemplate, "{ip}") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("GEO_URL_TEMPLATE %q has no {ip} placeholder", c.GeoURLTemplate),
			"Example: http://ip-api.com/json/{ip}")
	}
	return validateHTTPURL("GEO_URL_TEMPLATE", strings.ReplaceAll(c.GeoURLTemplate, "{ip}", "192.0.2.1"))
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s %q is not an http(s) URL", name, raw),
			"Include the scheme, e.g. http://influxdb.lan:8086")
	}
	return nil
}

func validateDisplay(c DisplayConfig) error {
	switch c.Driver {
	case DriverAuto, DriverTerminal, DriverConsole:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown DISPLAY_DRIVER %q", c.Driver),
			"Use auto, terminal or console")
	}
	if c.Brightness < 0 || c.Brightness > 100 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("DISPLAY_BRIGHTNESS must be between 0 and 100, got %d", c.Brightness),
			"The panel is readable indoors at 10")
	}
	if _, err := display.ParseOrientation(c.Orientation); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid DISPLAY_ORIENTATION",
			"Use portrait, landscape, reverse_portrait or reverse_landscape")
	}
	return nil
}

func validateThresholds(t ThresholdsConfig) error {
	if t.TempWarm >= t.TempHot {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("TEMP_WARM (%g) must be below TEMP_HOT (%g)", t.TempWarm, t.TempHot),
			"Defaults are 60 and 80")
	}
	if t.PercentWarm >= t.PercentHot {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("PERCENT_WARM (%g) must be below PERCENT_HOT (%g)", t.PercentWarm, t.PercentHot),
			"Defaults are 70 and 90")
	}
	return nil
}
