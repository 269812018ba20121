package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/lcdash/internal/errors"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Keys with a legacy fallback name, resolved after unmarshalling.
var fallbacks = []struct {
	key, fallback string
}{
	{"influxdb_server_tag", "influxdb_host_tag"},
	{"smallserver_alias", "smallserver_host"},
	{"bigserver_alias", "bigserver_host"},
}

// Load reads configuration from the environment, layered over envFile when
// that file exists. Real environment variables win over the file, which
// wins over defaults. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if envFile != "" {
		path := ExpandTilde(envFile)
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to read "+envFile,
					"Check the file uses KEY=value lines")
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access "+envFile,
				"Check file permissions")
		}
	}

	return parseConfig(v)
}

// parseConfig converts viper settings to a Config with defaults merged in.
func parseConfig(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid configuration value",
			"Durations look like 30s or 1m; thresholds and brightness are numbers")
	}

	defaults := DefaultConfig()
	cfg.Influx.ServerTag = firstSet(v, "influxdb_server_tag", "influxdb_host_tag", defaults.Influx.ServerTag)
	cfg.Servers.SmallAlias = firstSet(v, "smallserver_alias", "smallserver_host", defaults.Servers.SmallAlias)
	cfg.Servers.BigAlias = firstSet(v, "bigserver_alias", "bigserver_host", defaults.Servers.BigAlias)
	cfg.Servers.NVMeAlias = firstSet(v, "nvme_server_alias", "", cfg.Servers.BigAlias)

	cfg.Display.Driver = strings.ToLower(strings.TrimSpace(cfg.Display.Driver))
	cfg.Display.LayoutFile = ExpandTilde(cfg.Display.LayoutFile)

	return cfg, nil
}

// firstSet returns the first non-empty value among key and fallback, or def.
func firstSet(v *viper.Viper, key, fallback, def string) string {
	for _, k := range []string{key, fallback} {
		if k == "" {
			continue
		}
		if s := strings.TrimSpace(v.GetString(k)); s != "" {
			return s
		}
	}
	return def
}

// setDefaults registers every key so AutomaticEnv picks it up during
// Unmarshal. Keys with fallbacks are left unset so firstSet can tell an
// explicit value from a default.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("influxdb_url", d.Influx.URL)
	v.SetDefault("influxdb_token", d.Influx.Token)
	v.SetDefault("influxdb_org", d.Influx.Org)
	v.SetDefault("influxdb_bucket", d.Influx.Bucket)
	v.SetDefault("ups_measurement", d.Influx.UPSMeasurement)

	v.SetDefault("server_temp_measurement", d.Servers.TempMeasurement)
	v.SetDefault("server_temp_field", d.Servers.TempField)
	v.SetDefault("server_temp_chip", d.Servers.TempChip)
	v.SetDefault("server_temp_feature", d.Servers.TempFeature)
	v.SetDefault("server_ram_measurement", d.Servers.RAMMeasurement)
	v.SetDefault("server_ram_field", d.Servers.RAMField)
	v.SetDefault("nvme_temp_feature", d.Servers.NVMeFeature)
	v.SetDefault("nvme_0100_chip", d.Servers.NVMe0100Chip)
	v.SetDefault("nvme_8100_chip", d.Servers.NVMe8100Chip)

	v.SetDefault("public_ip_url", d.Identity.PublicIPURL)
	v.SetDefault("geo_url_template", d.Identity.GeoURLTemplate)

	v.SetDefault("display_driver", d.Display.Driver)
	v.SetDefault("display_brightness", d.Display.Brightness)
	v.SetDefault("display_orientation", d.Display.Orientation)
	v.SetDefault("layout_file", d.Display.LayoutFile)

	v.SetDefault("temp_warm", d.Thresholds.TempWarm)
	v.SetDefault("temp_hot", d.Thresholds.TempHot)
	v.SetDefault("percent_warm", d.Thresholds.PercentWarm)
	v.SetDefault("percent_hot", d.Thresholds.PercentHot)

	v.SetDefault("smallserver_label", d.Labels.Small)
	v.SetDefault("bigserver_label", d.Labels.Big)
	v.SetDefault("nvme_0100_label", d.Labels.NVMe0100)
	v.SetDefault("nvme_8100_label", d.Labels.NVMe8100)

	v.SetDefault("refresh_interval", d.RefreshInterval.String())
	v.SetDefault("fetch_timeout", d.FetchTimeout.String())

	for _, f := range fallbacks {
		_ = v.BindEnv(f.key, strings.ToUpper(f.key))
		_ = v.BindEnv(f.fallback, strings.ToUpper(f.fallback))
	}
	_ = v.BindEnv("nvme_server_alias", "NVME_SERVER_ALIAS")
}
