package config

import "time"

// Config is the daemon configuration. Every key is read from the
// environment or a .env file under the upper-cased mapstructure name.
type Config struct {
	Influx     InfluxConfig     `mapstructure:",squash"`
	Servers    ServersConfig    `mapstructure:",squash"`
	Identity   IdentityConfig   `mapstructure:",squash"`
	Display    DisplayConfig    `mapstructure:",squash"`
	Thresholds ThresholdsConfig `mapstructure:",squash"`
	Labels     LabelsConfig     `mapstructure:",squash"`

	// RefreshInterval is the pause between ticks.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`

	// FetchTimeout bounds every source adapter per tick.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// InfluxConfig locates the time-series store. An empty URL disables it.
type InfluxConfig struct {
	URL    string `mapstructure:"influxdb_url"`
	Token  string `mapstructure:"influxdb_token"`
	Org    string `mapstructure:"influxdb_org"`
	Bucket string `mapstructure:"influxdb_bucket"`

	// ServerTag is the tag that tells hosts apart. Falls back to INFLUXDB_HOST_TAG.
	ServerTag string `mapstructure:"influxdb_server_tag"`

	UPSMeasurement string `mapstructure:"ups_measurement"`
}

// ServersConfig selects the host and drive series.
type ServersConfig struct {
	// Aliases fall back to SMALLSERVER_HOST and BIGSERVER_HOST.
	SmallAlias string `mapstructure:"smallserver_alias"`
	BigAlias   string `mapstructure:"bigserver_alias"`

	TempMeasurement string `mapstructure:"server_temp_measurement"`
	TempField       string `mapstructure:"server_temp_field"`
	TempChip        string `mapstructure:"server_temp_chip"`
	TempFeature     string `mapstructure:"server_temp_feature"`

	RAMMeasurement string `mapstructure:"server_ram_measurement"`
	RAMField       string `mapstructure:"server_ram_field"`

	// NVMeAlias defaults to BigAlias.
	NVMeAlias    string `mapstructure:"nvme_server_alias"`
	NVMeFeature  string `mapstructure:"nvme_temp_feature"`
	NVMe0100Chip string `mapstructure:"nvme_0100_chip"`
	NVMe8100Chip string `mapstructure:"nvme_8100_chip"`
}

// IdentityConfig points at the public address and geolocation services.
type IdentityConfig struct {
	PublicIPURL    string `mapstructure:"public_ip_url"`
	GeoURLTemplate string `mapstructure:"geo_url_template"`
}

// DisplayConfig picks and configures the display driver.
type DisplayConfig struct {
	// Driver is auto, terminal or console.
	Driver      string `mapstructure:"display_driver"`
	Brightness  int    `mapstructure:"display_brightness"`
	Orientation string `mapstructure:"display_orientation"`

	// LayoutFile optionally overrides layout geometry (YAML).
	LayoutFile string `mapstructure:"layout_file"`
}

// ThresholdsConfig controls colour coding.
type ThresholdsConfig struct {
	TempWarm    float64 `mapstructure:"temp_warm"`
	TempHot     float64 `mapstructure:"temp_hot"`
	PercentWarm float64 `mapstructure:"percent_warm"`
	PercentHot  float64 `mapstructure:"percent_hot"`
}

// LabelsConfig names things on screen.
type LabelsConfig struct {
	Small    string `mapstructure:"smallserver_label"`
	Big      string `mapstructure:"bigserver_label"`
	NVMe0100 string `mapstructure:"nvme_0100_label"`
	NVMe8100 string `mapstructure:"nvme_8100_label"`
}

// Display driver names.
const (
	DriverAuto     = "auto"
	DriverTerminal = "terminal"
	DriverConsole  = "console"
)

// DefaultConfig returns a config with every default applied.
func DefaultConfig() *Config {
	return &Config{
		Influx: InfluxConfig{
			Bucket:         "homelab",
			ServerTag:      "server_alias",
			UPSMeasurement: "upsd",
		},
		Servers: ServersConfig{
			SmallAlias:      "smallserver",
			BigAlias:        "bigserver",
			TempMeasurement: "sensors",
			TempField:       "temp_input",
			TempChip:        "coretemp-isa-0000",
			TempFeature:     "package_id_0",
			RAMMeasurement:  "mem",
			RAMField:        "used_percent",
			NVMeAlias:       "bigserver",
			NVMeFeature:     "composite",
			NVMe0100Chip:    "nvme-pci-0100",
			NVMe8100Chip:    "nvme-pci-8100",
		},
		Identity: IdentityConfig{
			PublicIPURL:    "https://api.ipify.org?format=json",
			GeoURLTemplate: "http://ip-api.com/json/{ip}",
		},
		Display: DisplayConfig{
			Driver:      DriverAuto,
			Brightness:  10,
			Orientation: "portrait",
		},
		Thresholds: ThresholdsConfig{
			TempWarm:    60,
			TempHot:     80,
			PercentWarm: 70,
			PercentHot:  90,
		},
		Labels: LabelsConfig{
			Small:    "SMALL",
			Big:      "BIG",
			NVMe0100: "SK Hynix",
			NVMe8100: "990 Evo",
		},
		RefreshInterval: 30 * time.Second,
		FetchTimeout:    5 * time.Second,
	}
}
