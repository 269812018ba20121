package sources

import (
	"time"

	"github.com/rileyhilliard/lcdash/internal/telemetry"
)

// Query windows. UPS data is sampled often and goes stale fast; host sensors
// report every few minutes; speed tests run hourly.
const (
	InternetWindow = time.Hour
	UPSWindow      = time.Minute
	HostWindow     = 5 * time.Minute
)

// ProbeSettings names the buckets, measurements and tags the homelab writes.
type ProbeSettings struct {
	Bucket    string
	ServerTag string

	SmallServer string
	BigServer   string

	TempMeasurement string
	TempField       string
	TempChip        string
	TempFeature     string

	RAMMeasurement string
	RAMField       string

	NVMeServer   string
	NVMeFeature  string
	NVMe0100Chip string
	NVMe8100Chip string

	UPSMeasurement string
}

// DefaultProbeSettings matches a stock Telegraf setup.
func DefaultProbeSettings() ProbeSettings {
	return ProbeSettings{
		Bucket:          "homelab",
		ServerTag:       "server_alias",
		SmallServer:     "smallserver",
		BigServer:       "bigserver",
		TempMeasurement: "sensors",
		TempField:       "temp_input",
		TempChip:        "coretemp-isa-0000",
		TempFeature:     "package_id_0",
		RAMMeasurement:  "mem",
		RAMField:        "used_percent",
		NVMeServer:      "bigserver",
		NVMeFeature:     "composite",
		NVMe0100Chip:    "nvme-pci-0100",
		NVMe8100Chip:    "nvme-pci-8100",
		UPSMeasurement:  "upsd",
	}
}

var (
	internetFields = []string{
		telemetry.FieldDownload,
		telemetry.FieldUpload,
		telemetry.FieldLocation,
		telemetry.FieldLatency,
	}
	upsFields = []string{
		telemetry.FieldUPSStatus,
		telemetry.FieldUPSLoad,
		telemetry.FieldBatteryCharge,
		telemetry.FieldChargerStatus,
		telemetry.FieldBatteryVoltage,
		telemetry.FieldInputVoltage,
		telemetry.FieldOutputVoltage,
		telemetry.FieldUPSTemp,
	}
)

// identityTargets maps series fields that share the snapshot field's name.
func identityTargets(fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f] = f
	}
	return out
}

// Probes returns the dashboard's queries in display order.
func Probes(s ProbeSettings) []Probe {
	cpuTemp := func(server string) Query {
		return Query{
			Bucket:      s.Bucket,
			Window:      HostWindow,
			Measurement: s.TempMeasurement,
			Tags: map[string]string{
				s.ServerTag: server,
				"chip":      s.TempChip,
				"feature":   s.TempFeature,
			},
		}
	}
	ram := func(server string) Query {
		return Query{
			Bucket:      s.Bucket,
			Window:      HostWindow,
			Measurement: s.RAMMeasurement,
			Tags:        map[string]string{s.ServerTag: server},
		}
	}
	nvme := func(chip string) Query {
		return Query{
			Bucket:      s.Bucket,
			Window:      HostWindow,
			Measurement: s.TempMeasurement,
			Tags: map[string]string{
				s.ServerTag: s.NVMeServer,
				"chip":      chip,
				"feature":   s.NVMeFeature,
			},
		}
	}

	return []Probe{
		{
			Name:    "internet",
			Query:   Query{Bucket: s.Bucket, Window: InternetWindow, Fields: internetFields},
			Targets: identityTargets(internetFields),
		},
		{
			Name:    "ups",
			Query:   Query{Bucket: s.Bucket, Window: UPSWindow, Measurement: s.UPSMeasurement, Fields: upsFields},
			Targets: identityTargets(upsFields),
		},
		SingleProbe("small cpu temp", cpuTemp(s.SmallServer), s.TempField, telemetry.FieldSmallCPUTemp),
		SingleProbe("big cpu temp", cpuTemp(s.BigServer), s.TempField, telemetry.FieldBigCPUTemp),
		SingleProbe("small ram", ram(s.SmallServer), s.RAMField, telemetry.FieldSmallRAM),
		SingleProbe("big ram", ram(s.BigServer), s.RAMField, telemetry.FieldBigRAM),
		SingleProbe("nvme 0100", nvme(s.NVMe0100Chip), s.TempField, telemetry.FieldNVMe0100Temp),
		SingleProbe("nvme 8100", nvme(s.NVMe8100Chip), s.TempField, telemetry.FieldNVMe8100Temp),
	}
}
