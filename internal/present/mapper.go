// Package present turns a telemetry snapshot into positioned, formatted and
// colour-coded screen regions.
package present

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/lcdash/internal/telemetry"
	"github.com/rileyhilliard/lcdash/pkg/display"
)

const (
	timeFormat = "15:04:05"
	dateFormat = "02/01/2006"
)

// Labels are the user-facing names of the monitored machines.
type Labels struct {
	SmallServer string
	BigServer   string
	NVMe0100    string
	NVMe8100    string
}

// DefaultLabels returns the stock column and drive names.
func DefaultLabels() Labels {
	return Labels{
		SmallServer: "SMALL",
		BigServer:   "BIG",
		NVMe0100:    "SK Hynix",
		NVMe8100:    "990 Evo",
	}
}

// RegionUpdate is the desired content of one region for one tick.
type RegionUpdate struct {
	Region Region
	Text   string
	Color  lipgloss.Color
}

// Mapper holds the region table built from a layout. It is immutable and
// safe to share.
type Mapper struct {
	layout Layout
	specs  []regionSpec
}

// NewMapper builds the screen from layout. It fails with a CONFIG error when
// the layout is invalid or a region falls outside the display.
func NewMapper(layout Layout, labels Labels, rules ColorRules) (*Mapper, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	colored := func(name string) colorFunc {
		return func(s telemetry.Snapshot) lipgloss.Color {
			f := s.Field(name)
			return rules.ColorFor(f.Kind, f.Value)
		}
	}
	neutral := constColor(ColorNeutral)

	b := newBuilder(layout)

	// Clock header sits above the cursor flow.
	half := layout.Width / 2
	b.place(Region{
		ID: "clock.time", X: layout.MarginX, Y: layout.ClockY,
		W: half - layout.MarginX, H: layout.ClockSize + 4,
		Font: display.FontBold, Size: layout.ClockSize,
	}, func(s telemetry.Snapshot) string { return s.Taken().Format(timeFormat) }, neutral)
	b.place(Region{
		ID: "clock.date", X: half, Y: layout.ClockY,
		W: layout.Width - layout.MarginX - half, H: layout.ClockSize + 4,
		Font: display.FontBold, Size: layout.ClockSize, Align: display.AlignRight,
	}, func(s telemetry.Snapshot) string { return s.Taken().Format(dateFormat) }, neutral)
	b.place(Region{
		ID: "host.cpu", X: layout.MarginX, Y: layout.HostY,
		W: half - layout.MarginX, H: layout.HostSize + 4, Size: layout.HostSize,
	}, func(s telemetry.Snapshot) string {
		return "CPU " + FormatPercent(s.Value(telemetry.FieldLocalCPU))
	}, colored(telemetry.FieldLocalCPU))
	b.place(Region{
		ID: "host.ram", X: half, Y: layout.HostY,
		W: layout.Width - layout.MarginX - half, H: layout.HostSize + 4,
		Size: layout.HostSize, Align: display.AlignRight,
	}, func(s telemetry.Snapshot) string {
		return "RAM " + FormatPercent(s.Value(telemetry.FieldLocalRAM))
	}, colored(telemetry.FieldLocalRAM))

	b.section("internet", "INTERNET")
	b.line("internet.isp", func(s telemetry.Snapshot) string {
		return "ISP: " + FormatText(s.Value(telemetry.FieldISP))
	}, neutral)
	b.line("internet.wan", wanLine, neutral)
	b.line("internet.latency", func(s telemetry.Snapshot) string {
		return fmt.Sprintf("Latency: %s  |  %s",
			FormatFixed(s.Value(telemetry.FieldLatency), 0, "ms"),
			FormatText(s.Value(telemetry.FieldLocation)))
	}, neutral)
	b.line("internet.speed", func(s telemetry.Snapshot) string {
		return fmt.Sprintf("Up: %s  |  Down: %s",
			FormatFixed(s.Value(telemetry.FieldUpload), 1, ""),
			FormatFixed(s.Value(telemetry.FieldDownload), 1, ""))
	}, neutral)
	b.endSection()

	b.section("ups", "UPS")
	b.line("ups.status", func(s telemetry.Snapshot) string {
		return fmt.Sprintf("Status: %s  |  Charger: %s",
			FormatText(s.Value(telemetry.FieldUPSStatus)),
			FormatText(s.Value(telemetry.FieldChargerStatus)))
	}, neutral)
	b.line("ups.battery", func(s telemetry.Snapshot) string {
		return fmt.Sprintf("Battery: %s  |  %s",
			FormatPercent(s.Value(telemetry.FieldBatteryCharge)),
			FormatFixed(s.Value(telemetry.FieldBatteryVoltage), 1, "V"))
	}, neutral)
	b.line("ups.load", func(s telemetry.Snapshot) string {
		return fmt.Sprintf("Load: %s  |  Temp: %s",
			FormatPercent(s.Value(telemetry.FieldUPSLoad)),
			FormatTemp(s.Value(telemetry.FieldUPSTemp)))
	}, colored(telemetry.FieldUPSLoad))
	b.line("ups.voltage", func(s telemetry.Snapshot) string {
		return fmt.Sprintf("Input: %s  |  Output: %s",
			FormatFixed(s.Value(telemetry.FieldInputVoltage), 1, "V"),
			FormatFixed(s.Value(telemetry.FieldOutputVoltage), 1, "V"))
	}, neutral)
	b.endSection()

	b.table("servers", "SERVERS", labels.SmallServer, labels.BigServer)
	b.tableRow("servers.cpu", "CPU Temp",
		func(s telemetry.Snapshot) string { return FormatTemp(s.Value(telemetry.FieldSmallCPUTemp)) },
		colored(telemetry.FieldSmallCPUTemp),
		func(s telemetry.Snapshot) string { return FormatTemp(s.Value(telemetry.FieldBigCPUTemp)) },
		colored(telemetry.FieldBigCPUTemp))
	b.tableRow("servers.ram", "RAM Usage",
		func(s telemetry.Snapshot) string { return FormatPercent(s.Value(telemetry.FieldSmallRAM)) },
		colored(telemetry.FieldSmallRAM),
		func(s telemetry.Snapshot) string { return FormatPercent(s.Value(telemetry.FieldBigRAM)) },
		colored(telemetry.FieldBigRAM))
	b.endSection()

	b.section("nvme", "NVME")
	b.halves("nvme",
		func(s telemetry.Snapshot) string {
			return labels.NVMe0100 + ": " + FormatTemp(s.Value(telemetry.FieldNVMe0100Temp))
		},
		colored(telemetry.FieldNVMe0100Temp),
		func(s telemetry.Snapshot) string {
			return labels.NVMe8100 + ": " + FormatTemp(s.Value(telemetry.FieldNVMe8100Temp))
		},
		colored(telemetry.FieldNVMe8100Temp))

	specs, err := b.build()
	if err != nil {
		return nil, err
	}
	return &Mapper{layout: layout, specs: specs}, nil
}

// wanLine shows the public address with whatever geolocation is known.
func wanLine(s telemetry.Snapshot) string {
	ip := FormatText(s.Value(telemetry.FieldPublicIP))
	city := FormatText(s.Value(telemetry.FieldCity))
	cc := FormatText(s.Value(telemetry.FieldCountryCode))
	switch {
	case city != telemetry.Unknown && cc != telemetry.Unknown:
		return fmt.Sprintf("WAN: %s (%s, %s)", ip, city, cc)
	case cc != telemetry.Unknown:
		return fmt.Sprintf("WAN: %s (%s)", ip, cc)
	default:
		return "WAN: " + ip
	}
}

// Layout returns the layout the mapper was built from.
func (m *Mapper) Layout() Layout {
	return m.layout
}

// Regions returns every region in reading order.
func (m *Mapper) Regions() []Region {
	out := make([]Region, len(m.specs))
	for i, s := range m.specs {
		out[i] = s.Region
	}
	return out
}

// Map produces one update per region, in reading order. Map never fails:
// missing or malformed values are rendered as placeholders.
func (m *Mapper) Map(s telemetry.Snapshot) []RegionUpdate {
	out := make([]RegionUpdate, len(m.specs))
	for i, spec := range m.specs {
		out[i] = RegionUpdate{
			Region: spec.Region,
			Text:   spec.text(s),
			Color:  spec.color(s),
		}
	}
	return out
}
