package telemetry

import "fmt"

// Kind is the semantic type of a field. It drives formatting and colour.
type Kind int

const (
	KindNumber Kind = iota
	KindPercent
	KindTemperature
	KindText
)

// String returns the kind name used in logs and layout files.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindPercent:
		return "percentage"
	case KindTemperature:
		return "temperature"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Unknown is the default for text fields nobody has resolved yet.
const Unknown = "Unknown"

// Field names. The vocabulary is fixed; sources can only fill these.
const (
	FieldDownload = "download"
	FieldUpload   = "upload"
	FieldLatency  = "latency"
	FieldLocation = "location"

	FieldUPSStatus      = "ups_status"
	FieldUPSLoad        = "load_percent"
	FieldBatteryCharge  = "battery_charge_percent"
	FieldChargerStatus  = "battery_charger_status"
	FieldBatteryVoltage = "battery_voltage"
	FieldInputVoltage   = "input_voltage"
	FieldOutputVoltage  = "output_voltage"
	FieldUPSTemp        = "internal_temp"

	FieldSmallCPUTemp = "smallserver_cpu_temp"
	FieldBigCPUTemp   = "bigserver_cpu_temp"
	FieldSmallRAM     = "smallserver_ram_used_percent"
	FieldBigRAM       = "bigserver_ram_used_percent"

	FieldNVMe0100Temp = "nvme_0100_temp"
	FieldNVMe8100Temp = "nvme_8100_temp"

	FieldPublicIP    = "public_ip"
	FieldCity        = "city"
	FieldCountryCode = "country_code"
	FieldISP         = "isp"

	FieldLocalCPU = "local_cpu_percent"
	FieldLocalRAM = "local_ram_percent"
)

// FieldSpec declares one field of the snapshot vocabulary.
type FieldSpec struct {
	Name string
	Kind Kind

	// Default is used when no fresh value arrived and the cache cannot help.
	// nil is the explicit "unknown" marker; the presentation layer renders it
	// as a placeholder.
	Default any

	// Cached marks the field as allowed to show a stale-but-known value while
	// its source is unavailable. Freshly sampled power and thermal telemetry
	// must never be cached.
	Cached bool
}

// Catalog is an ordered, immutable set of field specs.
type Catalog struct {
	specs []FieldSpec
	index map[string]int
}

// NewCatalog builds a catalog, rejecting empty and duplicate names.
func NewCatalog(specs ...FieldSpec) (*Catalog, error) {
	c := &Catalog{
		specs: make([]FieldSpec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("field spec with empty name")
		}
		if _, dup := c.index[s.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", s.Name)
		}
		c.index[s.Name] = len(c.specs)
		c.specs = append(c.specs, s)
	}
	return c, nil
}

// Specs returns a copy of the field specs in declaration order.
func (c *Catalog) Specs() []FieldSpec {
	out := make([]FieldSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Lookup returns the spec for name.
func (c *Catalog) Lookup(name string) (FieldSpec, bool) {
	i, ok := c.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return c.specs[i], true
}

// Len returns the number of declared fields.
func (c *Catalog) Len() int {
	return len(c.specs)
}

// DefaultSpecs is the dashboard's field vocabulary.
// Only WAN identity is cache-eligible: it changes rarely and the public
// lookup services it comes from are the least reliable sources.
func DefaultSpecs() []FieldSpec {
	return []FieldSpec{
		{Name: FieldDownload, Kind: KindNumber, Default: 0.0},
		{Name: FieldUpload, Kind: KindNumber, Default: 0.0},
		{Name: FieldLatency, Kind: KindNumber, Default: 0.0},
		{Name: FieldLocation, Kind: KindText, Default: Unknown},

		{Name: FieldUPSStatus, Kind: KindText, Default: Unknown},
		{Name: FieldUPSLoad, Kind: KindPercent, Default: 0.0},
		{Name: FieldBatteryCharge, Kind: KindPercent, Default: 0.0},
		{Name: FieldChargerStatus, Kind: KindText, Default: Unknown},
		{Name: FieldBatteryVoltage, Kind: KindNumber, Default: 0.0},
		{Name: FieldInputVoltage, Kind: KindNumber, Default: 0.0},
		{Name: FieldOutputVoltage, Kind: KindNumber, Default: 0.0},
		{Name: FieldUPSTemp, Kind: KindTemperature, Default: 0.0},

		{Name: FieldSmallCPUTemp, Kind: KindTemperature},
		{Name: FieldBigCPUTemp, Kind: KindTemperature},
		{Name: FieldSmallRAM, Kind: KindPercent},
		{Name: FieldBigRAM, Kind: KindPercent},

		{Name: FieldNVMe0100Temp, Kind: KindTemperature},
		{Name: FieldNVMe8100Temp, Kind: KindTemperature},

		{Name: FieldPublicIP, Kind: KindText, Default: Unknown, Cached: true},
		{Name: FieldCity, Kind: KindText, Default: Unknown, Cached: true},
		{Name: FieldCountryCode, Kind: KindText, Default: Unknown, Cached: true},
		{Name: FieldISP, Kind: KindText, Default: Unknown, Cached: true},

		{Name: FieldLocalCPU, Kind: KindPercent},
		{Name: FieldLocalRAM, Kind: KindPercent},
	}
}

// DefaultCatalog returns the catalog built from DefaultSpecs.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultSpecs()...)
	if err != nil {
		panic(err)
	}
	return c
}
