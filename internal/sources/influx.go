package sources

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/rileyhilliard/lcdash/internal/logger"
	"github.com/rileyhilliard/lcdash/internal/telemetry"
)

// Point is one record returned by a last-value query.
type Point struct {
	Measurement string
	Field       string
	Value       any
	Time        time.Time
}

// Querier runs a Flux query and returns its records.
type Querier interface {
	LastValues(ctx context.Context, flux string) ([]Point, error)
}

// Query selects the latest value of some fields within a time window.
type Query struct {
	Bucket      string
	Window      time.Duration
	Measurement string            // optional
	Fields      []string          // _field values, OR-ed
	Tags        map[string]string // tag equality filters, AND-ed
}

// Flux renders the query. String literals are quoted so tag values from
// configuration cannot break out of the filter.
func (q Query) Flux() string {
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", strconv.Quote(q.Bucket))
	fmt.Fprintf(&b, "  |> range(start: -%s)\n", fluxDuration(q.Window))
	if q.Measurement != "" {
		fmt.Fprintf(&b, "  |> filter(fn: (r) => r[\"_measurement\"] == %s)\n", strconv.Quote(q.Measurement))
	}
	if len(q.Fields) > 0 {
		conds := make([]string, len(q.Fields))
		for i, f := range q.Fields {
			conds[i] = fmt.Sprintf("r[\"_field\"] == %s", strconv.Quote(f))
		}
		fmt.Fprintf(&b, "  |> filter(fn: (r) => %s)\n", strings.Join(conds, " or "))
	}
	keys := make([]string, 0, len(q.Tags))
	for k := range q.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  |> filter(fn: (r) => r[%s] == %s)\n", strconv.Quote(k), strconv.Quote(q.Tags[k]))
	}
	b.WriteString("  |> last()\n")
	return b.String()
}

// fluxDuration renders d in the largest whole unit, e.g. "5m".
func fluxDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "1m"
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%ds", d/time.Second)
	default:
		return fmt.Sprintf("%dms", d/time.Millisecond)
	}
}

// Probe is a query plus the mapping from its series field names to
// snapshot field names.
type Probe struct {
	Name    string
	Query   Query
	Targets map[string]string // _field -> snapshot field
}

// SingleProbe builds a probe reading one series field into one snapshot field.
func SingleProbe(name string, q Query, seriesField, target string) Probe {
	q.Fields = []string{seriesField}
	return Probe{Name: name, Query: q, Targets: map[string]string{seriesField: target}}
}

// TimeSeries reads the latest values of a set of probes.
type TimeSeries struct {
	querier Querier
	probes  []Probe
	log     logger.Logger
}

// NewTimeSeries creates a time-series adapter.
func NewTimeSeries(q Querier, probes []Probe, log logger.Logger) *TimeSeries {
	if log == nil {
		log = logger.Noop()
	}
	return &TimeSeries{querier: q, probes: probes, log: log}
}

func (t *TimeSeries) Name() string { return "influxdb" }

// Fetch runs every probe. A probe that fails or finds no series leaves only
// its own fields missing. When a probe returns several records for the same
// field, the first one is used.
func (t *TimeSeries) Fetch(ctx context.Context) telemetry.Result {
	values := make(map[string]any)
	var errs []error

	for _, p := range t.probes {
		points, err := t.querier.LastValues(ctx, p.Query.Flux())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		found := 0
		for _, pt := range points {
			target, ok := p.Targets[pt.Field]
			if !ok || pt.Value == nil {
				continue
			}
			if _, seen := values[target]; seen {
				continue
			}
			values[target] = pt.Value
			found++
		}
		if found == 0 {
			t.log.Debug("probe %s returned no series", p.Name)
		}
	}

	return telemetry.Result{Source: t.Name(), Values: values, Err: errors.Join(errs...)}
}

// InfluxQuerier runs queries against an InfluxDB 2.x server.
type InfluxQuerier struct {
	client influxdb2.Client
	api    api.QueryAPI
}

// NewInfluxQuerier creates a client. No connection is made until the first query.
func NewInfluxQuerier(url, token, org string, timeout time.Duration) *InfluxQuerier {
	opts := influxdb2.DefaultOptions()
	if secs := uint(timeout / time.Second); secs > 0 {
		opts.SetHTTPRequestTimeout(secs)
	}
	client := influxdb2.NewClientWithOptions(url, token, opts)
	return &InfluxQuerier{client: client, api: client.QueryAPI(org)}
}

// LastValues runs flux and returns every record in the result.
func (q *InfluxQuerier) LastValues(ctx context.Context, flux string) ([]Point, error) {
	result, err := q.api.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	var points []Point
	for result.Next() {
		rec := result.Record()
		points = append(points, Point{
			Measurement: rec.Measurement(),
			Field:       rec.Field(),
			Value:       rec.Value(),
			Time:        rec.Time(),
		})
	}
	if err := result.Err(); err != nil {
		return points, err
	}
	return points, nil
}

// Close releases idle connections.
func (q *InfluxQuerier) Close() {
	q.client.Close()
}
