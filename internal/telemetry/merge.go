package telemetry

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/lcdash/internal/logger"
)

// Result is what a source adapter hands back for one tick.
// Values holds only the fields that resolved; a field missing from Values is
// unavailable this tick. Err explains why some or all fields are missing.
type Result struct {
	Source string
	Values map[string]any
	Err    error
}

// Unavailable builds a Result carrying no values.
func Unavailable(source string, err error) Result {
	return Result{Source: source, Err: err}
}

// Merger turns adapter results into a total Snapshot, consulting and
// updating a SourceCache.
type Merger struct {
	catalog *Catalog
	cache   *SourceCache
	log     logger.Logger
}

// NewMerger creates a merger bound to the loop-owned cache.
func NewMerger(catalog *Catalog, cache *SourceCache, log logger.Logger) *Merger {
	if log == nil {
		log = logger.Noop()
	}
	return &Merger{catalog: catalog, cache: cache, log: log}
}

// Merge resolves every catalog field:
//  1. a value fetched this tick wins, and refreshes the cache if the field is cache-eligible;
//  2. otherwise a cache-eligible field falls back to its cached value;
//  3. otherwise the field's static default is used.
//
// When several results carry the same field, the later one wins.
func (m *Merger) Merge(results []Result, now time.Time) Snapshot {
	fresh := make(map[string]any)
	for _, r := range results {
		for name, v := range r.Values {
			if v == nil {
				continue
			}
			if _, ok := m.catalog.Lookup(name); !ok {
				m.log.Debug("%s returned undeclared field %q, ignoring", r.Source, name)
				continue
			}
			fresh[name] = v
		}
	}

	snap := Snapshot{
		taken:  now,
		order:  make([]string, 0, m.catalog.Len()),
		fields: make(map[string]MetricField, m.catalog.Len()),
	}

	for _, spec := range m.catalog.specs {
		f := MetricField{Name: spec.Name, Kind: spec.Kind}

		if v, ok := fresh[spec.Name]; ok {
			f.Value = v
			f.From = OriginFresh
			f.ResolvedAt = now
			if spec.Cached && m.cache != nil {
				m.cache.Put(spec.Name, v, now)
			}
		} else if e, ok := m.cachedValue(spec); ok {
			f.Value = e.Value
			f.From = OriginCached
			f.ResolvedAt = e.At
			m.log.Debug("using cached %s from %s", spec.Name, humanize.RelTime(e.At, now, "ago", "from now"))
		} else {
			f.Value = spec.Default
			f.From = OriginDefault
		}

		snap.order = append(snap.order, spec.Name)
		snap.fields[spec.Name] = f
	}

	return snap
}

func (m *Merger) cachedValue(spec FieldSpec) (CacheEntry, bool) {
	if !spec.Cached || m.cache == nil {
		return CacheEntry{}, false
	}
	return m.cache.Get(spec.Name)
}
