// Package region turns a radius query into the set of member counties.
package region

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georadius/internal/geoindex"
	"github.com/sells-group/georadius/internal/model"
)

// ErrNotGeolocatable is returned when a query target has no entry in the geo
// index, so no radius around it can be computed.
var ErrNotGeolocatable = eris.New("county not geolocatable")

// Region is the resolved member set for one query.
type Region struct {
	Target  *geoindex.Record
	Members []model.CountyKey
}

type memoKey struct {
	key    model.CountyKey
	radius float64
}

// Resolver anchors queries against the geo index. The full scan result is
// memoized per (target, radius) so batches that repeat a target skip the
// O(n) pass; the memo is guarded so a server can share one resolver across
// requests.
type Resolver struct {
	idx *geoindex.Index

	mu   sync.RWMutex
	memo map[memoKey][]model.CountyKey
}

// New returns a resolver over the given index.
func New(idx *geoindex.Index) *Resolver {
	return &Resolver{idx: idx, memo: make(map[memoKey][]model.CountyKey)}
}

// Resolve validates the query, anchors its target, and returns the member
// set within radius. A target county absent from the geo index is fatal:
// without a coordinate no radius is computable.
func (r *Resolver) Resolve(q model.Query) (*Region, error) {
	if err := q.Validate(); err != nil {
		return nil, eris.Wrap(err, "region: validate query")
	}

	key, ok := q.Key()
	if !ok {
		return nil, eris.Errorf("region: invalid query target %q, %q", q.County, q.State)
	}

	target, ok := r.idx.Lookup(key)
	if !ok {
		return nil, eris.Wrapf(ErrNotGeolocatable, "region: resolve %s", key)
	}

	mk := memoKey{key: key, radius: q.RadiusMiles}
	r.mu.RLock()
	members, hit := r.memo[mk]
	r.mu.RUnlock()
	if hit {
		return &Region{Target: target, Members: members}, nil
	}

	members = r.idx.WithinRadius(target, q.RadiusMiles)
	r.mu.Lock()
	r.memo[mk] = members
	r.mu.Unlock()

	zap.L().Debug("region resolved",
		zap.String("target", key.String()),
		zap.Float64("radius_miles", q.RadiusMiles),
		zap.Int("members", len(members)),
	)

	return &Region{Target: target, Members: members}, nil
}
