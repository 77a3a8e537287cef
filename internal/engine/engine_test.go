package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georadius/internal/geoindex"
	"github.com/sells-group/georadius/internal/model"
	"github.com/sells-group/georadius/internal/region"
	"github.com/sells-group/georadius/internal/statstore"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func mustKey(t *testing.T, state, county string) model.CountyKey {
	t.Helper()
	key, ok := model.NewCountyKey(state, county)
	require.True(t, ok)
	return key
}

// fixture builds County X with two cities (populations 1000 and 3000, the
// larger at (10, 20)) and County Y about 50 miles due north with population
// 500. Cases: X=8, Y=2.
func fixture(t *testing.T) (*geoindex.Index, *statstore.Store) {
	t.Helper()

	idx := geoindex.New()
	x := mustKey(t, "KS", "X")
	y := mustKey(t, "KS", "Y")
	idx.Add(x, "X", 9.5, 20.0, 1000)
	idx.Add(x, "X", 10.0, 20.0, 3000)
	idx.Add(y, "Y", 10.7237, 20.0, 500)

	stats := statstore.New([]string{"cases", "deaths"})
	stats.Add(x, day(t, "2021-03-01"), "001", map[string]float64{"cases": 8, "deaths": 1})
	stats.Add(y, day(t, "2021-03-01"), "002", map[string]float64{"cases": 2, "deaths": 0})
	return idx, stats
}

func TestEngine_Aggregate(t *testing.T) {
	e := New(fixture(t))

	res, err := e.Aggregate(model.Query{County: "X", State: "KS", RadiusMiles: 100}, "cases", nil)
	require.NoError(t, err)

	assert.Equal(t, 10.0, res.RawTotal)
	assert.Equal(t, int64(4500), res.TotalPopulation)
	require.NotNil(t, res.Density)
	assert.InDelta(t, 222.22, *res.Density, 0.01)

	require.Len(t, res.Members, 2)
	assert.Equal(t, "X", res.Members[0].County)
	assert.Equal(t, "001", res.Members[0].FIPS)
	assert.Equal(t, 0.0, res.Members[0].DistanceMiles)
	assert.Equal(t, "Y", res.Members[1].County)
	assert.InDelta(t, 50.0, res.Members[1].DistanceMiles, 0.1)
}

func TestEngine_AggregateRadiusExcludes(t *testing.T) {
	e := New(fixture(t))

	res, err := e.Aggregate(model.Query{County: "X", State: "KS", RadiusMiles: 10}, "cases", nil)
	require.NoError(t, err)

	assert.Equal(t, 8.0, res.RawTotal)
	assert.Equal(t, int64(4000), res.TotalPopulation)
	assert.Len(t, res.Members, 1)
}

func TestEngine_MissingStatsCountsPopulation(t *testing.T) {
	idx, stats := fixture(t)
	z := mustKey(t, "KS", "Z")
	idx.Add(z, "Z", 10.1, 20.0, 250) // close to X, absent from stats

	e := New(idx, stats)
	res, err := e.Aggregate(model.Query{County: "X", State: "KS", RadiusMiles: 100}, "cases", nil)
	require.NoError(t, err)

	// Z adds population but no cases and has no fips for the output map.
	assert.Equal(t, 10.0, res.RawTotal)
	assert.Equal(t, int64(4750), res.TotalPopulation)
	require.Len(t, res.Members, 3)
	assert.Equal(t, "Z", res.Members[2].County)
	assert.Equal(t, "", res.Members[2].FIPS)
	assert.Equal(t, 0.0, res.Members[2].Value)
}

func TestEngine_DensityNotApplicable(t *testing.T) {
	idx := geoindex.New()
	key := mustKey(t, "PR", "Culebra")
	idx.Add(key, "Culebra", 18.31, -65.30, 0)

	stats := statstore.New([]string{"cases"})
	stats.Add(key, day(t, "2021-03-01"), "72049", map[string]float64{"cases": 4})

	e := New(idx, stats)
	res, err := e.Aggregate(model.Query{County: "Culebra", State: "PR", RadiusMiles: 1}, "cases", nil)
	require.NoError(t, err)

	assert.Equal(t, 4.0, res.RawTotal)
	assert.Equal(t, int64(0), res.TotalPopulation)
	assert.Nil(t, res.Density)
}

func TestEngine_TargetDate(t *testing.T) {
	idx, stats := fixture(t)
	x := mustKey(t, "KS", "X")
	stats.Add(x, day(t, "2021-03-02"), "001", map[string]float64{"cases": 20, "deaths": 2})

	e := New(idx, stats)

	// Explicit date picks the exact record.
	at := day(t, "2021-03-01")
	res, err := e.Aggregate(model.Query{County: "X", State: "KS", RadiusMiles: 10}, "cases", &at)
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.RawTotal)
	assert.Equal(t, "2021-03-01", res.TargetDate)

	// No date resolves the latest.
	res, err = e.Aggregate(model.Query{County: "X", State: "KS", RadiusMiles: 10}, "cases", nil)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.RawTotal)

	// A date nobody has: zero contributions, population intact.
	missing := day(t, "2020-01-01")
	res, err = e.Aggregate(model.Query{County: "X", State: "KS", RadiusMiles: 100}, "cases", &missing)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.RawTotal)
	assert.Equal(t, int64(4500), res.TotalPopulation)
}

func TestEngine_UnknownStatistic(t *testing.T) {
	e := New(fixture(t))

	_, err := e.Aggregate(model.Query{County: "X", State: "KS", RadiusMiles: 10}, "hospitalizations", nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownStatistic))
	assert.Contains(t, err.Error(), "not in dataset")
}

func TestEngine_UnknownTarget(t *testing.T) {
	e := New(fixture(t))

	_, err := e.Aggregate(model.Query{County: "Nowhere", State: "KS", RadiusMiles: 10}, "cases", nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, region.ErrNotGeolocatable))
	assert.Contains(t, err.Error(), "not geolocatable")
}

// batchFixture builds three counties on a north-south line, each about 34.5
// miles apart, with fips 001/002/003 and cases 2/3/6.
func batchFixture(t *testing.T) *Engine {
	t.Helper()

	idx := geoindex.New()
	a := mustKey(t, "NE", "A")
	b := mustKey(t, "NE", "B")
	c := mustKey(t, "NE", "C")
	idx.Add(a, "A", 40.0, -98.0, 100)
	idx.Add(b, "B", 40.5, -98.0, 100)
	idx.Add(c, "C", 41.0, -98.0, 100)

	stats := statstore.New([]string{"cases"})
	d := day(t, "2021-03-01")
	stats.Add(a, d, "001", map[string]float64{"cases": 2})
	stats.Add(b, d, "002", map[string]float64{"cases": 3})
	stats.Add(c, d, "003", map[string]float64{"cases": 6})
	return New(idx, stats)
}

func TestEngine_RunMergesLastWriterWins(t *testing.T) {
	e := batchFixture(t)

	// Query 1 covers {001, 002} with total 5; query 2 covers {002, 003}
	// with total 9. The overlap on 002 must take the later value.
	batch, err := e.Run(context.Background(), []model.Query{
		{County: "A", State: "NE", RadiusMiles: 40},
		{County: "C", State: "NE", RadiusMiles: 40},
	}, "cases", nil)
	require.NoError(t, err)

	require.Len(t, batch.Results, 2)
	assert.Equal(t, 5.0, batch.Results[0].RawTotal)
	assert.Equal(t, 9.0, batch.Results[1].RawTotal)

	require.Len(t, batch.ByFIPS, 3)
	assert.Equal(t, 5.0, batch.ByFIPS["001"].Raw)
	assert.Equal(t, 9.0, batch.ByFIPS["002"].Raw)
	assert.Equal(t, 9.0, batch.ByFIPS["003"].Raw)
	assert.NotEmpty(t, batch.RunID)
}

func TestEngine_RunOrderMatters(t *testing.T) {
	e := batchFixture(t)

	batch, err := e.Run(context.Background(), []model.Query{
		{County: "C", State: "NE", RadiusMiles: 40},
		{County: "A", State: "NE", RadiusMiles: 40},
	}, "cases", nil)
	require.NoError(t, err)

	assert.Equal(t, 5.0, batch.ByFIPS["002"].Raw)
}

func TestEngine_RunAbortsOnFatalQuery(t *testing.T) {
	e := batchFixture(t)

	_, err := e.Run(context.Background(), []model.Query{
		{County: "A", State: "NE", RadiusMiles: 40},
		{County: "Nowhere", State: "NE", RadiusMiles: 40},
	}, "cases", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query 2")
}

func TestEngine_RunRejectsUnknownStatistic(t *testing.T) {
	e := batchFixture(t)

	_, err := e.Run(context.Background(), []model.Query{
		{County: "A", State: "NE", RadiusMiles: 40},
	}, "deaths", nil)
	assert.Error(t, err)
}

func TestEngine_RunEmptyBatch(t *testing.T) {
	e := batchFixture(t)

	batch, err := e.Run(context.Background(), nil, "cases", nil)
	require.NoError(t, err)
	assert.Empty(t, batch.Results)
	assert.Empty(t, batch.ByFIPS)
}

func TestEngine_RunCancelled(t *testing.T) {
	e := batchFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, []model.Query{
		{County: "A", State: "NE", RadiusMiles: 40},
	}, "cases", nil)
	assert.Error(t, err)
}
