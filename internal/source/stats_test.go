package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georadius/internal/model"
)

func TestParseStatsHeader(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		wantStats []string
		wantErr   bool
	}{
		{
			name:      "standard",
			header:    []string{"date", "county", "state", "fips", "cases", "deaths"},
			wantStats: []string{"cases", "deaths"},
		},
		{
			name:      "case and spacing tolerated",
			header:    []string{"Date", " County", "STATE", "fips ", "Cases"},
			wantStats: []string{"cases"},
		},
		{
			name:      "live variant with extra columns",
			header:    []string{"date", "county", "state", "fips", "cases", "deaths", "confirmed_cases", "confirmed_deaths", "probable_cases", "probable_deaths"},
			wantStats: []string{"cases", "deaths", "confirmed_cases", "confirmed_deaths", "probable_cases", "probable_deaths"},
		},
		{
			name:      "no statistic columns",
			header:    []string{"date", "county", "state", "fips"},
			wantStats: []string{},
		},
		{
			name:    "wrong column order",
			header:  []string{"county", "date", "state", "fips", "cases"},
			wantErr: true,
		},
		{
			name:    "too short",
			header:  []string{"date", "county"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := ParseStatsHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStats, stats)
		})
	}
}

func TestLoadStats_Basic(t *testing.T) {
	path := writeTemp(t, "stats.csv", []byte(
		"date,county,state,fips,cases,deaths\n"+
			"2021-03-01,Cook,Illinois,17031,5,1\n"+
			"2021-03-02,Cook,Illinois,17031,9,2\n"+
			"2021-03-01,Lake,Indiana,18089,3,0\n"))

	store, sum, err := LoadStats(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cases", "deaths"}, store.StatNames())
	assert.Equal(t, 2, store.Counties())
	assert.Equal(t, 3, store.Rows())
	assert.Equal(t, 3, sum.RowsLoaded)

	key, ok := model.NewCountyKey("Illinois", "Cook")
	require.True(t, ok)
	rec, ok := store.Resolve(key, nil)
	require.True(t, ok)
	assert.Equal(t, "17031", rec.FIPS)
	v, _ := rec.Value("cases")
	assert.Equal(t, 9.0, v)
}

func TestLoadStats_SkipsBadRows(t *testing.T) {
	path := writeTemp(t, "stats.csv", []byte(
		"date,county,state,fips,cases,deaths\n"+
			"2021-03-01,Cook,Illinois,17031,5,1\n"+
			"2021-03-01,Somewhere,Atlantis,,1,0\n"+
			"2021-03-01,,Illinois,,1,0\n"+
			"not-a-date,Cook,Illinois,17031,1,0\n"+
			"2021-03-01,Cook,Illinois,17031,1\n"))

	store, sum, err := LoadStats(path)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Counties())
	assert.Equal(t, 5, sum.RowsRead)
	assert.Equal(t, 1, sum.RowsLoaded)
	assert.Equal(t, 1, sum.SkippedState)
	assert.Equal(t, 1, sum.SkippedName)
	assert.Equal(t, 1, sum.SkippedParse)
	assert.Equal(t, 1, sum.SkippedWidth)
}

func TestLoadStats_EmptyValuesParseAsZero(t *testing.T) {
	path := writeTemp(t, "stats.csv", []byte(
		"date,county,state,fips,cases,deaths\n"+
			"2021-03-01,Cook,Illinois,17031,,\n"))

	store, _, err := LoadStats(path)
	require.NoError(t, err)

	key, _ := model.NewCountyKey("IL", "Cook")
	rec, ok := store.Resolve(key, nil)
	require.True(t, ok)
	v, ok := rec.Value("cases")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestLoadStats_BadHeaderFatal(t *testing.T) {
	path := writeTemp(t, "stats.csv", []byte(
		"county,date,state,fips,cases\n"+
			"Cook,2021-03-01,Illinois,17031,5\n"))

	_, _, err := LoadStats(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestLoadStats_MissingFile(t *testing.T) {
	_, _, err := LoadStats("/nonexistent/stats.csv")
	assert.Error(t, err)
}
