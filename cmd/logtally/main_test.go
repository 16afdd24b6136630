package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureLog = `2017-03-06T21:44:35.100Z 200 1000 http://a.example/ - - text/html #001 20170306214434000+100 sha1:AA seedlist -
2017-03-06T21:44:36.132Z 200 2000 http://a.example/x L http://a.example/ text/html #002 20170306214435539+142 sha1:BB - -
2017-03-06T21:44:37.200Z 404 500 http://a.example/x/y LL http://a.example/x text/html #002 20170306214436800+90 sha1:CC - -
`

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crawl.log")
	require.NoError(t, os.WriteFile(path, []byte(fixtureLog), 0644))
	return path
}

func TestRunWritesSummary(t *testing.T) {
	out := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, run([]string{"-o", out, writeLog(t)}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc struct {
		Totals struct {
			Count int64 `json:"count"`
			Bytes int64 `json:"bytes"`
		} `json:"totals"`
		Seeds map[string]struct {
			Count int64 `json:"count"`
		} `json:"seeds"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, int64(3), doc.Totals.Count)
	assert.Equal(t, int64(3500), doc.Totals.Bytes)

	// Every record, however deep, is attributed to the one seed
	require.Len(t, doc.Seeds, 1)
	assert.Equal(t, int64(3), doc.Seeds["http://a.example/"].Count)
}

func TestRunGroupedBySeed(t *testing.T) {
	out := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, run([]string{"-g", "seed", "-o", out, writeLog(t)}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var groups map[string]struct {
		Totals struct {
			Count int64 `json:"count"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(data, &groups))

	require.Len(t, groups, 1)
	assert.Equal(t, int64(3), groups["http://a.example/"].Totals.Count)
}

func TestRunWritesMetricsAndDB(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "summary.json")
	db := filepath.Join(dir, "summary.db")
	metricsPath := filepath.Join(dir, "metrics.json")

	require.NoError(t, run([]string{"-o", out, "-db", db, "-metrics", metricsPath, writeLog(t)}))

	var figures struct {
		RecordsRead   int `json:"records_read"`
		DiscoveryKeys int `json:"discovery_keys"`
	}
	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &figures))
	assert.Equal(t, 3, figures.RecordsRead)
	assert.Equal(t, 3, figures.DiscoveryKeys)

	info, err := os.Stat(db)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRunMissingInput(t *testing.T) {
	assert.Error(t, run([]string{filepath.Join(t.TempDir(), "nope.log")}))
}

func TestRunBadFlags(t *testing.T) {
	assert.Error(t, run([]string{"-g", "bogus", writeLog(t)}))
	assert.Error(t, run([]string{}))
}
