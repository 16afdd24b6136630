package crawllog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureLog = `2017-03-06T21:44:35.100Z 200 512 http://example.com/ - - text/html #001 20170306214434000+100 sha1:BBBB seedlist -
2017-03-06T21:44:36.132Z 200 2027 http://example.com/robots.txt P http://example.com/ text/plain #042 20170306214435539+142 sha1:AAAA - -
garbage line
20170306214437000 404 - http://example.com/missing L http://example.com/ unknown #042 - - - -
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crawl.log")
	require.NoError(t, os.WriteFile(path, []byte(fixtureLog), 0644))
	return path
}

func readAll(t *testing.T, path string) ([]*Record, int) {
	t.Helper()
	reader, err := Open(path)
	require.NoError(t, err)
	defer reader.Close()

	var recs []*Record
	for reader.Scan() {
		recs = append(recs, reader.Record())
	}
	require.NoError(t, reader.Err())
	return recs, reader.Skipped()
}

func TestReaderParsesRecords(t *testing.T) {
	recs, skipped := readAll(t, writeFixture(t))

	require.Len(t, recs, 3)
	assert.Equal(t, 1, skipped)

	seed := recs[0]
	assert.Equal(t, "http://example.com/", seed.URL)
	assert.Equal(t, "-", seed.DiscoveryPath)
	assert.Equal(t, "", seed.ParentURL)
	assert.Equal(t, int64(512), seed.Size)
	assert.Equal(t, "sha1:BBBB", seed.Digest)
	assert.Equal(t, "seedlist", seed.SourceTag)
	assert.True(t, seed.Timestamp.Equal(time.Date(2017, 3, 6, 21, 44, 35, 100000000, time.UTC)))

	robots := recs[1]
	assert.Equal(t, "P", robots.DiscoveryPath)
	assert.Equal(t, "http://example.com/", robots.ParentURL)
	assert.Equal(t, 142*time.Millisecond, robots.FetchDuration)
	assert.Equal(t, "#042", robots.WorkerThread)

	// Legacy 17-digit timestamp, dash size and dash digest
	missing := recs[2]
	assert.Equal(t, 404, missing.StatusCode)
	assert.Equal(t, int64(0), missing.Size)
	assert.Equal(t, "", missing.Digest)
	assert.Equal(t, time.Duration(0), missing.FetchDuration)
	assert.True(t, missing.Timestamp.Equal(time.Date(2017, 3, 6, 21, 44, 37, 0, time.UTC)))
}

func TestReaderRestartable(t *testing.T) {
	path := writeFixture(t)

	first, _ := readAll(t, path)
	second, _ := readAll(t, path)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].URL, second[i].URL)
	}
}

func TestReaderMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}

func TestParseTimestampLayouts(t *testing.T) {
	iso, err := parseTimestamp("2017-03-06T21:44:36.132Z")
	require.NoError(t, err)
	assert.Equal(t, 132000000, iso.Nanosecond())

	legacy, err := parseTimestamp("20170306214436")
	require.NoError(t, err)
	assert.True(t, legacy.Equal(time.Date(2017, 3, 6, 21, 44, 36, 0, time.UTC)))

	legacyMillis, err := parseTimestamp("20170306214436132")
	require.NoError(t, err)
	assert.True(t, legacyMillis.Equal(time.Date(2017, 3, 6, 21, 44, 36, 132000000, time.UTC)))

	_, err = parseTimestamp("not-a-time")
	assert.Error(t, err)
}
