package summary

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsDuplicateDigest(t *testing.T) {
	ts := time.Date(2017, 3, 6, 21, 44, 36, 0, time.UTC)

	s := NewStats("")
	s.Add(100, "sha1:AAAA", ts)
	s.Add(100, "sha1:AAAA", ts.Add(time.Minute))

	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, int64(1), s.UniqueCount)
	assert.Equal(t, int64(200), s.Bytes)
	assert.Equal(t, int64(100), s.UniqueBytes)
}

func TestStatsBounds(t *testing.T) {
	ts := time.Date(2017, 3, 6, 21, 44, 36, 0, time.UTC)

	s := NewStats("")
	for i, digest := range []string{"a", "b", "a", "", "", "c"} {
		s.Add(int64(10*i), digest, ts.Add(time.Duration(i)*time.Second))
	}

	assert.LessOrEqual(t, s.UniqueCount, s.Count)
	assert.LessOrEqual(t, s.UniqueBytes, s.Bytes)
}

func TestStatsTimeRange(t *testing.T) {
	first := time.Date(2017, 3, 6, 21, 0, 0, 0, time.UTC)
	last := first.Add(2 * time.Hour)

	s := NewStats("")
	s.Add(1, "a", last)
	s.Add(1, "b", first)
	s.Add(1, "c", first.Add(time.Hour))

	require.NotNil(t, s.FirstTime)
	require.NotNil(t, s.LastTime)
	assert.True(t, s.FirstTime.Equal(first))
	assert.True(t, s.LastTime.Equal(last))
}

func TestStatsZeroTimestampIgnored(t *testing.T) {
	s := NewStats("")
	s.Add(1, "a", time.Time{})

	assert.Nil(t, s.FirstTime)
	assert.Nil(t, s.LastTime)
}

func TestStatsJSONOmitsNullTimes(t *testing.T) {
	data, err := json.Marshal(NewStats("8 KiB"))
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Contains(t, fields, "count")
	assert.Contains(t, fields, "label")
	assert.NotContains(t, fields, "firstTime")
	assert.NotContains(t, fields, "lastTime")
}
