package summary

import "time"

// Stats accumulates volume, duplication and time-range figures for one
// dimension value. Buckets are created lazily on first use and only ever
// grow; duplication is tracked by content digest.
type Stats struct {
	Count       int64      `json:"count"`
	UniqueCount int64      `json:"uniqueCount"`
	Bytes       int64      `json:"bytes"`
	UniqueBytes int64      `json:"uniqueBytes"`
	FirstTime   *time.Time `json:"firstTime,omitempty"`
	LastTime    *time.Time `json:"lastTime,omitempty"`
	Label       string     `json:"label,omitempty"`

	seenDigests map[string]struct{}
}

// NewStats returns an empty bucket; label may be empty
func NewStats(label string) *Stats {
	return &Stats{Label: label, seenDigests: make(map[string]struct{})}
}

// Add folds one record's size, digest and timestamp into the bucket. Only
// the first occurrence of a digest counts towards the unique figures.
func (s *Stats) Add(size int64, digest string, timestamp time.Time) {
	s.Count++
	s.Bytes += size

	if _, seen := s.seenDigests[digest]; !seen {
		s.seenDigests[digest] = struct{}{}
		s.UniqueCount++
		s.UniqueBytes += size
	}

	if !timestamp.IsZero() {
		if s.FirstTime == nil || timestamp.Before(*s.FirstTime) {
			t := timestamp
			s.FirstTime = &t
		}
		if s.LastTime == nil || timestamp.After(*s.LastTime) {
			t := timestamp
			s.LastTime = &t
		}
	}
}
