package crawllog

import "time"

// Record represents a single fetch attempt parsed from a crawl log line
type Record struct {
	Timestamp     time.Time
	StatusCode    int
	Size          int64
	URL           string
	DiscoveryPath string
	ParentURL     string
	MimeType      string
	WorkerThread  string
	FetchDuration time.Duration
	Digest        string
	SourceTag     string
	Annotations   string
}
