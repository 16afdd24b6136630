package storage

import "time"

// SummaryRow represents one stored summary: the whole run, or one group
// when the run was grouped
type SummaryRow struct {
	SummaryID int
	GroupKey  string
	CreatedAt time.Time
}

// StatRow represents one dimension-value bucket of a stored summary
type StatRow struct {
	StatID      int
	SummaryID   int
	Dimension   string
	Key         string
	Label       string
	Count       int64
	UniqueCount int64
	Bytes       int64
	UniqueBytes int64
	FirstTime   *time.Time
	LastTime    *time.Time
}

// Dimension names used in the stats table
const (
	DimTotals           = "totals"
	DimStatusCode       = "statusCode"
	DimMimeType         = "mimeType"
	DimSizeBucket       = "sizeBucket"
	DimRegisteredDomain = "registeredDomain"
	DimSeed             = "seed"
)
