package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/velardi/logtally/internal/crawllog"
	"github.com/velardi/logtally/internal/seeds"
)

// RecordSource is one sequential pass over a crawl log
type RecordSource interface {
	Scan() bool
	Record() *crawllog.Record
	Err() error
}

// UnresolvedSeedError reports a record whose discovery key never made it
// into the resolver. The accumulation pass reads the same log as the build
// pass, so this means the two passes disagreed; silently misattributing the
// record to a wrong seed would be worse than stopping.
type UnresolvedSeedError struct {
	Key seeds.Key
}

func (e *UnresolvedSeedError) Error() string {
	return fmt.Sprintf("no seed resolved for %s", e.Key)
}

// SizeHisto holds one Stats bucket per observed size boundary. It marshals
// with the boundaries in ascending numeric order, which plain map keys
// would not guarantee.
type SizeHisto map[int64]*Stats

func (h SizeHisto) MarshalJSON() ([]byte, error) {
	buckets := make([]int64, 0, len(h))
	for bucket := range h {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bucket := range buckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.FormatInt(bucket, 10)))
		buf.WriteByte(':')
		stats, err := json.Marshal(h[bucket])
		if err != nil {
			return nil, err
		}
		buf.Write(stats)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary aggregates crawl records into totals plus per-dimension
// breakdowns by status code, mime type, size bucket, registered domain and
// originating seed
type Summary struct {
	Totals            *Stats            `json:"totals"`
	StatusCodes       map[int]*Stats    `json:"statusCodes"`
	MimeTypes         map[string]*Stats `json:"mimeTypes"`
	SizeHisto         SizeHisto         `json:"sizeHisto"`
	RegisteredDomains map[string]*Stats `json:"registeredDomains"`
	Seeds             map[string]*Stats `json:"seeds"`

	resolver *seeds.Resolver
}

// New creates an empty summary backed by a resolved seed map
func New(resolver *seeds.Resolver) *Summary {
	return &Summary{
		Totals:            NewStats(""),
		StatusCodes:       make(map[int]*Stats),
		MimeTypes:         make(map[string]*Stats),
		SizeHisto:         make(SizeHisto),
		RegisteredDomains: make(map[string]*Stats),
		Seeds:             make(map[string]*Stats),
		resolver:          resolver,
	}
}

// Add folds one record into the summary. The only error it can return is
// an UnresolvedSeedError.
func (s *Summary) Add(rec *crawllog.Record) error {
	key := seeds.KeyFor(rec)
	seed, ok := s.resolver.Seed(key)
	if !ok {
		return &UnresolvedSeedError{Key: key}
	}

	mimeType := crawllog.CanonicalMimeType(rec.MimeType)
	bucket := SizeBucket(rec.Size)
	domain := RegisteredDomain(rec.URL)

	s.Totals.Add(rec.Size, rec.Digest, rec.Timestamp)
	statsFor(s.Seeds, seed).Add(rec.Size, rec.Digest, rec.Timestamp)
	statsFor(s.MimeTypes, mimeType).Add(rec.Size, rec.Digest, rec.Timestamp)
	statsFor(s.RegisteredDomains, domain).Add(rec.Size, rec.Digest, rec.Timestamp)

	statusStats, ok := s.StatusCodes[rec.StatusCode]
	if !ok {
		statusStats = NewStats(crawllog.DescribeStatus(rec.StatusCode))
		s.StatusCodes[rec.StatusCode] = statusStats
	}
	statusStats.Add(rec.Size, rec.Digest, rec.Timestamp)

	sizeStats, ok := s.SizeHisto[bucket]
	if !ok {
		sizeStats = NewStats(HumanSize(bucket))
		s.SizeHisto[bucket] = sizeStats
	}
	sizeStats.Add(rec.Size, rec.Digest, rec.Timestamp)

	return nil
}

// statsFor fetches the bucket for a dimension value, creating it on first
// touch
func statsFor(m map[string]*Stats, key string) *Stats {
	stats, ok := m[key]
	if !ok {
		stats = NewStats("")
		m[key] = stats
	}
	return stats
}

// Build folds every record of one log pass into a single summary
func Build(src RecordSource, resolver *seeds.Resolver) (*Summary, error) {
	s := New(resolver)
	for src.Scan() {
		if err := s.Add(src.Record()); err != nil {
			return nil, err
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("failed reading crawl log: %w", err)
	}
	return s, nil
}

// GroupedBy partitions records by the grouping strategy's key and folds
// each partition into its own independent summary
func GroupedBy(src RecordSource, resolver *seeds.Resolver, groupBy GroupBy) (map[string]*Summary, error) {
	keyFn, err := groupKeyFunc(groupBy, resolver)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*Summary)
	for src.Scan() {
		rec := src.Record()
		key, err := keyFn(rec)
		if err != nil {
			return nil, err
		}

		group, ok := groups[key]
		if !ok {
			group = New(resolver)
			groups[key] = group
		}
		if err := group.Add(rec); err != nil {
			return nil, err
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("failed reading crawl log: %w", err)
	}
	return groups, nil
}

// TopN returns a copy with the statusCodes, mimeTypes and registeredDomains
// breakdowns limited to the n busiest entries. The size histogram and the
// seed attribution are kept whole.
func (s *Summary) TopN(n int) *Summary {
	if n <= 0 {
		return s
	}
	return &Summary{
		Totals:            s.Totals,
		StatusCodes:       topN(s.StatusCodes, n),
		MimeTypes:         topN(s.MimeTypes, n),
		SizeHisto:         s.SizeHisto,
		RegisteredDomains: topN(s.RegisteredDomains, n),
		Seeds:             s.Seeds,
		resolver:          s.resolver,
	}
}

func topN[K comparable](m map[K]*Stats, n int) map[K]*Stats {
	if len(m) <= n {
		return m
	}
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return m[keys[i]].Count > m[keys[j]].Count })

	limited := make(map[K]*Stats, n)
	for _, key := range keys[:n] {
		limited[key] = m[key]
	}
	return limited
}

// GroupBy selects how records are partitioned into summaries
type GroupBy int

const (
	GroupNone GroupBy = iota
	GroupHost
	GroupRegisteredDomain
	GroupSeed
)

// ParseGroupBy maps the -g flag values onto a grouping strategy
func ParseGroupBy(value string) (GroupBy, error) {
	switch value {
	case "", "none":
		return GroupNone, nil
	case "host":
		return GroupHost, nil
	case "registered-domain":
		return GroupRegisteredDomain, nil
	case "seed":
		return GroupSeed, nil
	}
	return GroupNone, fmt.Errorf("unknown grouping %q (want host, registered-domain or seed)", value)
}

func groupKeyFunc(groupBy GroupBy, resolver *seeds.Resolver) (func(*crawllog.Record) (string, error), error) {
	switch groupBy {
	case GroupHost:
		return func(rec *crawllog.Record) (string, error) {
			return hostOf(rec.URL), nil
		}, nil
	case GroupRegisteredDomain:
		return func(rec *crawllog.Record) (string, error) {
			return RegisteredDomain(rec.URL), nil
		}, nil
	case GroupSeed:
		return func(rec *crawllog.Record) (string, error) {
			key := seeds.KeyFor(rec)
			seed, ok := resolver.Seed(key)
			if !ok {
				return "", &UnresolvedSeedError{Key: key}
			}
			return seed, nil
		}, nil
	}
	return nil, fmt.Errorf("grouping strategy %d has no key function", groupBy)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
