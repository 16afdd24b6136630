package seeds

import (
	"github.com/sirupsen/logrus"

	"github.com/velardi/logtally/internal/crawllog"
)

// maxChaseDepth caps ancestor-chasing per key. Chains longer than this are
// treated as corrupted ancestry data, usually a cycle in the hop paths.
const maxChaseDepth = 50

// Key identifies one occurrence of a URL at a specific position in the
// discovery graph. The same URL reached over two different hop paths is two
// distinct keys.
type Key struct {
	URL  string
	Path string
}

// NormalizePath maps the crawl log's "no hop path" spellings onto the empty
// string, which marks a seed
func NormalizePath(path string) string {
	if path == "" || path == "-" {
		return ""
	}
	return path
}

// KeyFor builds the discovery key for a record
func KeyFor(rec *crawllog.Record) Key {
	return Key{URL: rec.URL, Path: NormalizePath(rec.DiscoveryPath)}
}

// IsRoot reports whether the key denotes a seed, i.e. has no parent
func (k Key) IsRoot() bool {
	return k.Path == ""
}

// Parent returns the key of the node that discovered this one: the given
// parent URL at this key's path with the final hop marker dropped. Each hop
// appends one marker to the path, so the parent's path is one character
// shorter.
func (k Key) Parent(parentURL string) Key {
	if k.Path == "" {
		return k
	}
	return Key{URL: parentURL, Path: k.Path[:len(k.Path)-1]}
}

func (k Key) String() string {
	if k.Path == "" {
		return k.URL
	}
	return k.URL + " via " + k.Path
}

// Resolver attributes every discovery key seen in a crawl log to the seed
// whose crawl ultimately caused it to be found. Feed it one full log pass
// with Add, collapse the resulting forest with Resolve, then answer
// attribution queries with Seed.
type Resolver struct {
	parents      map[Key]Key
	pathological int
	synthesized  int
}

// NewResolver returns an empty resolver
func NewResolver() *Resolver {
	return &Resolver{parents: make(map[Key]Key)}
}

// Add records the parent of one log record's discovery key. Seeds point at
// themselves. A later record for the same key overwrites an earlier one.
func (r *Resolver) Add(rec *crawllog.Record) {
	key := KeyFor(rec)
	if key.IsRoot() {
		r.parents[key] = key
		return
	}
	r.parents[key] = key.Parent(rec.ParentURL)
}

// Resolve collapses every key to its forest root in place, so afterwards
// every value in the map is a seed except for keys abandoned by the depth
// guard. Each step replaces a key's parent with its grandparent, so keys
// resolved early shorten the chains of keys resolved later. Resolving an
// already-resolved map is a no-op.
func (r *Resolver) Resolve() {
	keys := make([]Key, 0, len(r.parents))
	for key := range r.parents {
		keys = append(keys, key)
	}

	for _, key := range keys {
		depth := 0
		for !r.parents[key].IsRoot() {
			depth++
			if depth > maxChaseDepth {
				r.pathological++
				logrus.Warnf("Pathological discovery chain for %s, keeping partial ancestor %s", key, r.parents[key])
				break
			}

			ancestor := r.parents[key]
			next, ok := r.parents[ancestor]
			if !ok {
				// The ancestor was never logged as a record of its own.
				// Promote it to a root so the chain still ends somewhere
				// meaningful instead of failing the whole resolution.
				next = Key{URL: ancestor.URL}
				r.parents[ancestor] = next
				r.synthesized++
			}
			r.parents[key] = next
		}
	}
}

// Seed returns the seed URL the key resolves to. ok is false when the key
// was never seen during the build pass, which callers must treat as a data
// integrity failure rather than a missing seed.
func (r *Resolver) Seed(key Key) (string, bool) {
	root, ok := r.parents[key]
	if !ok {
		return "", false
	}
	return root.URL, true
}

// Len returns the number of distinct discovery keys tracked
func (r *Resolver) Len() int {
	return len(r.parents)
}

// PathologicalChains returns how many keys hit the depth guard
func (r *Resolver) PathologicalChains() int {
	return r.pathological
}

// SynthesizedRoots returns how many missing ancestors were promoted to roots
func (r *Resolver) SynthesizedRoots() int {
	return r.synthesized
}
