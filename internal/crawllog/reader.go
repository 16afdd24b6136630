package crawllog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// maxLineBytes bounds a single log line; crawl logs can carry very long
// data: URIs in the URL and parent columns
const maxLineBytes = 1024 * 1024

// Reader iterates over a Heritrix-format crawl log one record at a time,
// in the manner of bufio.Scanner. The file handle is held for the lifetime
// of the Reader; re-open the same path to make another pass.
type Reader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	rec     *Record
	line    int
	skipped int
	err     error
}

// Open opens a crawl log for a single sequential pass
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open crawl log: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &Reader{path: path, file: file, scanner: scanner}, nil
}

// Scan advances to the next well-formed record, skipping malformed lines
// with a warning. It returns false at end of input or on a read error.
func (r *Reader) Scan() bool {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			r.skipped++
			logrus.Warnf("Skipping malformed line %d of %s: %v", r.line, r.path, err)
			continue
		}

		r.rec = rec
		return true
	}

	r.err = r.scanner.Err()
	return false
}

// Record returns the record produced by the last successful Scan
func (r *Reader) Record() *Record {
	return r.rec
}

// Err returns the first read error encountered, if any
func (r *Reader) Err() error {
	return r.err
}

// Skipped returns the number of malformed lines dropped so far
func (r *Reader) Skipped() int {
	return r.skipped
}

// Close releases the underlying file handle
func (r *Reader) Close() error {
	return r.file.Close()
}

// parseLine splits one whitespace-separated crawl log line into a Record.
// Column order follows the Heritrix crawl.log layout: timestamp, status,
// size, URL, discovery path, parent URL, mime type, worker thread,
// fetch-start+duration, digest, source tag, annotations.
func parseLine(line string) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 10 {
		return nil, fmt.Errorf("expected at least 10 fields, got %d", len(fields))
	}

	timestamp, err := parseTimestamp(fields[0])
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", fields[0], err)
	}

	statusCode, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("bad status code %q: %w", fields[1], err)
	}

	var size int64
	if fields[2] != "-" {
		size, err = strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad size %q: %w", fields[2], err)
		}
	}

	rec := &Record{
		Timestamp:     timestamp,
		StatusCode:    statusCode,
		Size:          size,
		URL:           fields[3],
		DiscoveryPath: fields[4],
		ParentURL:     blankDash(fields[5]),
		MimeType:      fields[6],
		WorkerThread:  fields[7],
		FetchDuration: parseFetchDuration(fields[8]),
		Digest:        blankDash(fields[9]),
	}
	if len(fields) > 10 {
		rec.SourceTag = blankDash(fields[10])
	}
	if len(fields) > 11 {
		rec.Annotations = strings.Join(fields[11:], " ")
	}

	return rec, nil
}

// parseTimestamp accepts the ISO-8601 form written by current crawlers plus
// the legacy 14 and 17 digit forms found in older logs
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	if len(value) == 17 {
		t, err := time.Parse("20060102150405", value[:14])
		if err != nil {
			return time.Time{}, err
		}
		millis, err := strconv.Atoi(value[14:])
		if err != nil {
			return time.Time{}, err
		}
		return t.Add(time.Duration(millis) * time.Millisecond), nil
	}

	return time.Parse("20060102150405", value)
}

// parseFetchDuration extracts the millisecond duration from the
// "fetchstart+duration" column; absent or unparseable values yield zero
func parseFetchDuration(value string) time.Duration {
	_, after, found := strings.Cut(value, "+")
	if !found {
		return 0
	}
	millis, err := strconv.Atoi(after)
	if err != nil {
		return 0
	}
	return time.Duration(millis) * time.Millisecond
}

func blankDash(value string) string {
	if value == "-" {
		return ""
	}
	return value
}
