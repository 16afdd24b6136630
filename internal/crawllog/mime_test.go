package crawllog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalMimeType(t *testing.T) {
	cases := map[string]string{
		"text/html":                     "text/html",
		"TEXT/HTML":                     "text/html",
		"text/html; charset=UTF-8":      "text/html",
		" application/pdf ":             "application/pdf",
		"application/xhtml+xml;q=0.9":   "application/xhtml+xml",
		"":                              UnknownMimeType,
		"-":                             UnknownMimeType,
		"  ":                            UnknownMimeType,
	}
	for input, want := range cases {
		assert.Equal(t, want, CanonicalMimeType(input), "input %q", input)
	}
}

func TestDescribeStatus(t *testing.T) {
	assert.Equal(t, "OK", DescribeStatus(200))
	assert.Equal(t, "Not Found", DescribeStatus(404))
	assert.Equal(t, "Moved Permanently", DescribeStatus(301))
	assert.Equal(t, "DNS lookup failed", DescribeStatus(-1))
	assert.Equal(t, "Too many link hops", DescribeStatus(-4001))
	assert.Equal(t, "Unknown status", DescribeStatus(999))
	assert.Equal(t, "Unknown status", DescribeStatus(-12345))
}
