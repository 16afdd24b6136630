package crawllog

import "net/http"

// fetchStatus covers the non-HTTP status codes crawlers write for fetch
// attempts that never produced an HTTP response
var fetchStatus = map[int]string{
	1:     "Successful DNS lookup",
	0:     "Fetch never tried",
	-1:    "DNS lookup failed",
	-2:    "HTTP connect failed",
	-3:    "HTTP connect broken",
	-4:    "HTTP timeout",
	-5:    "Unexpected runtime exception",
	-6:    "Prerequisite domain-lookup failed",
	-7:    "URI recognized as unsupported or illegal",
	-8:    "Multiple retries all failed",
	-50:   "Fetch deferred pending prerequisite",
	-60:   "Failure status assigned by processor",
	-61:   "Prerequisite robots.txt fetch failed",
	-62:   "Some other prerequisite failed",
	-63:   "Prerequisite precedence check failed",
	-404:  "Empty HTTP response",
	-3000: "Severe processing error",
	-4000: "Chaff detection of trap",
	-4001: "Too many link hops",
	-4002: "Too many embed hops",
	-5000: "Out of scope upon reexamination",
	-5001: "Blocked from fetch by user setting",
	-5002: "Blocked by custom processor",
	-5003: "Blocked due to exceeding quota",
	-5004: "Blocked due to exceeding runtime",
	-6000: "Deleted from frontier by user",
	-7000: "Processing thread killed",
}

// DescribeStatus returns a human label for a crawl status code. It is
// defined for every integer: HTTP codes use the standard reason phrase,
// crawler fetch codes use the table above, and anything else gets a fixed
// fallback.
func DescribeStatus(code int) string {
	if desc, ok := fetchStatus[code]; ok {
		return desc
	}
	if desc := http.StatusText(code); desc != "" {
		return desc
	}
	return "Unknown status"
}
