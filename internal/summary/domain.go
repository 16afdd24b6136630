package summary

import (
	"net"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

// UnknownDomain labels URLs whose host cannot be determined at all
const UnknownDomain = "unknown"

// dnsLabel groups dns: lookup records, which have no fetchable host of
// their own
const dnsLabel = "dns"

// RegisteredDomain reduces a URL to its public-suffix-aware registrable
// domain. It always returns a usable label and never an error: hosts that
// are not registrable names (IP literals, single labels) come back
// unchanged, and URLs with no recoverable host map to UnknownDomain.
func RegisteredDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Crawl logs carry URLs with characters net/url rejects; fall
		// back to slicing out the authority segment by hand.
		return registeredDomainFromAuthority(rawURL)
	}

	if u.Scheme == "dns" {
		return dnsLabel
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		// Userinfo-only and other degenerate authorities
		host = strings.ToLower(u.Host)
	}
	if host == "" {
		logrus.Warnf("No host in URL %q, attributing to %q", rawURL, UnknownDomain)
		return UnknownDomain
	}

	return topPrivateDomain(host)
}

// registeredDomainFromAuthority handles URLs that net/url refuses to parse
// by taking the segment between the scheme's "//" and the next slash
func registeredDomainFromAuthority(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	if len(parts) < 3 || parts[2] == "" {
		logrus.Warnf("Unparseable URL %q, attributing to %q", rawURL, UnknownDomain)
		return UnknownDomain
	}

	authority := parts[2]
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}
	if i := strings.IndexByte(authority, ':'); i >= 0 {
		authority = authority[:i]
	}

	return topPrivateDomain(strings.ToLower(authority))
}

// topPrivateDomain returns the registrable domain of a host, or the host
// unchanged when it is not a registrable name: a bare IP literal, a single
// label, or a name outside every listed public suffix. The public suffix
// list would otherwise invent an eTLD+1 for those from its default rule.
func topPrivateDomain(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann && strings.IndexByte(suffix, '.') < 0 {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
