package crawllog

import "strings"

// UnknownMimeType labels records whose content type is missing or empty
const UnknownMimeType = "unknown"

// CanonicalMimeType reduces a raw content-type value to a bare lowercase
// media type, dropping parameters such as charset. It never fails: any
// input yields a usable label.
func CanonicalMimeType(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	mimeType = strings.ToLower(mimeType)
	if mimeType == "" || mimeType == "-" {
		return UnknownMimeType
	}
	return mimeType
}
