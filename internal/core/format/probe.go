// If you are AI: This file implements format sniffing from byte signatures and source locators.
// The set of formats is closed; adding a format means adding a Tag constant and a probe arm.

package format

import (
	"bytes"
	"net/url"
	"path"
	"strings"
)

// Tag identifies an animated image container format.
type Tag uint8

const (
	// Unknown is the zero Tag, returned alongside ok=false.
	Unknown Tag = iota
	// GIF is GIF87a or GIF89a.
	GIF
	// WebP is a RIFF container with a WEBP form type.
	WebP
)

// All lists every known format in probe order.
var All = []Tag{GIF, WebP}

var (
	gifSignature87 = []byte("GIF87a")
	gifSignature89 = []byte("GIF89a")
	riffSignature  = []byte("RIFF")
	webpSignature  = []byte("WEBP")
)

// String returns the display name of the format.
func (t Tag) String() string {
	switch t {
	case GIF:
		return "GIF"
	case WebP:
		return "WebP"
	default:
		return "unknown"
	}
}

// MIME returns the media type associated with the format.
func (t Tag) MIME() string {
	switch t {
	case GIF:
		return "image/gif"
	case WebP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// DetectBytes sniffs the format from the leading signature bytes.
// Returns ok=false when no known signature matches.
func DetectBytes(buf []byte) (Tag, bool) {
	if bytes.HasPrefix(buf, gifSignature87) || bytes.HasPrefix(buf, gifSignature89) {
		return GIF, true
	}
	// RIFF....WEBP: bytes 4-7 carry the chunk size and are ignored.
	if len(buf) >= 12 && bytes.Equal(buf[0:4], riffSignature) && bytes.Equal(buf[8:12], webpSignature) {
		return WebP, true
	}
	return Unknown, false
}

// DetectLocator infers the format from a source locator.
// data: URLs are matched by MIME type, anything else by file extension.
func DetectLocator(locator string) (Tag, bool) {
	u, err := url.Parse(locator)
	if err != nil {
		return Unknown, false
	}

	if u.Scheme == "data" {
		return detectDataMIME(u)
	}

	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch ext {
	case "gif", "gifv":
		return GIF, true
	case "webp":
		return WebP, true
	}
	return Unknown, false
}

// detectDataMIME reads the media type of a data: URL.
// A data URL without parameters (no ';') is not considered typed.
func detectDataMIME(u *url.URL) (Tag, bool) {
	body := u.Opaque
	if body == "" {
		body = u.Path
	}
	semi := strings.IndexByte(body, ';')
	if semi == -1 {
		return Unknown, false
	}
	switch strings.ToLower(body[:semi]) {
	case "image/gif":
		return GIF, true
	case "image/webp":
		return WebP, true
	}
	return Unknown, false
}
