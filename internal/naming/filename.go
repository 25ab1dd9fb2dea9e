// Package naming derives local output filenames from URLs and keeps them
// unique within a run and against files already on disk.
package naming

import (
	"strings"
	"unicode/utf8"
)

// DefaultFilename is used when a URL has no usable final path segment.
// Changing it changes user-visible output names.
const DefaultFilename = "index.html"

// EncodeWhitespace percent-encodes spaces so the URL can be handed to the
// transport unchanged and the derived name decodes back to the original.
func EncodeWhitespace(rawURL string) string {
	return strings.ReplaceAll(rawURL, " ", "%20")
}

// FilenameFromURL returns the substring after the last "/" of the URL path,
// ignoring scheme, query string and fragment. It returns "" for a bare host
// or a path that ends in "/". When decode is set, percent-escapes are decoded
// except those that would produce a path separator or control character.
func FilenameFromURL(rawURL string, decode bool) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	i := strings.LastIndexByte(rest, '/')
	if i < 0 {
		return ""
	}
	name := rest[i+1:]
	if name == "" {
		return ""
	}
	if decode {
		return DecodeFilename(name)
	}
	return name
}

// DecodeFilename percent-decodes name. Escapes for '/', '\', control bytes
// and byte sequences that are not valid UTF-8 are left encoded.
func DecodeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	// pending holds the decoded bytes of a run of consecutive escapes and
	// pendingRaw the matching "%XY" text, three bytes per decoded byte.
	var pending []byte
	var pendingRaw string

	flush := func() {
		for len(pending) > 0 {
			r, size := utf8.DecodeRune(pending)
			if r == utf8.RuneError && size <= 1 {
				size = 1
				b.WriteString(pendingRaw[:3])
			} else {
				b.Write(pending[:size])
			}
			pending = pending[size:]
			pendingRaw = pendingRaw[3*size:]
		}
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '%' && i+2 < len(name) && isHex(name[i+1]) && isHex(name[i+2]) {
			v := unhex(name[i+1])<<4 | unhex(name[i+2])
			if keepEncoded(v) {
				flush()
				b.WriteString(name[i : i+3])
			} else {
				pending = append(pending, v)
				pendingRaw += name[i : i+3]
			}
			i += 2
			continue
		}
		flush()
		b.WriteByte(c)
	}
	flush()

	return b.String()
}

func keepEncoded(v byte) bool {
	return v < 0x20 || v == 0x7f || v == '/' || v == '\\'
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// BaseName is FilenameFromURL with the DefaultFilename fallback applied.
// Names that would refer to the directory itself are replaced as well.
func BaseName(rawURL string, decode bool) string {
	name := FilenameFromURL(EncodeWhitespace(rawURL), decode)
	switch name {
	case "", ".", "..":
		return DefaultFilename
	}
	return name
}
