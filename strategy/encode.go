package strategy

import "strings"

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s the way browsers do for a single URI
// component: everything except ASCII letters, digits and - _ . ! ~ * ' ( )
// is written as %XX over its UTF-8 bytes. Space becomes %20, never +.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isComponentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}
	return b.String()
}

func isComponentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// standardUnescapes lists the escapes a browser HTTP-params codec turns back
// into literals after component encoding. %2B stays escaped: a literal +
// in a query decodes as a space.
var standardUnescapes = strings.NewReplacer(
	"%40", "@",
	"%3A", ":",
	"%24", "$",
	"%2C", ",",
	"%3B", ";",
	"%3D", "=",
	"%3F", "?",
	"%2F", "/",
)

// EncodeQueryValue applies the params-builder codec: component encoding,
// then the standard set of reserved characters left literal.
func EncodeQueryValue(s string) string {
	return standardUnescapes.Replace(EncodeURIComponent(s))
}
