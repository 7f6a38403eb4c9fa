package memory

import (
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeUTF16 returns the UTF-16LE bytes of s, optionally followed by a wide NUL.
func EncodeUTF16(s string, terminate bool) []byte {
	// Invalid UTF-8 is replaced with U+FFFD, so encoding cannot fail.
	out, _ := utf16le.NewEncoder().Bytes([]byte(s))
	if terminate {
		out = append(out, 0, 0)
	}
	return out
}
