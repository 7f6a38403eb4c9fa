package codec

import (
	"bytes"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/nativemap/errors"
)

var (
	customMu sync.RWMutex
	custom   = make(map[string]encoding.Encoding)
)

var (
	asciiOnce sync.Once
	ascii     encoding.Encoding
)

// UTF16LE decodes pointer-to-UTF-16 strings and BSTRs.
var UTF16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// RegisterEncoding makes enc available under name. Names are matched
// case-insensitively and take precedence over IANA names.
func RegisterEncoding(name string, enc encoding.Encoding) {
	customMu.Lock()
	defer customMu.Unlock()
	custom[strings.ToLower(strings.TrimSpace(name))] = enc
}

// LookupEncoding resolves an encoding name. Unknown names and IANA names
// without a Go implementation report false.
func LookupEncoding(name string) (encoding.Encoding, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, false
	}

	customMu.RLock()
	enc, ok := custom[key]
	customMu.RUnlock()
	if ok {
		return enc, true
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return nil, false
	}
	return enc, true
}

// ASCII returns the US-ASCII encoding. Bytes above 0x7F decode to U+FFFD.
func ASCII() encoding.Encoding {
	asciiOnce.Do(func() {
		enc, err := ianaindex.IANA.Encoding("US-ASCII")
		if err != nil || enc == nil {
			enc = unicode.UTF8
		}
		ascii = enc
	})
	return ascii
}

// Decode converts data to a UTF-8 string with enc. NUL bytes are kept.
func Decode(enc encoding.Encoding, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		e := errors.InvalidData(errors.PhaseDecode, nil, "text does not decode")
		e.Cause = err
		return "", e
	}
	return string(out), nil
}

// SplitMulti splits a multi-string window into its NUL-terminated entries.
// An empty entry ends the list, as does an entry with no terminator.
func SplitMulti(data []byte) [][]byte {
	var out [][]byte
	for start := 0; start < len(data); {
		n := bytes.IndexByte(data[start:], 0)
		if n <= 0 {
			break
		}
		out = append(out, data[start:start+n])
		start += n + 1
	}
	return out
}
