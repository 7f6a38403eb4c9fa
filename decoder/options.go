package decoder

import "go.uber.org/zap"

const (
	DefaultEncoding     = "us-ascii"
	DefaultANSIEncoding = "windows-1252"
	DefaultMaxDepth     = 64
	DefaultMaxScan      = 1 << 20
	DefaultMaxElements  = 1 << 24
)

// Options configures a Decoder. Zero fields take their defaults.
type Options struct {
	// Logger receives decode-time substitutions at debug level. Nil uses
	// the package logger.
	Logger *zap.Logger

	// Encoding is the text encoding for fields that name none.
	Encoding string

	// ANSIEncoding is the single-byte code page of pointer-to-ANSI fields.
	ANSIEncoding string

	// MaxDepth bounds the number of pointers followed from the root. A
	// pointer at the bound decodes to its raw address.
	MaxDepth int

	// MaxScan bounds the bytes searched for a string terminator.
	MaxScan int

	// MaxElements bounds any single resolved count.
	MaxElements int
}

// DefaultOptions returns default decoder configuration.
func DefaultOptions() Options {
	return Options{
		Encoding:     DefaultEncoding,
		ANSIEncoding: DefaultANSIEncoding,
		MaxDepth:     DefaultMaxDepth,
		MaxScan:      DefaultMaxScan,
		MaxElements:  DefaultMaxElements,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Encoding == "" {
		o.Encoding = d.Encoding
	}
	if o.ANSIEncoding == "" {
		o.ANSIEncoding = d.ANSIEncoding
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MaxScan <= 0 {
		o.MaxScan = d.MaxScan
	}
	if o.MaxElements <= 0 {
		o.MaxElements = d.MaxElements
	}
	return o
}
