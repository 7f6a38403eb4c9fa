package decoder

import (
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/codec"
	"github.com/wippyai/nativemap/errors"
	"github.com/wippyai/nativemap/layout"
	"github.com/wippyai/nativemap/schema"
)

// Decoder walks schemas over a byte source. A Decoder holds no per-call
// state and is safe for concurrent use.
type Decoder struct {
	log        *zap.Logger
	defaultEnc encoding.Encoding
	ansiEnc    encoding.Encoding
	opts       Options
}

// New creates a decoder. Unknown encoding names in opts fall back to
// US-ASCII.
func New(opts Options) *Decoder {
	opts = opts.withDefaults()
	d := &Decoder{log: opts.Logger, opts: opts}

	var ok bool
	if d.defaultEnc, ok = codec.LookupEncoding(opts.Encoding); !ok {
		d.logger().Debug("unknown default encoding, using us-ascii",
			zap.String("encoding", opts.Encoding))
		d.defaultEnc = codec.ASCII()
	}
	if d.ansiEnc, ok = codec.LookupEncoding(opts.ANSIEncoding); !ok {
		d.logger().Debug("unknown ANSI encoding, using us-ascii",
			zap.String("encoding", opts.ANSIEncoding))
		d.ansiEnc = codec.ASCII()
	}
	return d
}

var (
	defaultDecoder     *Decoder
	defaultDecoderOnce sync.Once
)

func shared() *Decoder {
	defaultDecoderOnce.Do(func() {
		defaultDecoder = New(DefaultOptions())
	})
	return defaultDecoder
}

// Decode decodes one instance of s at addr with the default options.
func Decode(s *schema.Schema, mem nativemap.Memory, addr nativemap.Address) (*Record, error) {
	return shared().Decode(s, mem, addr)
}

// DecodeWithEncoding is Decode with a call-wide default text encoding.
func DecodeWithEncoding(s *schema.Schema, mem nativemap.Memory, addr nativemap.Address, enc string) (*Record, error) {
	return shared().DecodeWithEncoding(s, mem, addr, enc)
}

// Options returns the effective configuration.
func (d *Decoder) Options() Options {
	return d.opts
}

func (d *Decoder) logger() *zap.Logger {
	if d.log != nil {
		return d.log
	}
	return Logger()
}

// Decode decodes one instance of s at addr. Text fields without an encoding
// use the decoder's default encoding.
func (d *Decoder) Decode(s *schema.Schema, mem nativemap.Memory, addr nativemap.Address) (*Record, error) {
	if err := checkArgs(s, mem); err != nil {
		return nil, err
	}
	st := d.newState(d.defaultEnc)
	return d.decodeStruct(st, s, mem, addr)
}

// DecodeWithEncoding decodes one instance of s at addr using the named
// encoding for text fields without one. An unknown name falls back to the
// decoder's default encoding.
func (d *Decoder) DecodeWithEncoding(s *schema.Schema, mem nativemap.Memory, addr nativemap.Address, enc string) (*Record, error) {
	if err := checkArgs(s, mem); err != nil {
		return nil, err
	}
	e, ok := codec.LookupEncoding(enc)
	if !ok {
		d.logger().Debug("unknown call encoding, using default",
			zap.String("schema", s.Name()),
			zap.String("encoding", enc))
		e = d.defaultEnc
	}
	return d.decodeStruct(d.newState(e), s, mem, addr)
}

// DecodeArray decodes n consecutive instances of s starting at addr.
func (d *Decoder) DecodeArray(s *schema.Schema, mem nativemap.Memory, addr nativemap.Address, n int) ([]*Record, error) {
	if err := checkArgs(s, mem); err != nil {
		return nil, err
	}
	if n < 0 || n > d.opts.MaxElements {
		return nil, errors.Overflow(errors.PhaseDecode, []string{s.Name()}, n, d.opts.MaxElements)
	}
	st := d.newState(d.defaultEnc)
	stride := uint64(layout.Stride(s))
	out := make([]*Record, n)
	for i := range out {
		rec, err := d.decodeStruct(st, s, mem, addr.Add(uint64(i)*stride))
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

func checkArgs(s *schema.Schema, mem nativemap.Memory) error {
	if s == nil || s == schema.Self {
		return errors.InvalidInput(errors.PhaseDecode, "nil schema")
	}
	if mem == nil {
		return errors.InvalidInput(errors.PhaseDecode, "nil memory")
	}
	return nil
}

// state is the per-call traversal state.
type state struct {
	enc   encoding.Encoding
	path  []string
	depth int
}

func (d *Decoder) newState(enc encoding.Encoding) *state {
	return &state{enc: enc, path: make([]string, 0, 8)}
}

func (st *state) push(name string) { st.path = append(st.path, name) }
func (st *state) pop()             { st.path = st.path[:len(st.path)-1] }

func (st *state) where() []string {
	return append([]string(nil), st.path...)
}

func (st *state) fail(err error) error {
	return errors.WithPath(err, st.where())
}

// decodeStruct walks the fields of s from addr, applying padding relative
// to the start of the instance.
func (d *Decoder) decodeStruct(st *state, s *schema.Schema, mem nativemap.Memory, addr nativemap.Address) (*Record, error) {
	n := s.NumFields()
	rec := &Record{schema: s, fields: make([]FieldValue, 0, n)}
	declared := s.DeclaredAlign()
	offset := 0

	for i := 0; i < n; i++ {
		f := s.Field(i)
		offset += layout.PaddingSize(offset, layout.FieldAlign(s, f), declared)

		st.push(f.Name)
		v, size, err := d.decodeField(st, s, f, rec, mem, addr.Add(uint64(offset)))
		st.pop()
		if err != nil {
			return nil, err
		}

		rec.fields = append(rec.fields, FieldValue{Name: f.Name, Value: v})
		offset += size
	}
	return rec, nil
}

// decodeField decodes f at addr and returns its value and extent.
func (d *Decoder) decodeField(st *state, s *schema.Schema, f schema.Field, rec *Record, mem nativemap.Memory, addr nativemap.Address) (any, int, error) {
	switch {
	case f.Kind.IsScalar():
		v, err := codec.ReadScalar(mem, addr, f.Kind)
		if err != nil {
			return nil, 0, st.fail(err)
		}
		return v, f.Kind.Width(), nil

	case f.Kind.IsPointer():
		slot, err := codec.ReadPointer(mem, addr, s.PointerSize())
		if err != nil {
			return nil, 0, st.fail(err)
		}
		v, err := d.decodePointer(st, s, f, rec, mem, slot)
		if err != nil {
			return nil, 0, err
		}
		return v, s.PointerSize(), nil
	}

	switch f.Kind {
	case schema.KindText:
		n, err := d.count(st, s, f, rec)
		if err != nil {
			return nil, 0, err
		}
		v, err := codec.ReadText(mem, addr, n, d.textEncoding(st, s, f))
		if err != nil {
			return nil, 0, st.fail(err)
		}
		return v, n, nil

	case schema.KindMultiText:
		n, err := d.count(st, s, f, rec)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return []string{}, 0, nil
		}
		data, err := mem.Read(addr, uint32(n))
		if err != nil {
			return nil, 0, st.fail(err)
		}
		v, err := codec.DecodeMulti(d.textEncoding(st, s, f), data)
		if err != nil {
			return nil, 0, st.fail(err)
		}
		return v, n, nil

	case schema.KindStruct:
		v, err := d.decodeStruct(st, f.Target, mem, addr)
		if err != nil {
			return nil, 0, err
		}
		return v, layout.Stride(f.Target), nil

	case schema.KindArray, schema.KindArrayOfPointers:
		n, err := d.count(st, s, f, rec)
		if err != nil {
			return nil, 0, err
		}
		v, err := d.decodeArray(st, s, f, mem, addr, n)
		if err != nil {
			return nil, 0, err
		}
		return v, layout.FieldSize(s, f, n), nil
	}

	return nil, 0, st.fail(errors.Unsupported(errors.PhaseDecode, "field kind "+f.Kind.String()))
}

// decodePointer resolves a pointer-shaped field whose slot holds p.
func (d *Decoder) decodePointer(st *state, s *schema.Schema, f schema.Field, rec *Record, mem nativemap.Memory, p nativemap.Address) (any, error) {
	switch f.Kind {
	case schema.KindPointerToArray, schema.KindPointerToArrayOfPointers:
		if p.IsNull() {
			return nativemap.Null, nil
		}
		n, err := d.count(st, s, f, rec)
		if err != nil {
			return nil, err
		}
		if !d.enter(st, s, f, p) {
			return p, nil
		}
		defer d.leave(st)
		return d.decodeArray(st, s, f, mem, p, n)

	case schema.KindPointerToString, schema.KindPointerToMultiText:
		n := 0
		if f.Count.IsSet() {
			var err error
			if n, err = d.count(st, s, f, rec); err != nil {
				return nil, err
			}
		}
		return d.decodeTarget(st, s, f, f.Kind, f.Target, mem, p, n)
	}
	return d.decodeTarget(st, s, f, f.Kind, f.Target, mem, p, 0)
}

// decodeTarget decodes the pointee of a slot holding p. k is the pointer
// kind of the slot; n is a text length, 0 meaning scan for the terminator.
func (d *Decoder) decodeTarget(st *state, s *schema.Schema, f schema.Field, k schema.Kind, target *schema.Schema, mem nativemap.Memory, p nativemap.Address, n int) (any, error) {
	if p.IsNull() {
		return nativemap.Null, nil
	}

	var (
		v   any
		err error
	)
	switch k {
	case schema.KindPointer:
		if target == nil || !d.enter(st, s, f, p) {
			return p, nil
		}
		defer d.leave(st)
		return d.decodeStruct(st, target, mem, p)
	case schema.KindPointerToBSTR:
		v, err = codec.ReadBSTR(mem, p, d.opts.MaxScan)
	case schema.KindPointerToANSI:
		v, err = codec.ReadCString(mem, p, d.ansiEnc, d.opts.MaxScan)
	case schema.KindPointerToUTF8:
		v, err = codec.ReadCString(mem, p, unicode.UTF8, d.opts.MaxScan)
	case schema.KindPointerToUTF16:
		v, err = codec.ReadUTF16String(mem, p, d.opts.MaxScan)
	case schema.KindPointerToString:
		if n > 0 {
			v, err = codec.ReadText(mem, p, n, d.textEncoding(st, s, f))
		} else {
			v, err = codec.ReadCString(mem, p, d.textEncoding(st, s, f), d.opts.MaxScan)
		}
	case schema.KindPointerToMultiText:
		v, err = codec.ReadMultiText(mem, p, n, d.textEncoding(st, s, f), d.opts.MaxScan)
	default:
		err = errors.Unsupported(errors.PhaseDecode, "pointer kind "+k.String())
	}
	if err != nil {
		return nil, st.fail(err)
	}
	return v, nil
}

// decodeArray decodes n elements of an array-shaped field starting at addr.
func (d *Decoder) decodeArray(st *state, s *schema.Schema, f schema.Field, mem nativemap.Memory, addr nativemap.Address, n int) (any, error) {
	ek := f.ElemKind()
	stride := layout.ElemStride(s, f)
	if _, ok := codec.SafeMul(n, stride); !ok {
		return nil, errors.Overflow(errors.PhaseDecode, st.where(), n, math.MaxInt/max(stride, 1))
	}

	if ek == schema.KindStruct {
		out := make([]*Record, n)
		for i := range out {
			rec, err := d.decodeStruct(st, f.Target, mem, addr.Add(uint64(i*stride)))
			if err != nil {
				return nil, err
			}
			out[i] = rec
		}
		return out, nil
	}

	out := make([]any, n)
	for i := range out {
		at := addr.Add(uint64(i * stride))
		if ek.IsScalar() {
			v, err := codec.ReadScalar(mem, at, ek)
			if err != nil {
				return nil, st.fail(err)
			}
			out[i] = v
			continue
		}
		slot, err := codec.ReadPointer(mem, at, s.PointerSize())
		if err != nil {
			return nil, st.fail(err)
		}
		if out[i], err = d.decodeTarget(st, s, f, ek, f.Target, mem, slot, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// enter records a pointer hop and reports false when the depth bound is
// reached, in which case the caller emits the raw address.
func (d *Decoder) enter(st *state, s *schema.Schema, f schema.Field, p nativemap.Address) bool {
	if st.depth >= d.opts.MaxDepth {
		d.logger().Debug("pointer depth bound reached, keeping raw address",
			zap.String("schema", s.Name()),
			zap.String("field", f.Name),
			zap.Stringer("address", p),
			zap.Int("max_depth", d.opts.MaxDepth))
		return false
	}
	st.depth++
	return true
}

func (d *Decoder) leave(st *state) {
	st.depth--
}

// count resolves the count of f. A dynamic count that does not resolve to
// a non-negative integer is replaced by 0.
func (d *Decoder) count(st *state, s *schema.Schema, f schema.Field, rec *Record) (int, error) {
	c := f.Count
	if !c.IsDynamic() {
		return c.Value(), nil
	}

	var raw any
	if i := c.Index(); i >= 0 && i < len(rec.fields) {
		raw = rec.fields[i].Value
	}
	n, ok := codec.ToCount(raw)
	if !ok || n < 0 {
		d.logger().Debug("unresolvable count, using 0",
			zap.String("schema", s.Name()),
			zap.String("field", f.Name),
			zap.String("count_field", c.Ref()),
			zap.Any("value", raw))
		return 0, nil
	}
	if n > int64(d.opts.MaxElements) {
		return 0, errors.Overflow(errors.PhaseDecode, st.where(), n, d.opts.MaxElements)
	}
	return int(n), nil
}

// textEncoding returns the text encoding of f, falling back to the call
// default for fields without one or with an unknown name.
func (d *Decoder) textEncoding(st *state, s *schema.Schema, f schema.Field) encoding.Encoding {
	if f.Encoding == "" {
		return st.enc
	}
	if enc, ok := codec.LookupEncoding(f.Encoding); ok {
		return enc
	}
	d.logger().Debug("unknown encoding, using call default",
		zap.String("schema", s.Name()),
		zap.String("field", f.Name),
		zap.String("encoding", f.Encoding))
	return st.enc
}
