package datum

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/goodnatureofminers/stateinsight7000/pkg/safe"
)

// DefaultMaxDepth bounds how many containers may be nested inside each other.
const DefaultMaxDepth = 256

const (
	majorUnsigned byte = 0
	majorNegative byte = 1
	majorBytes    byte = 2
	majorText     byte = 3
	majorArray    byte = 4
	majorMap      byte = 5
	majorTag      byte = 6
	majorSimple   byte = 7

	infoIndefinite byte = 31
	breakCode      byte = 0xff
)

const (
	tagPositiveBignum     uint64 = 2
	tagNegativeBignum     uint64 = 3
	tagConstrGeneral      uint64 = 102
	tagConstrCompactMin   uint64 = 121
	tagConstrCompactMax   uint64 = 127
	tagConstrExtendedMin  uint64 = 1280
	tagConstrExtendedMax  uint64 = 1400
	constrExtendedIndexAt uint64 = 7
)

// Option configures Decode.
type Option func(*decoder)

// WithMaxDepth overrides DefaultMaxDepth. Values below one are ignored.
func WithMaxDepth(n int) Option {
	return func(d *decoder) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// Decode parses a single Plutus data item. The whole input must be consumed.
// Failures are returned as *DecodeError.
func Decode(raw []byte, opts ...Option) (Value, error) {
	d := &decoder{data: raw, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}

	v, err := d.value(0)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, d.fail(d.pos, ReasonTrailingBytes, fmt.Sprintf("%d bytes after the top-level item", len(d.data)-d.pos))
	}
	return v, nil
}

type decoder struct {
	data     []byte
	pos      int
	maxDepth int
}

type header struct {
	start      int
	major      byte
	arg        uint64
	indefinite bool
}

func (d *decoder) fail(offset int, reason Reason, detail string) error {
	return &DecodeError{Offset: offset, Reason: reason, Detail: detail}
}

func (d *decoder) head() (header, error) {
	h := header{start: d.pos}
	if d.pos >= len(d.data) {
		return h, d.fail(d.pos, ReasonTruncated, "expected a data item")
	}
	b := d.data[d.pos]
	d.pos++
	h.major = b >> 5
	info := b & 0x1f

	var size int
	switch {
	case info < 24:
		h.arg = uint64(info)
		return h, nil
	case info == 24:
		size = 1
	case info == 25:
		size = 2
	case info == 26:
		size = 4
	case info == 27:
		size = 8
	case info == infoIndefinite:
		h.indefinite = true
		return h, nil
	default:
		return h, d.fail(h.start, ReasonUnexpectedType, fmt.Sprintf("reserved additional information %d", info))
	}

	if len(d.data)-d.pos < size {
		return h, d.fail(d.pos, ReasonTruncated, fmt.Sprintf("argument needs %d bytes", size))
	}
	buf := d.data[d.pos : d.pos+size]
	d.pos += size
	switch size {
	case 1:
		h.arg = uint64(buf[0])
	case 2:
		h.arg = uint64(binary.BigEndian.Uint16(buf))
	case 4:
		h.arg = uint64(binary.BigEndian.Uint32(buf))
	default:
		h.arg = binary.BigEndian.Uint64(buf)
	}
	return h, nil
}

func (d *decoder) value(depth int) (Value, error) {
	h, err := d.head()
	if err != nil {
		return nil, err
	}

	switch h.major {
	case majorUnsigned, majorNegative:
		if h.indefinite {
			return nil, d.fail(h.start, ReasonIndefinite, "indefinite-length integer")
		}
		n := new(big.Int).SetUint64(h.arg)
		if h.major == majorNegative {
			n.Add(n, big.NewInt(1)).Neg(n)
		}
		return Integer{n}, nil
	case majorBytes:
		b, err := d.bytes(h)
		if err != nil {
			return nil, err
		}
		return b, nil
	case majorText:
		return nil, d.fail(h.start, ReasonUnexpectedType, "text string")
	case majorArray, majorMap, majorTag:
		if depth >= d.maxDepth {
			return nil, d.fail(h.start, ReasonDepthExceeded, fmt.Sprintf("limit is %d nested containers", d.maxDepth))
		}
		switch h.major {
		case majorArray:
			items, err := d.list(h, depth)
			if err != nil {
				return nil, err
			}
			return items, nil
		case majorMap:
			pairs, err := d.dict(h, depth)
			if err != nil {
				return nil, err
			}
			return pairs, nil
		default:
			return d.tag(h, depth)
		}
	default:
		if h.indefinite {
			return nil, d.fail(h.start, ReasonUnexpectedType, "unexpected break")
		}
		return nil, d.fail(h.start, ReasonUnexpectedType, "simple value or float")
	}
}

// take copies n bytes so decoded values never alias the input.
func (d *decoder) take(n uint64) ([]byte, error) {
	if n > uint64(len(d.data)-d.pos) {
		return nil, d.fail(d.pos, ReasonTruncated, fmt.Sprintf("need %d bytes, %d left", n, len(d.data)-d.pos))
	}
	out := make([]byte, n)
	copy(out, d.data[d.pos:])
	d.pos += len(out)
	return out, nil
}

func (d *decoder) bytes(h header) (Bytes, error) {
	if !h.indefinite {
		return d.take(h.arg)
	}

	out := Bytes{}
	for {
		done, err := d.atBreak()
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
		chunk, err := d.head()
		if err != nil {
			return nil, err
		}
		if chunk.major != majorBytes {
			return nil, d.fail(chunk.start, ReasonUnexpectedType, "byte string chunk expected")
		}
		if chunk.indefinite {
			return nil, d.fail(chunk.start, ReasonIndefinite, "nested indefinite-length byte string")
		}
		b, err := d.take(chunk.arg)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
}

func (d *decoder) atBreak() (bool, error) {
	if d.pos >= len(d.data) {
		return false, d.fail(d.pos, ReasonTruncated, "missing break")
	}
	if d.data[d.pos] == breakCode {
		d.pos++
		return true, nil
	}
	return false, nil
}

// length validates a definite item count against the bytes left, each item taking at least itemSize bytes.
func (d *decoder) length(h header, itemSize int) (int, error) {
	n, err := safe.Int(h.arg)
	if err != nil {
		return 0, d.fail(h.start, ReasonOverflow, err.Error())
	}
	if n > (len(d.data)-d.pos)/itemSize {
		return 0, d.fail(d.pos, ReasonTruncated, fmt.Sprintf("declared %d items, %d bytes left", n, len(d.data)-d.pos))
	}
	return n, nil
}

func (d *decoder) list(h header, depth int) (List, error) {
	if h.indefinite {
		items := List{}
		for {
			done, err := d.atBreak()
			if err != nil {
				return nil, err
			}
			if done {
				return items, nil
			}
			v, err := d.value(depth + 1)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
	}

	n, err := d.length(h, 1)
	if err != nil {
		return nil, err
	}
	items := make(List, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func (d *decoder) dict(h header, depth int) (Map, error) {
	pair := func() (Pair, error) {
		k, err := d.value(depth + 1)
		if err != nil {
			return Pair{}, err
		}
		v, err := d.value(depth + 1)
		if err != nil {
			return Pair{}, err
		}
		return Pair{Key: k, Value: v}, nil
	}

	if h.indefinite {
		pairs := Map{}
		for {
			done, err := d.atBreak()
			if err != nil {
				return nil, err
			}
			if done {
				return pairs, nil
			}
			p, err := pair()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, p)
		}
	}

	n, err := d.length(h, 2)
	if err != nil {
		return nil, err
	}
	pairs := make(Map, 0, n)
	for i := 0; i < n; i++ {
		p, err := pair()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func (d *decoder) tag(h header, depth int) (Value, error) {
	if h.indefinite {
		return nil, d.fail(h.start, ReasonUnexpectedType, "indefinite tag")
	}

	switch {
	case h.arg == tagPositiveBignum || h.arg == tagNegativeBignum:
		content, err := d.head()
		if err != nil {
			return nil, err
		}
		if content.major != majorBytes {
			return nil, d.fail(content.start, ReasonUnexpectedType, "bignum content must be a byte string")
		}
		b, err := d.bytes(content)
		if err != nil {
			return nil, err
		}
		n := new(big.Int).SetBytes(b)
		if h.arg == tagNegativeBignum {
			n.Add(n, big.NewInt(1)).Neg(n)
		}
		return Integer{n}, nil
	case h.arg >= tagConstrCompactMin && h.arg <= tagConstrCompactMax:
		fields, err := d.fields(depth)
		if err != nil {
			return nil, err
		}
		return Constr{Index: h.arg - tagConstrCompactMin, Fields: fields}, nil
	case h.arg >= tagConstrExtendedMin && h.arg <= tagConstrExtendedMax:
		fields, err := d.fields(depth)
		if err != nil {
			return nil, err
		}
		return Constr{Index: h.arg - tagConstrExtendedMin + constrExtendedIndexAt, Fields: fields}, nil
	case h.arg == tagConstrGeneral:
		return d.generalConstr(depth)
	default:
		return nil, d.fail(h.start, ReasonUnsupportedTag, fmt.Sprintf("tag %d", h.arg))
	}
}

func (d *decoder) fields(depth int) ([]Value, error) {
	h, err := d.head()
	if err != nil {
		return nil, err
	}
	if h.major != majorArray {
		return nil, d.fail(h.start, ReasonUnexpectedType, "constructor fields must be an array")
	}
	items, err := d.list(h, depth)
	if err != nil {
		return nil, err
	}
	return []Value(items), nil
}

// generalConstr decodes the [index, [fields]] form used for any constructor index.
func (d *decoder) generalConstr(depth int) (Value, error) {
	outer, err := d.head()
	if err != nil {
		return nil, err
	}
	if outer.major != majorArray {
		return nil, d.fail(outer.start, ReasonUnexpectedType, "general constructor must wrap an array")
	}
	if !outer.indefinite && outer.arg != 2 {
		return nil, d.fail(outer.start, ReasonUnexpectedType, fmt.Sprintf("general constructor expects 2 elements, got %d", outer.arg))
	}

	idx, err := d.head()
	if err != nil {
		return nil, err
	}
	switch {
	case idx.major == majorTag && idx.arg == tagPositiveBignum:
		return nil, d.fail(idx.start, ReasonOverflow, "constructor index exceeds 64 bits")
	case idx.major != majorUnsigned || idx.indefinite:
		return nil, d.fail(idx.start, ReasonUnexpectedType, "constructor index must be an unsigned integer")
	}

	fields, err := d.fields(depth)
	if err != nil {
		return nil, err
	}

	if outer.indefinite {
		done, err := d.atBreak()
		if err != nil {
			return nil, err
		}
		if !done {
			return nil, d.fail(d.pos, ReasonUnexpectedType, "general constructor expects 2 elements")
		}
	}
	return Constr{Index: idx.arg, Fields: fields}, nil
}
