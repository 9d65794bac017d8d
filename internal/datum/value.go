// Package datum decodes Plutus data payloads into a schema-independent value tree.
package datum

import (
	"bytes"
	"math/big"
)

// Value is one node of a decoded Plutus data tree.
// The implementations are Constr, Integer, Bytes, List and Map; the set is closed.
type Value interface {
	isValue()
}

// Constr is a constructor application: an index selecting the variant and its ordered fields.
type Constr struct {
	Index  uint64
	Fields []Value
}

// Integer is an arbitrary precision integer.
type Integer struct {
	*big.Int
}

// Bytes is a byte string. Chunked encodings are concatenated.
type Bytes []byte

// List is an ordered sequence of values.
type List []Value

// Map is an ordered list of key/value pairs, kept in encounter order.
type Map []Pair

type Pair struct {
	Key   Value
	Value Value
}

func (Constr) isValue()  {}
func (Integer) isValue() {}
func (Bytes) isValue()   {}
func (List) isValue()    {}
func (Map) isValue()     {}

// NewInt is a convenience constructor for small integers.
func NewInt(v int64) Integer {
	return Integer{big.NewInt(v)}
}

// Equal reports whether two trees are structurally identical.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Constr:
		bv, ok := b.(Constr)
		return ok && av.Index == bv.Index && equalSlices(av.Fields, bv.Fields)
	case Integer:
		bv, ok := b.(Integer)
		if !ok {
			return false
		}
		if av.Int == nil || bv.Int == nil {
			return av.Int == bv.Int
		}
		return av.Cmp(bv.Int) == 0
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && bytes.Equal(av, bv)
	case List:
		bv, ok := b.(List)
		return ok && equalSlices(av, bv)
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i].Key, bv[i].Key) || !Equal(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// AsBool interprets the Plutus encoding of Bool: Constr 0 [] is false, Constr 1 [] is true.
func AsBool(v Value) (bool, bool) {
	c, ok := v.(Constr)
	if !ok || len(c.Fields) != 0 || c.Index > 1 {
		return false, false
	}
	return c.Index == 1, true
}
