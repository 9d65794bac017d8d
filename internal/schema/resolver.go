package schema

import (
	"encoding/hex"
	"fmt"

	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
)

// Mapping is a datum interpreted through a schema. A mismatch never discards what could be mapped.
type Mapping struct {
	Fields   []ResolvedField
	Warnings []string
	Mismatch bool
}

type ResolvedField struct {
	Name   string
	Type   string
	Desc   string
	Value  datum.Value
	TypeOK bool
}

// Display renders the field for tables: ints in decimal, bytes in hex, the rest humanized.
func (f ResolvedField) Display() string {
	switch v := f.Value.(type) {
	case datum.Integer:
		if f.Type == TypeInt && v.Int != nil {
			return v.String()
		}
	case datum.Bytes:
		if f.Type == TypeBytes {
			return hex.EncodeToString(v)
		}
	}
	return datum.Humanize(f.Value)
}

// Field looks a resolved field up by its declared name.
func (m *Mapping) Field(name string) (ResolvedField, bool) {
	if m == nil {
		return ResolvedField{}, false
	}
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ResolvedField{}, false
}

func (m *Mapping) warn(format string, args ...any) {
	m.Mismatch = true
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

// Resolve maps a decoded datum onto the schema's declared fields by position.
// It returns nil when either argument is nil.
func Resolve(v datum.Value, s *Schema) *Mapping {
	if v == nil || s == nil {
		return nil
	}

	m := &Mapping{}
	decl := s.Datum

	if decl.Type != TypeConstr {
		if !TypeMatches(v, decl.Type) {
			m.warn("datum is %s, schema expects %s", datum.Humanize(v), decl.Type)
		}
		if len(decl.Fields) == 1 {
			m.Fields = append(m.Fields, resolveField(m, decl.Fields[0], v))
		}
		return m
	}

	c, ok := v.(datum.Constr)
	if !ok {
		m.warn("datum is %s, schema expects a constructor", datum.Humanize(v))
		return m
	}
	if c.Index != decl.ConstructorIndex {
		m.warn("constructor index is %d, schema expects %d", c.Index, decl.ConstructorIndex)
	}
	if len(c.Fields) != len(decl.Fields) {
		m.warn("datum has %d fields, schema declares %d", len(c.Fields), len(decl.Fields))
	}

	n := min(len(c.Fields), len(decl.Fields))
	m.Fields = make([]ResolvedField, 0, n)
	for i := 0; i < n; i++ {
		m.Fields = append(m.Fields, resolveField(m, decl.Fields[i], c.Fields[i]))
	}
	return m
}

func resolveField(m *Mapping, f Field, v datum.Value) ResolvedField {
	rf := ResolvedField{
		Name:   f.Name,
		Type:   f.Type,
		Desc:   f.Desc,
		Value:  v,
		TypeOK: TypeMatches(v, f.Type),
	}
	if !rf.TypeOK {
		m.warn("field %s: expected %s, got %s", f.Name, f.Type, datum.Humanize(v))
	}
	return rf
}

// TypeMatches reports whether v has the given semantic type. Unknown types never match.
func TypeMatches(v datum.Value, typ string) bool {
	switch typ {
	case TypeData:
		return v != nil
	case TypeBytes:
		_, ok := v.(datum.Bytes)
		return ok
	case TypeInt:
		_, ok := v.(datum.Integer)
		return ok
	case TypeBool:
		_, ok := datum.AsBool(v)
		return ok
	case TypeList:
		_, ok := v.(datum.List)
		return ok
	case TypeMap:
		_, ok := v.(datum.Map)
		return ok
	case TypeConstr:
		_, ok := v.(datum.Constr)
		return ok
	}
	return false
}
