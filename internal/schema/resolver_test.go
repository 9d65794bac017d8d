package schema

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
)

func TestResolve(t *testing.T) {
	s := validSchema()
	pkh := datum.Bytes(bytes.Repeat([]byte{0x01}, 28))

	tests := []struct {
		name         string
		in           datum.Value
		wantFields   int
		wantMismatch bool
		wantWarning  string
	}{
		{
			name:       "exact match",
			in:         datum.Constr{Index: 0, Fields: []datum.Value{pkh, datum.NewInt(1_700_000_000_000)}},
			wantFields: 2,
		},
		{
			name:         "extra field",
			in:           datum.Constr{Index: 0, Fields: []datum.Value{pkh, datum.NewInt(5), datum.NewInt(6)}},
			wantFields:   2,
			wantMismatch: true,
			wantWarning:  "datum has 3 fields, schema declares 2",
		},
		{
			name:         "missing field",
			in:           datum.Constr{Index: 0, Fields: []datum.Value{pkh}},
			wantFields:   1,
			wantMismatch: true,
			wantWarning:  "datum has 1 fields",
		},
		{
			name:         "wrong constructor",
			in:           datum.Constr{Index: 3, Fields: []datum.Value{pkh, datum.NewInt(5)}},
			wantFields:   2,
			wantMismatch: true,
			wantWarning:  "constructor index is 3, schema expects 0",
		},
		{
			name:         "wrong field type",
			in:           datum.Constr{Index: 0, Fields: []datum.Value{datum.NewInt(1), datum.NewInt(5)}},
			wantFields:   2,
			wantMismatch: true,
			wantWarning:  "field beneficiary: expected bytes",
		},
		{
			name:         "not a constructor",
			in:           datum.NewInt(7),
			wantMismatch: true,
			wantWarning:  "schema expects a constructor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Resolve(tt.in, s)
			if m == nil {
				t.Fatalf("Resolve returned nil")
			}
			if len(m.Fields) != tt.wantFields {
				t.Fatalf("fields = %d, want %d", len(m.Fields), tt.wantFields)
			}
			if m.Mismatch != tt.wantMismatch {
				t.Fatalf("Mismatch = %v, want %v (%v)", m.Mismatch, tt.wantMismatch, m.Warnings)
			}
			if tt.wantWarning == "" {
				if len(m.Warnings) != 0 {
					t.Fatalf("unexpected warnings %v", m.Warnings)
				}
				return
			}
			if !strings.Contains(strings.Join(m.Warnings, "\n"), tt.wantWarning) {
				t.Fatalf("warnings %v do not mention %q", m.Warnings, tt.wantWarning)
			}
		})
	}
}

func TestResolveFieldValues(t *testing.T) {
	s := validSchema()
	m := Resolve(datum.Constr{Index: 0, Fields: []datum.Value{datum.Bytes{0xaa, 0xbb}, datum.NewInt(42)}}, s)

	f, ok := m.Field("deadline")
	if !ok || !f.TypeOK || !datum.Equal(f.Value, datum.NewInt(42)) {
		t.Fatalf("deadline = %+v, %v", f, ok)
	}
	if f.Display() != "42" {
		t.Fatalf("Display = %q", f.Display())
	}
	b, _ := m.Field("beneficiary")
	if b.Display() != "aabb" {
		t.Fatalf("Display = %q", b.Display())
	}
	if _, ok := m.Field("missing"); ok {
		t.Fatalf("unexpected field")
	}
	var nilMapping *Mapping
	if _, ok := nilMapping.Field("deadline"); ok {
		t.Fatalf("nil mapping has no fields")
	}
}

func TestResolveNonConstrSchema(t *testing.T) {
	s := &Schema{Datum: Datum{Type: TypeInt, Fields: []Field{{Name: "counter", Type: TypeInt}}}}
	m := Resolve(datum.NewInt(3), s)
	if m.Mismatch || len(m.Fields) != 1 || m.Fields[0].Name != "counter" {
		t.Fatalf("mapping = %+v", m)
	}
	m = Resolve(datum.Bytes{1}, s)
	if !m.Mismatch {
		t.Fatalf("expected mismatch for bytes against int schema")
	}
}

func TestResolveNil(t *testing.T) {
	if Resolve(nil, validSchema()) != nil {
		t.Fatalf("nil datum should resolve to nil")
	}
	if Resolve(datum.NewInt(1), nil) != nil {
		t.Fatalf("nil schema should resolve to nil")
	}
}

func TestTypeMatches(t *testing.T) {
	tests := []struct {
		v    datum.Value
		typ  string
		want bool
	}{
		{datum.Bytes{1}, TypeBytes, true},
		{datum.NewInt(1), TypeBytes, false},
		{datum.NewInt(1), TypeInt, true},
		{datum.Constr{Index: 1}, TypeBool, true},
		{datum.Constr{Index: 2}, TypeBool, false},
		{datum.List{}, TypeList, true},
		{datum.Map{}, TypeMap, true},
		{datum.Constr{Index: 9}, TypeConstr, true},
		{datum.Map{}, TypeData, true},
		{datum.NewInt(1), "string", false},
	}
	for _, tt := range tests {
		if got := TypeMatches(tt.v, tt.typ); got != tt.want {
			t.Fatalf("TypeMatches(%s, %s) = %v, want %v", datum.Humanize(tt.v), tt.typ, got, tt.want)
		}
	}
}

func TestRedeemerName(t *testing.T) {
	s := validSchema()
	if got := s.RedeemerName(1); got != "Cancel" {
		t.Fatalf("RedeemerName(1) = %q", got)
	}
	if got := s.RedeemerName(9); got != "redeemer#9" {
		t.Fatalf("RedeemerName(9) = %q", got)
	}
	var none *Schema
	if got := none.RedeemerName(0); got != "redeemer#0" {
		t.Fatalf("nil RedeemerName(0) = %q", got)
	}
	if label, ok := s.TransitionLabel("Cancel"); !ok || label != "cancel" {
		t.Fatalf("TransitionLabel = %q, %v", label, ok)
	}
	if _, ok := s.TransitionLabel("Unlock"); ok {
		t.Fatalf("Unlock has no transition label")
	}
}
