package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	for _, path := range []string{"testdata/vesting.toml", "testdata/vesting.yaml"} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if s.Contract.Name != "Vesting" {
				t.Fatalf("contract name = %q", s.Contract.Name)
			}
			if s.Contract.ScriptAddress != "addr_test1wpvesting_contract_mock_address_12345" {
				t.Fatalf("script address = %q", s.Contract.ScriptAddress)
			}
			if s.Datum.Type != TypeConstr || s.Datum.ConstructorIndex != 0 {
				t.Fatalf("datum = %+v", s.Datum)
			}
			if len(s.Datum.Fields) != 3 || s.Datum.Fields[1].Name != "deadline" || s.Datum.Fields[1].Type != TypeInt {
				t.Fatalf("fields = %+v", s.Datum.Fields)
			}
			if len(s.Redeemers) != 3 || s.Redeemers[2].Name != "Cancel" || s.Redeemers[2].ConstructorIndex != 2 {
				t.Fatalf("redeemers = %+v", s.Redeemers)
			}
			if rule, ok := s.Rule(StateLocked); !ok || rule != "datum.deadline > current_time" {
				t.Fatalf("locked rule = %q, %v", rule, ok)
			}
			if tr, ok := s.Transition("Cancel"); !ok || tr.Style != "dashed" || tr.Color != "red" {
				t.Fatalf("Cancel transition = %+v, %v", tr, ok)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[contract\nname = "), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "decode toml") {
		t.Fatalf("expected toml decode error, got %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"schema.toml": FormatTOML,
		"schema.yaml": FormatYAML,
		"schema.YML":  FormatYAML,
		"schema":      FormatTOML,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Fatalf("FormatFor(%q) = %q, want %q", path, got, want)
		}
	}
}
