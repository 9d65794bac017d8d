package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/go-playground/validator/v10"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// Rule-bearing state keys. Structural classes are derived from the graph and cannot be overridden.
const (
	StateFailed = "failed"
	StateLocked = "locked"
)

var structuralStates = map[string]struct{}{
	"initial":   {},
	"active":    {},
	"completed": {},
	"terminal":  {},
	"unknown":   {},
}

var validate = validator.New()

// Validate checks a loaded schema. Errors make the schema unusable, warnings do not.
func Validate(s *Schema) []Issue {
	if s == nil {
		return []Issue{{Severity: SeverityError, Message: "schema is empty"}}
	}

	var issues []Issue
	errorf := func(format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
	}

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errorf("validate schema: %v", err)
		}
		for _, fe := range verrs {
			if fe.Param() != "" {
				errorf("%s fails %s=%s (got %q)", fe.Namespace(), fe.Tag(), fe.Param(), fmt.Sprint(fe.Value()))
				continue
			}
			errorf("%s fails %s", fe.Namespace(), fe.Tag())
		}
	}

	if s.Contract.ScriptAddress != "" {
		if hrp, err := addressPrefix(s.Contract.ScriptAddress); err != nil {
			warnf("contract.script_address is not a valid bech32 address: %v", err)
		} else if hrp != "addr" && hrp != "addr_test" {
			warnf("contract.script_address has prefix %q, want addr or addr_test", hrp)
		}
	}

	if s.Datum.Type != "" && s.Datum.Type != TypeConstr && len(s.Datum.Fields) > 1 {
		warnf("datum.type is %q; only constr datums carry more than one field", s.Datum.Type)
	}

	seenFields := make(map[string]struct{}, len(s.Datum.Fields))
	for _, f := range s.Datum.Fields {
		if f.Name == "" {
			continue
		}
		if _, dup := seenFields[f.Name]; dup {
			errorf("datum field %q is declared more than once", f.Name)
		}
		seenFields[f.Name] = struct{}{}
	}

	byIndex := make(map[uint64]string, len(s.Redeemers))
	names := make(map[string]struct{}, len(s.Redeemers))
	for _, r := range s.Redeemers {
		if prev, dup := byIndex[r.ConstructorIndex]; dup {
			errorf("redeemers %q and %q share constructor index %d", prev, r.Name, r.ConstructorIndex)
		}
		byIndex[r.ConstructorIndex] = r.Name
		if _, dup := names[r.Name]; dup && r.Name != "" {
			warnf("redeemer name %q is declared more than once", r.Name)
		}
		names[r.Name] = struct{}{}
	}

	for _, key := range sortedKeys(s.States) {
		switch {
		case key == StateFailed || key == StateLocked:
		case isStructural(key):
			warnf("states.%s targets a structural class and is ignored", key)
		default:
			warnf("states.%s is not a known state and is ignored", key)
		}
	}

	for _, key := range sortedKeys(s.Transitions) {
		if _, ok := names[key]; !ok {
			warnf("transitions.%s does not match any declared redeemer", key)
		}
	}

	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func isStructural(key string) bool {
	_, ok := structuralStates[key]
	return ok
}

// addressPrefix decodes a Shelley address. Cardano addresses exceed the BIP-173 length limit.
func addressPrefix(addr string) (string, error) {
	hrp, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	return hrp, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
