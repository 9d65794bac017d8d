// Package schema describes a contract's datum layout and maps decoded datums onto it.
package schema

import "fmt"

// Semantic field types.
const (
	TypeBytes  = "bytes"
	TypeInt    = "int"
	TypeBool   = "bool"
	TypeList   = "list"
	TypeMap    = "map"
	TypeConstr = "constr"
	TypeData   = "data"
)

// Schema is a contract description loaded from a TOML or YAML file.
type Schema struct {
	Contract    Contract              `toml:"contract" yaml:"contract"`
	Datum       Datum                 `toml:"datum" yaml:"datum"`
	Redeemers   []Redeemer            `toml:"redeemer" yaml:"redeemer" validate:"dive"`
	States      map[string]StateRule  `toml:"states" yaml:"states" validate:"dive"`
	Transitions map[string]Transition `toml:"transitions" yaml:"transitions"`
}

type Contract struct {
	Name          string `toml:"name" yaml:"name" validate:"required"`
	Description   string `toml:"description" yaml:"description"`
	ScriptAddress string `toml:"script_address" yaml:"script_address" validate:"required"`
}

type Datum struct {
	Type             string  `toml:"type" yaml:"type" validate:"required,oneof=bytes int bool list map constr data"`
	ConstructorIndex uint64  `toml:"constructor_index" yaml:"constructor_index"`
	Fields           []Field `toml:"fields" yaml:"fields" validate:"dive"`
}

type Field struct {
	Name string `toml:"name" yaml:"name" validate:"required"`
	Type string `toml:"type" yaml:"type" validate:"required,oneof=bytes int bool list map constr data"`
	Desc string `toml:"desc" yaml:"desc"`
}

type Redeemer struct {
	Name             string `toml:"name" yaml:"name" validate:"required"`
	ConstructorIndex uint64 `toml:"constructor_index" yaml:"constructor_index"`
}

// StateRule is a classification rule keyed by state name in the states table.
type StateRule struct {
	Rule string `toml:"rule" yaml:"rule" validate:"required"`
}

// Transition styles edges produced by the redeemer it is keyed by.
type Transition struct {
	Label string `toml:"label" yaml:"label"`
	Color string `toml:"color" yaml:"color"`
	Style string `toml:"style" yaml:"style"`
}

// RedeemerName resolves a redeemer constructor index to its declared name.
// Undeclared indices and a nil schema yield "redeemer#<index>".
func (s *Schema) RedeemerName(index uint64) string {
	if s != nil {
		for _, r := range s.Redeemers {
			if r.ConstructorIndex == index {
				return r.Name
			}
		}
	}
	return fmt.Sprintf("redeemer#%d", index)
}

// TransitionLabel returns the configured label for a redeemer name.
func (s *Schema) TransitionLabel(name string) (string, bool) {
	t, ok := s.Transition(name)
	if !ok || t.Label == "" {
		return "", false
	}
	return t.Label, true
}

func (s *Schema) Transition(name string) (Transition, bool) {
	if s == nil {
		return Transition{}, false
	}
	t, ok := s.Transitions[name]
	return t, ok
}

// Rule returns the rule text for a state key.
func (s *Schema) Rule(state string) (string, bool) {
	if s == nil {
		return "", false
	}
	r, ok := s.States[state]
	if !ok {
		return "", false
	}
	return r.Rule, true
}
