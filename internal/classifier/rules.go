package classifier

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
)

// Rule assigns State to the nodes its condition matches.
type Rule struct {
	State  stategraph.Classification
	Source string
	cond   condition
}

var ErrInvalidRule = errors.New("invalid rule")

// ruleStates lists the schema states that carry rules, in evaluation order.
var ruleStates = []struct {
	key   string
	class stategraph.Classification
}{
	{schema.StateFailed, stategraph.Failed},
	{schema.StateLocked, stategraph.Locked},
}

// CompileRules parses the failed and locked rules of s. Other state entries and rules that
// do not parse are reported as warnings and skipped.
func CompileRules(s *schema.Schema) ([]Rule, []string) {
	if s == nil {
		return nil, nil
	}

	var (
		rules    []Rule
		warnings []string
		used     = make(map[string]struct{}, len(ruleStates))
	)
	for _, rs := range ruleStates {
		used[rs.key] = struct{}{}
		text, ok := s.Rule(rs.key)
		if !ok {
			continue
		}
		r, err := ParseRule(rs.class, text)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("states.%s: %v", rs.key, err))
			continue
		}
		rules = append(rules, r)
	}

	var extra []string
	for key := range s.States {
		if _, ok := used[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		warnings = append(warnings, fmt.Sprintf("states.%s is not a rule-driven state and is ignored", key))
	}
	return rules, warnings
}

// ParseRule compiles one rule expression for the given class.
func ParseRule(class stategraph.Classification, text string) (Rule, error) {
	text = strings.TrimSpace(text)
	r := Rule{State: class, Source: text}

	switch text {
	case "always":
		r.cond = constCond(true)
		return r, nil
	case "never":
		r.cond = constCond(false)
		return r, nil
	case "new_utxo":
		r.cond = newUTxOCond{}
		return r, nil
	case "utxo_spent":
		r.cond = spentCond{}
		return r, nil
	}

	subject, rest, _ := strings.Cut(text, " ")
	op, operand, _ := strings.Cut(strings.TrimSpace(rest), " ")
	operand = strings.TrimSpace(operand)
	if operand == "" {
		return r, fmt.Errorf("%w %q: expected <subject> <op> <value>", ErrInvalidRule, text)
	}
	cmp, err := parseOp(op)
	if err != nil {
		return r, fmt.Errorf("%w %q: %v", ErrInvalidRule, text, err)
	}

	switch {
	case subject == "redeemer":
		if cmp != opEq && cmp != opNe {
			return r, fmt.Errorf("%w %q: redeemer supports == and != only", ErrInvalidRule, text)
		}
		r.cond = redeemerCond{op: cmp, name: operand}
		return r, nil
	case strings.HasPrefix(subject, "datum.") && len(subject) > len("datum."):
		lit, err := parseLiteral(operand)
		if err != nil {
			return r, fmt.Errorf("%w %q: %v", ErrInvalidRule, text, err)
		}
		if lit.kind != litInt && lit.kind != litNow && cmp != opEq && cmp != opNe {
			return r, fmt.Errorf("%w %q: %s only supports == and !=", ErrInvalidRule, text, lit.kind)
		}
		r.cond = fieldCond{field: strings.TrimPrefix(subject, "datum."), op: cmp, lit: lit}
		return r, nil
	}
	return r, fmt.Errorf("%w %q: unknown subject %q", ErrInvalidRule, text, subject)
}

type op int

const (
	opGt op = iota
	opLt
	opGe
	opLe
	opEq
	opNe
)

func parseOp(s string) (op, error) {
	switch s {
	case ">":
		return opGt, nil
	case "<":
		return opLt, nil
	case ">=":
		return opGe, nil
	case "<=":
		return opLe, nil
	case "==":
		return opEq, nil
	case "!=":
		return opNe, nil
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

func (o op) holds(c int) bool {
	switch o {
	case opGt:
		return c > 0
	case opLt:
		return c < 0
	case opGe:
		return c >= 0
	case opLe:
		return c <= 0
	case opEq:
		return c == 0
	default:
		return c != 0
	}
}

type litKind string

const (
	litInt   litKind = "integer"
	litNow   litKind = "current_time"
	litBool  litKind = "bool"
	litBytes litKind = "bytes"
)

type literal struct {
	kind  litKind
	num   *big.Int
	flag  bool
	bytes []byte
}

func parseLiteral(s string) (literal, error) {
	switch {
	case s == "current_time":
		return literal{kind: litNow}, nil
	case s == "true" || s == "false":
		return literal{kind: litBool, flag: s == "true"}, nil
	case strings.HasPrefix(s, "0x"):
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return literal{}, fmt.Errorf("bad hex literal %q: %w", s, err)
		}
		return literal{kind: litBytes, bytes: b}, nil
	case strings.HasPrefix(s, `"`):
		text, err := strconv.Unquote(s)
		if err != nil {
			return literal{}, fmt.Errorf("bad text literal %s: %w", s, err)
		}
		return literal{kind: litBytes, bytes: []byte(text)}, nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return literal{}, fmt.Errorf("unsupported literal %q", s)
	}
	return literal{kind: litInt, num: n}, nil
}

type evalContext struct {
	graph *stategraph.Graph
	index int
	node  *stategraph.Node
	nowMs *big.Int
}

type condition interface {
	eval(ctx evalContext) bool
}

type constCond bool

func (c constCond) eval(evalContext) bool { return bool(c) }

type newUTxOCond struct{}

func (newUTxOCond) eval(ctx evalContext) bool {
	return !hasIncoming(ctx.graph, ctx.index)
}

type spentCond struct{}

func (spentCond) eval(ctx evalContext) bool {
	return ctx.node.SpentBy != nil || ctx.graph.OutDegree(ctx.index) > 0
}

type redeemerCond struct {
	op   op
	name string
}

func (c redeemerCond) eval(ctx evalContext) bool {
	names := spendingRedeemers(ctx)
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if n == c.name {
			return c.op == opEq
		}
	}
	return c.op == opNe
}

// spendingRedeemers collects the redeemers under which the node was consumed.
func spendingRedeemers(ctx evalContext) []string {
	var names []string
	if s := ctx.node.SpentBy; s != nil && s.Redeemer != "" {
		names = append(names, s.Redeemer)
	}
	for _, e := range ctx.graph.Outgoing(ctx.index) {
		if e.Redeemer != "" {
			names = append(names, e.Redeemer)
		}
	}
	return names
}

type fieldCond struct {
	field string
	op    op
	lit   literal
}

func (c fieldCond) eval(ctx evalContext) bool {
	if ctx.node.Datum == nil {
		return false
	}
	f, ok := ctx.node.Datum.Fields.Field(c.field)
	if !ok {
		return false
	}

	switch c.lit.kind {
	case litInt, litNow:
		n, ok := f.Value.(datum.Integer)
		if !ok || n.Int == nil {
			return false
		}
		target := c.lit.num
		if c.lit.kind == litNow {
			target = ctx.nowMs
		}
		return c.op.holds(n.Cmp(target))
	case litBool:
		b, ok := datum.AsBool(f.Value)
		if !ok {
			return false
		}
		return c.op.holds(boolCmp(b, c.lit.flag))
	case litBytes:
		b, ok := f.Value.(datum.Bytes)
		if !ok {
			return false
		}
		return c.op.holds(strings.Compare(string(b), string(c.lit.bytes)))
	}
	return false
}

func boolCmp(a, b bool) int {
	if a == b {
		return 0
	}
	return 1
}
