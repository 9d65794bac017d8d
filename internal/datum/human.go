package datum

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	pubKeyHashSize = 28
	hashSize       = 32
)

// POSIX millisecond window in which integers get a date hint: Shelley era start to year 2100.
var (
	timestampMin = big.NewInt(1_596_059_091_000)
	timestampMax = big.NewInt(4_102_444_800_000)
)

// Humanize renders a one-line summary of v. Containers show their size, not their content.
func Humanize(v Value) string {
	switch tv := v.(type) {
	case nil:
		return "<none>"
	case Bytes:
		return humanBytes(tv)
	case Integer:
		return humanInteger(tv)
	case List:
		if len(tv) == 0 {
			return "[]"
		}
		return fmt.Sprintf("List[%d items]", len(tv))
	case Map:
		if len(tv) == 0 {
			return "{}"
		}
		return fmt.Sprintf("Map{%d pairs}", len(tv))
	case Constr:
		if len(tv.Fields) == 0 {
			return fmt.Sprintf("Constr(%d)", tv.Index)
		}
		return fmt.Sprintf("Constr(%d, %d fields)", tv.Index, len(tv.Fields))
	}
	return fmt.Sprintf("%T", v)
}

func humanBytes(b Bytes) string {
	switch {
	case len(b) == pubKeyHashSize:
		return "PubKeyHash(" + hex.EncodeToString(b) + ")"
	case len(b) == hashSize:
		return "Hash(" + hex.EncodeToString(b) + ")"
	case len(b) > 0 && printable(b):
		return fmt.Sprintf("String(%q)", string(b))
	default:
		return "Bytes(0x" + hex.EncodeToString(b) + ")"
	}
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			if c != '\t' && c != '\n' && c != '\r' {
				return false
			}
		}
	}
	return true
}

func humanInteger(n Integer) string {
	if n.Int == nil {
		return "0"
	}
	if n.IsInt64() && (n.Int64() == 0 || n.Int64() == 1) {
		return fmt.Sprintf("%d (bool: %t)", n.Int64(), n.Int64() == 1)
	}
	if n.Cmp(timestampMin) >= 0 && n.Cmp(timestampMax) <= 0 {
		ts := time.UnixMilli(n.Int64()).UTC()
		return fmt.Sprintf("%s (%s)", n.String(), ts.Format("2006-01-02 15:04:05 UTC"))
	}
	return n.String()
}

// Render prints the whole tree, one value per line, indented by depth.
func Render(v Value) string {
	var sb strings.Builder
	render(&sb, v, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func render(sb *strings.Builder, v Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch tv := v.(type) {
	case Constr:
		fmt.Fprintf(sb, "%sConstr %d\n", indent, tv.Index)
		for _, f := range tv.Fields {
			render(sb, f, depth+1)
		}
	case List:
		fmt.Fprintf(sb, "%sList (%d)\n", indent, len(tv))
		for _, item := range tv {
			render(sb, item, depth+1)
		}
	case Map:
		fmt.Fprintf(sb, "%sMap (%d)\n", indent, len(tv))
		for _, p := range tv {
			fmt.Fprintf(sb, "%s  key:\n", indent)
			render(sb, p.Key, depth+2)
			fmt.Fprintf(sb, "%s  value:\n", indent)
			render(sb, p.Value, depth+2)
		}
	default:
		sb.WriteString(indent + Humanize(v) + "\n")
	}
}
