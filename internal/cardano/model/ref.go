package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref identifies a transaction output.
type Ref struct {
	TxHash string
	Index  uint32
}

// String renders the reference as hash#index.
func (r Ref) String() string {
	return r.TxHash + "#" + strconv.FormatUint(uint64(r.Index), 10)
}

// ParseRef parses the hash#index form produced by Ref.String.
func ParseRef(s string) (Ref, error) {
	hash, idx, ok := strings.Cut(s, "#")
	if !ok || hash == "" {
		return Ref{}, fmt.Errorf("invalid output reference %q", s)
	}
	index, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid output index in %q: %w", s, err)
	}
	return Ref{TxHash: hash, Index: uint32(index)}, nil
}

// Less orders references by transaction hash, then output index.
func (r Ref) Less(o Ref) bool {
	if r.TxHash != o.TxHash {
		return r.TxHash < o.TxHash
	}
	return r.Index < o.Index
}
