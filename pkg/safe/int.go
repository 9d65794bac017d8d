// Package safe converts between the integer widths of CBOR headers, ledger indices and storage columns.
package safe

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is wrapped by every failed conversion.
var ErrOutOfRange = errors.New("integer out of range")

// Integer lists the integer kinds accepted by the conversions below.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

func outOfRange[T Integer](v T, target string) error {
	return fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, v, target)
}

// Uint32 converts v to uint32, rejecting negatives and values above math.MaxUint32.
func Uint32[T Integer](v T) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, outOfRange(v, "uint32")
	}
	return uint32(v), nil
}

// ClampUint32 is Uint32 saturating at 0 and math.MaxUint32. Counters stored in UInt32 columns use it.
func ClampUint32[T Integer](v T) uint32 {
	switch {
	case v < 0:
		return 0
	case uint64(v) > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}

// Int converts v to int, rejecting values that do not fit on the current platform.
// CBOR lengths and ledger indices arrive as uint64.
func Int[T Integer](v T) (int, error) {
	if v < 0 {
		if int64(v) < math.MinInt {
			return 0, outOfRange(v, "int")
		}
		return int(v), nil
	}
	if uint64(v) > math.MaxInt {
		return 0, outOfRange(v, "int")
	}
	return int(v), nil
}
