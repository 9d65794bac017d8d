package datum

import (
	"errors"
	"fmt"
)

// ErrDepthExceeded is matched by decode errors raised by the nesting guard.
var ErrDepthExceeded = errors.New("maximum nesting depth exceeded")

type Reason string

const (
	ReasonUnexpectedType Reason = "unexpected major type"
	ReasonTruncated      Reason = "truncated input"
	ReasonOverflow       Reason = "integer overflow"
	ReasonIndefinite     Reason = "unsupported indefinite-length construct"
	ReasonUnsupportedTag Reason = "unsupported tag"
	ReasonTrailingBytes  Reason = "trailing bytes"
	ReasonDepthExceeded  Reason = "depth exceeded"
)

// DecodeError reports where and why a payload could not be decoded.
type DecodeError struct {
	Offset int
	Reason Reason
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("decode datum at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("decode datum at offset %d: %s: %s", e.Offset, e.Reason, e.Detail)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDepthExceeded && e.Reason == ReasonDepthExceeded
}
