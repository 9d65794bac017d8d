package datum

import (
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
)

// Diagnose renders raw CBOR in diagnostic notation, falling back to hex when it is not well-formed.
// Inspectors use it to show payloads the decoder rejected.
func Diagnose(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	out, err := cbor.Diagnose(raw)
	if err != nil {
		return "h'" + hex.EncodeToString(raw) + "'"
	}
	return out
}
