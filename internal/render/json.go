package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
)

// JSON writes the indented report of r followed by a newline.
func JSON(w io.Writer, r *analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReport(r)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
