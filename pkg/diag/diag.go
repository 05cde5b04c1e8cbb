// Package diag renders engine errors against the raw mappings text they
// came from, pointing a caret at the offending byte. Mappings strings are
// long single-line blobs, so the renderer shows a trimmed window around
// the failure offset instead of whole lines.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mapforge/sourcemap/pkg/sourcemap"
)

// contextBytes is how much of the mappings text is shown on each side of
// the failure offset.
const contextBytes = 24

// Render formats err for display. When err carries a byte offset into
// input, the offending region is shown with a caret; otherwise the plain
// error text is returned.
func Render(input []byte, err error) string {
	var smErr *sourcemap.Error
	if !errors.As(err, &smErr) || smErr.Offset < 0 || smErr.Offset > len(input) {
		return err.Error()
	}

	start := smErr.Offset - contextBytes
	leftTrimmed := start > 0
	if start < 0 {
		start = 0
	}
	end := smErr.Offset + contextBytes
	rightTrimmed := end < len(input)
	if end > len(input) {
		end = len(input)
	}

	window := string(input[start:end])
	prefix := "  "
	if leftTrimmed {
		prefix = "  ..."
	}
	suffix := ""
	if rightTrimmed {
		suffix = "..."
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Error: %s at offset %d\n\n", smErr.Type, smErr.Offset)
	fmt.Fprintf(&buf, "%s%s%s\n", prefix, window, suffix)
	fmt.Fprintf(&buf, "%s^\n", strings.Repeat(" ", len(prefix)+(smErr.Offset-start)))
	if smErr.Msg != "" {
		fmt.Fprintf(&buf, "\n%s\n", smErr.Msg)
	}
	return buf.String()
}
