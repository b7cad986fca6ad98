package gridscan

import (
	"fmt"
	"strings"
)

// Warning reports a page that produced no table rows or failed on its own
// without stopping the run.
type Warning struct {
	Page    int
	Message string
	Err     error
}

// String formats the warning as "page N: message"
func (w Warning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("page %d: %s: %v", w.Page, w.Message, w.Err)
	}
	return fmt.Sprintf("page %d: %s", w.Page, w.Message)
}

// FormatWarnings joins warnings into a single line
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
