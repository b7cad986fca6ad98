package source

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// IsScanned reports whether a PDF has no text layer: it is scanned when no
// page yields non-blank plain text. A document that cannot be opened is
// reported as scanned together with the open error.
func IsScanned(path string) (bool, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return true, err
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		if hasText(r.Page(i)) {
			return false, nil
		}
	}
	return true, nil
}

func hasText(p pdf.Page) (found bool) {
	if p.V.IsNull() {
		return false
	}
	// The reader panics on some malformed content streams.
	defer func() {
		if recover() != nil {
			found = false
		}
	}()
	text, err := p.GetPlainText(nil)
	if err != nil {
		return false
	}
	return strings.TrimSpace(text) != ""
}
