// Package export produces on-demand full-document backup dumps.
package export

import (
	"fmt"
	"time"

	"github.com/bganesh/bprogress/internal/codec"
	"github.com/bganesh/bprogress/internal/models"
)

// Dump renders the document as a pretty-printed backup and returns the
// date-stamped download filename along with the bytes.
func Dump(doc *models.Document, now time.Time) (string, []byte, error) {
	b, err := codec.EncodeIndent(doc)
	if err != nil {
		return "", nil, fmt.Errorf("export: %w", err)
	}
	name := fmt.Sprintf("b_progress_backup_%s.json", now.Format("2006-01-02"))
	return name, b, nil
}
