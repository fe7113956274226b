// Package sheets defines the spreadsheet mirror port. The worker appends one
// row per recorded transaction through it; implementations live in the
// google and memory subpackages.
package sheets

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Entry is one mirrored spreadsheet row.
type Entry struct {
	Kind       string // "expense" or "income"
	Name       string
	Value      float64
	Month      int
	Year       int
	Category   string
	RecordedAt time.Time
}

// Validate rejects entries that would produce an unreadable row.
func (e Entry) Validate() error {
	if e.Kind != "expense" && e.Kind != "income" {
		return errors.New("entry kind must be expense or income")
	}
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("entry name is required")
	}
	if e.Month < 1 || e.Month > 12 {
		return errors.New("entry month out of range")
	}
	if e.Year < 1 {
		return errors.New("entry year out of range")
	}
	return nil
}

// EntryAppender appends a mirrored transaction row and returns a reference
// to where it landed (a range for real spreadsheets, synthetic for tests).
type EntryAppender interface {
	Append(ctx context.Context, e Entry) (rowRef string, err error)
}
