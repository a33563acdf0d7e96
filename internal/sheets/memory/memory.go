package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"petcare/internal/core"
	"petcare/internal/sheets"
)

// Exporter keeps exported rows in memory. It stands in for the spreadsheet
// when no sheet is configured.
type Exporter struct {
	mu   sync.Mutex
	loc  *time.Location
	rows [][]any
}

func New(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{loc: loc}
}

// ExportActivity stores the row and returns a synthetic row reference.
func (e *Exporter) ExportActivity(_ context.Context, a core.Activity) (string, error) {
	if a.ID == "" {
		return "", fmt.Errorf("export activity: missing id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, sheets.ActivityRow(a, e.loc))
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// Rows returns a copy of the exported rows.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]any(nil), e.rows...)
}

var _ sheets.ActivityExporter = (*Exporter)(nil)
