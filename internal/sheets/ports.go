package sheets

import (
	"context"
	"time"

	"petcare/internal/core"
)

// RowTimeLayout is how activity instants appear in the sheet.
const RowTimeLayout = "2006-01-02 15:04"

// Ports for outbound adapters.
type (
	// ActivityExporter mirrors stored activities to an external ledger.
	ActivityExporter interface {
		// ExportActivity appends one row and returns a reference to it.
		ExportActivity(ctx context.Context, a core.Activity) (rowRef string, err error)
	}
)

// ActivityRow is the spreadsheet row for a: id, pet, type, amount and the
// local date-time in loc.
func ActivityRow(a core.Activity, loc *time.Location) []any {
	if loc == nil {
		loc = time.Local
	}
	return []any{
		a.ID,
		a.PetName,
		string(a.Type),
		a.Amount,
		a.DateTime.In(loc).Format(RowTimeLayout),
	}
}
