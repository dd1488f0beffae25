package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fleetyard/fleetyard/internal/models"
)

// NoData is the literal body of a report with no matching events. Not an empty
// file and not a headers-only file; downstream consumers depend on this text.
const NoData = "No data"

// Flatten turns events into one row per field change, which is how the report
// consumers read the journal: each row is a single traceable modification.
func Flatten(events []models.ChangeEvent) []map[string]any {
	var rows []map[string]any
	for _, ev := range events {
		for _, c := range ev.Changes {
			rows = append(rows, map[string]any{
				"event_id":    ev.ID,
				"vehicle_vin": ev.VehicleVIN,
				"field":       c.Field,
				"old_value":   c.OldValue,
				"new_value":   c.NewValue,
				"updated_by":  ev.UpdatedBy,
				"updated_at":  ev.UpdatedAt,
			})
		}
	}
	return rows
}

// RenderCSV renders rows as CSV text. Columns are taken from the first row's
// key set, sorted; rows with extra keys lose them, mirroring the shape-of-first-
// record contract of the original report consumer (keys are sorted here because
// Go map iteration is unordered). Every value is double-quoted, embedded quotes
// doubled, timestamps rendered as ISO-8601. Rows are joined with \n and there
// is no trailing newline.
func RenderCSV(rows []map[string]any) string {
	if len(rows) == 0 {
		return NoData
	}

	headers := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(h))
	}
	for _, row := range rows {
		b.WriteByte('\n')
		for i, h := range headers {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(render(row[h])))
		}
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case time.Time:
		return t.Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
