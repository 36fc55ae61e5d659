package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// EntryRow is one point of one entry in long format.
type EntryRow struct {
	EntryID     string
	SubmittedAt string
	Variant     string
	Point       PainPoint
	Notes       string
}

var entryCSVHeader = []string{"entry_id", "submitted_at", "variant", "point_id", "body_part", "x", "y", "intensity", "notes"}

// ExportEntriesCSV renders rows into a long-format CSV.
func ExportEntriesCSV(rows []EntryRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(entryCSVHeader)
	for _, r := range rows {
		rec := []string{
			r.EntryID,
			r.SubmittedAt,
			r.Variant,
			r.Point.ID,
			r.Point.BodyPart,
			formatPercent(r.Point.X),
			formatPercent(r.Point.Y),
			strconv.Itoa(r.Point.Intensity),
			sanitizeCSVCell(r.Notes),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sanitizeCSVCell neutralises spreadsheet formula prefixes in free text.
func sanitizeCSVCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
