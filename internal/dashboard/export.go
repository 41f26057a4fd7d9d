package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fittrack-bot/internal/models"
)

var csvHeader = []string{
	"date", "weight", "measured_at", "activity", "steps", "duration_min",
	"calories", "carbs", "protein", "fat", "fiber",
}

// WriteCSV writes logs in the given order, one row per day. Missing parts
// are written as empty cells.
func WriteCSV(w io.Writer, logs []models.DailyLogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write export csv header: %w", err)
	}

	for _, e := range logs {
		row := make([]string, len(csvHeader))
		row[0] = e.Date
		if e.Weight != nil {
			row[1] = formatNum(e.Weight.Value)
			row[2] = e.Weight.MeasuredAt
		}
		if e.Activity != nil {
			row[3] = e.Activity.Type
			row[4] = formatNum(e.Activity.Steps)
			row[5] = formatNum(e.Activity.Duration)
		}
		if e.Totals != nil {
			row[6] = formatNum(e.Totals.Calories)
			row[7] = formatNum(e.Totals.Carbs)
			row[8] = formatNum(e.Totals.Protein)
			row[9] = formatNum(e.Totals.Fat)
			row[10] = formatNum(e.Totals.Fiber)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write export csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
