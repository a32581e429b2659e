package spreadsheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/openspace/seating-engine/pkg/models"
)

// PlanToXLSX renders a seating plan as a downloadable workbook: one column
// per table (header "Table_N"), one row per seat in seat order.
func PlanToXLSX(plan models.SeatingPlan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, table := range sortedLabels(plan, "Table_") {
		headerCell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, headerCell, table); err != nil {
			return nil, err
		}

		seats := plan[table]
		for row, seat := range sortedLabels(seats, "Seat_") {
			cellName, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cellName, seats[seat]); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sortedLabels orders map keys like "Table_1", "Table_2", ... numerically
// by suffix so column and row order is stable.
func sortedLabels[V any](m map[string]V, prefix string) []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimPrefix(labels[i], prefix))
		b, _ := strconv.Atoi(strings.TrimPrefix(labels[j], prefix))
		return a < b
	})
	return labels
}
