package spreadsheet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/openspace/seating-engine/pkg/models"
)

// buildWorkbook assembles an in-memory xlsx with the roster layout.
func buildWorkbook(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("Expected valid coordinates. Got: %v", err)
			}
			if err := f.SetCellValue(sheet, cellName, value); err != nil {
				t.Fatalf("Expected cell write to succeed. Got: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Expected workbook serialization to succeed. Got: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParseRoster_Valid(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "compatible", "incompatible"},
		{"Alice", "Alice:Bob", "Charlie/David"},
		{"Bob", "", ""},
		{"Charlie", "", ""},
		{"David", "", ""},
	})

	roster, err := ParseRoster(r)
	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if len(roster.Names) != 4 || roster.Names[0] != "Alice" || roster.Names[3] != "David" {
		t.Errorf("Expected 4 names in input order. Got: %v", roster.Names)
	}
	if len(roster.Compatible) != 1 || roster.Compatible[0] != [2]int{0, 1} {
		t.Errorf("Expected compatible pair (0,1). Got: %v", roster.Compatible)
	}
	if len(roster.Incompatible) != 1 || roster.Incompatible[0] != [2]int{2, 3} {
		t.Errorf("Expected incompatible pair (2,3). Got: %v", roster.Incompatible)
	}
}

func TestParseRoster_TrimsWhitespace(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "compatible", "incompatible"},
		{"  Alice ", " Alice : Bob ", ""},
		{"Bob", "", ""},
	})
	roster, err := ParseRoster(r)
	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if roster.Names[0] != "Alice" {
		t.Errorf("Expected trimmed name Alice. Got: %q", roster.Names[0])
	}
	if len(roster.Compatible) != 1 || roster.Compatible[0] != [2]int{0, 1} {
		t.Errorf("Expected compatible pair (0,1). Got: %v", roster.Compatible)
	}
}

func TestParseRoster_RejectsBadHeader(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"person", "friends", "enemies"},
		{"Alice", "", ""},
	})
	if _, err := ParseRoster(r); !errors.Is(err, ErrInvalidWorkbook) {
		t.Errorf("Expected ErrInvalidWorkbook for wrong headers. Got: %v", err)
	}
}

func TestParseRoster_RejectsDuplicateNames(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "compatible", "incompatible"},
		{"Alice", "", ""},
		{"Alice", "", ""},
	})
	if _, err := ParseRoster(r); !errors.Is(err, ErrInvalidWorkbook) {
		t.Errorf("Expected ErrInvalidWorkbook for duplicate name. Got: %v", err)
	}
}

func TestParseRoster_RejectsUnknownReference(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "compatible", "incompatible"},
		{"Alice", "Alice:Zed", ""},
		{"Bob", "", ""},
	})
	if _, err := ParseRoster(r); !errors.Is(err, ErrInvalidWorkbook) {
		t.Errorf("Expected ErrInvalidWorkbook for unknown name. Got: %v", err)
	}
}

func TestParseRoster_RejectsNameInBothRelations(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "compatible", "incompatible"},
		{"Alice", "Alice:Bob", "Alice/Charlie"},
		{"Bob", "", ""},
		{"Charlie", "", ""},
	})
	if _, err := ParseRoster(r); !errors.Is(err, ErrInvalidWorkbook) {
		t.Errorf("Expected ErrInvalidWorkbook for overlapping relations. Got: %v", err)
	}
}

func TestParseRoster_RejectsMalformedPair(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "compatible", "incompatible"},
		{"Alice", "Alice:Bob:Charlie", ""},
		{"Bob", "", ""},
		{"Charlie", "", ""},
	})
	if _, err := ParseRoster(r); !errors.Is(err, ErrInvalidWorkbook) {
		t.Errorf("Expected ErrInvalidWorkbook for three-way pair. Got: %v", err)
	}
}

func TestParseRoster_RejectsEmptyRoster(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "compatible", "incompatible"},
	})
	if _, err := ParseRoster(r); !errors.Is(err, ErrInvalidWorkbook) {
		t.Errorf("Expected ErrInvalidWorkbook for empty roster. Got: %v", err)
	}
}

func TestPlanToXLSX_WritesColumnsPerTable(t *testing.T) {
	plan := models.SeatingPlan{
		"Table_1": {"Seat_1": "Alice", "Seat_2": "Bob"},
		"Table_2": {"Seat_1": "Charlie", "Seat_2": ""},
	}

	data, err := PlanToXLSX(plan)
	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected readable workbook. Got: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	checks := map[string]string{
		"A1": "Table_1", "B1": "Table_2",
		"A2": "Alice", "A3": "Bob",
		"B2": "Charlie",
	}
	for cellName, want := range checks {
		got, err := f.GetCellValue(sheet, cellName)
		if err != nil {
			t.Fatalf("Expected cell read to succeed. Got: %v", err)
		}
		if got != want {
			t.Errorf("Expected %s=%q. Got: %q", cellName, want, got)
		}
	}
}

func TestPlanToXLSX_TableOrderIsNumeric(t *testing.T) {
	// Table_10 must sort after Table_2, not between Table_1 and Table_2.
	plan := models.SeatingPlan{}
	for _, label := range []string{"Table_1", "Table_2", "Table_10"} {
		plan[label] = map[string]string{"Seat_1": label + "-occupant"}
	}

	data, err := PlanToXLSX(plan)
	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected readable workbook. Got: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(f.GetSheetName(0), "C1")
	if err != nil {
		t.Fatalf("Expected cell read to succeed. Got: %v", err)
	}
	if got != "Table_10" {
		t.Errorf("Expected Table_10 in the third column. Got: %q", got)
	}
}
