package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/openspace/seating-engine/pkg/models"
)

// Roster workbook ingestion.
//
// The expected layout is a single sheet with three columns:
//
//	name | compatible | incompatible
//
// Column one lists every participant. A compatible cell reads "a:b" (a and
// b must share a table), an incompatible cell reads "a/b" (they must not).
// Validation is deliberately strict and happens entirely here so the solver
// only ever sees well-formed index pairs:
//   - exactly those three headers
//   - at least one participant, names unique after trimming
//   - every name referenced in a pair must exist in column one
//   - a name appears in at most one compatible and at most one incompatible
//     cell, and never in both relations

// ErrInvalidWorkbook marks any structural rejection of an uploaded file.
var ErrInvalidWorkbook = errors.New("invalid workbook structure")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidWorkbook, fmt.Sprintf(format, args...))
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseRoster reads and validates an uploaded workbook, returning names in
// input order plus constraint pairs resolved to indices.
func ParseRoster(r io.Reader) (*models.Roster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, invalidf("not a readable xlsx file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, invalidf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, invalidf("failed to read sheet %q: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, invalidf("sheet %q is empty", sheets[0])
	}

	header := rows[0]
	if cell(header, 0) != "name" || cell(header, 1) != "compatible" || cell(header, 2) != "incompatible" {
		return nil, invalidf("expected columns name, compatible, incompatible")
	}

	roster := &models.Roster{}
	index := make(map[string]int)
	var compatibleCells, incompatibleCells []string

	for _, row := range rows[1:] {
		if name := cell(row, 0); name != "" {
			if _, dup := index[name]; dup {
				return nil, invalidf("duplicate participant name %q", name)
			}
			index[name] = len(roster.Names)
			roster.Names = append(roster.Names, name)
		}
		if c := cell(row, 1); c != "" {
			compatibleCells = append(compatibleCells, c)
		}
		if c := cell(row, 2); c != "" {
			incompatibleCells = append(incompatibleCells, c)
		}
	}

	if len(roster.Names) == 0 {
		return nil, invalidf("no participant names found")
	}

	resolve := func(cells []string, sep, relation string) ([][2]int, map[string]bool, error) {
		seen := make(map[string]bool)
		pairs := make([][2]int, 0, len(cells))
		for _, raw := range cells {
			parts := strings.Split(raw, sep)
			if len(parts) != 2 {
				return nil, nil, invalidf("%s cell %q must contain exactly two names separated by %q", relation, raw, sep)
			}
			a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			ia, ok := index[a]
			if !ok {
				return nil, nil, invalidf("%s cell %q references unknown name %q", relation, raw, a)
			}
			ib, ok := index[b]
			if !ok {
				return nil, nil, invalidf("%s cell %q references unknown name %q", relation, raw, b)
			}
			if seen[a] || seen[b] {
				return nil, nil, invalidf("a name may appear in at most one %s pair", relation)
			}
			seen[a], seen[b] = true, true
			pairs = append(pairs, [2]int{ia, ib})
		}
		return pairs, seen, nil
	}

	compatible, inCompat, err := resolve(compatibleCells, ":", "compatible")
	if err != nil {
		return nil, err
	}
	incompatible, inIncompat, err := resolve(incompatibleCells, "/", "incompatible")
	if err != nil {
		return nil, err
	}
	for name := range inIncompat {
		if inCompat[name] {
			return nil, invalidf("%q appears in both the compatible and incompatible columns", name)
		}
	}

	roster.Compatible = compatible
	roster.Incompatible = incompatible
	return roster, nil
}
