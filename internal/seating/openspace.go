package seating

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openspace/seating-engine/pkg/models"
)

// Openspace lays a finished partition out over numbered tables. This is a
// pure formatting step: the partition handed in is already valid, and
// nothing here feeds back into solving. Determinism contract: group i goes
// to table i+1 and members sit in ascending original input order, so the
// same partition always renders the same plan.
type Openspace struct {
	NumTables     int
	TableCapacity int
	Tables        []*Table
}

func NewOpenspace(numTables, tableCapacity int) *Openspace {
	o := &Openspace{NumTables: numTables, TableCapacity: tableCapacity}
	for i := 1; i <= numTables; i++ {
		o.Tables = append(o.Tables, NewTable(i, tableCapacity))
	}
	return o
}

// Assign seats each group at its own table. Empty groups are dropped first;
// their tables stay in the plan with free seats. Structural guards only —
// constraint checking belongs to the solver.
func (o *Openspace) Assign(groups [][]int, names []string) error {
	occupied := make([][]int, 0, len(groups))
	total := 0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		total += len(g)
		occupied = append(occupied, g)
	}

	if len(occupied) > o.NumTables {
		return fmt.Errorf("%d groups exceed the %d available tables", len(occupied), o.NumTables)
	}
	if total > o.NumTables*o.TableCapacity {
		return fmt.Errorf("%d people exceed the total seating capacity of %d", total, o.NumTables*o.TableCapacity)
	}

	for ti, group := range occupied {
		ordered := append([]int(nil), group...)
		sort.Ints(ordered)

		groupNames := make([]string, 0, len(ordered))
		for _, p := range ordered {
			if p < 0 || p >= len(names) {
				return fmt.Errorf("person id %d has no name entry", p)
			}
			groupNames = append(groupNames, names[p])
		}
		if err := o.Tables[ti].SetOccupants(groupNames); err != nil {
			return err
		}
	}
	return nil
}

// Plan returns the presentation map handed to the output layer:
// table label -> seat label -> occupant ("" for free seats).
func (o *Openspace) Plan() models.SeatingPlan {
	plan := make(models.SeatingPlan, len(o.Tables))
	for _, t := range o.Tables {
		seats := make(map[string]string, len(t.Seats))
		for i := range t.Seats {
			seats[t.Seats[i].Label()] = t.Seats[i].Occupant
		}
		plan[t.Label()] = seats
	}
	return plan
}

// String renders the arrangement for logs: one line per table.
func (o *Openspace) String() string {
	var b strings.Builder
	for _, t := range o.Tables {
		b.WriteString(t.Label())
		b.WriteString(":")
		for i := range t.Seats {
			occupant := t.Seats[i].Occupant
			if occupant == "" {
				occupant = "Empty"
			}
			fmt.Fprintf(&b, " %s=%s", t.Seats[i].Label(), occupant)
		}
		b.WriteString("\n")
	}
	return b.String()
}
