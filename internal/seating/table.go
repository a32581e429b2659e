package seating

import "fmt"

// Table holds a fixed row of seats. Tables are created by the openspace
// before assignment and never resized afterward.
type Table struct {
	ID       int
	Capacity int
	Seats    []Seat
}

func NewTable(id, capacity int) *Table {
	t := &Table{ID: id, Capacity: capacity, Seats: make([]Seat, capacity)}
	for i := range t.Seats {
		t.Seats[i] = Seat{Table: id, Number: i + 1}
	}
	return t
}

// Label returns the presentation name of the table ("Table_2").
func (t *Table) Label() string {
	return fmt.Sprintf("Table_%d", t.ID)
}

// LeftCapacity returns the number of free seats.
func (t *Table) LeftCapacity() int {
	free := 0
	for i := range t.Seats {
		if t.Seats[i].Occupant == "" {
			free++
		}
	}
	return free
}

// HasFreeSeats reports whether anyone else can still sit down.
func (t *Table) HasFreeSeats() bool {
	return t.LeftCapacity() > 0
}

// SetOccupant seats one person at the next free seat.
func (t *Table) SetOccupant(name string) error {
	for i := range t.Seats {
		if t.Seats[i].Occupant == "" {
			return t.Seats[i].SetOccupant(name)
		}
	}
	return fmt.Errorf("table %d is already full", t.ID)
}

// SetOccupants seats a group in order, refusing the whole group if it does
// not fit.
func (t *Table) SetOccupants(names []string) error {
	if len(names) > t.LeftCapacity() {
		return fmt.Errorf("not enough free seats at table %d for %d people", t.ID, len(names))
	}
	for _, name := range names {
		if err := t.SetOccupant(name); err != nil {
			return err
		}
	}
	return nil
}
