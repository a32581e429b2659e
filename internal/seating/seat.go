package seating

import "fmt"

// Seat is one position at a table. Number is 1-based within the table.
type Seat struct {
	Table    int
	Number   int
	Occupant string
}

// Label returns the presentation name of the seat ("Seat_3").
func (s *Seat) Label() string {
	return fmt.Sprintf("Seat_%d", s.Number)
}

// SetOccupant places a person on the seat. Occupied seats refuse a second
// occupant rather than silently overwriting.
func (s *Seat) SetOccupant(name string) error {
	if s.Occupant != "" {
		return fmt.Errorf("seat %d at table %d is already occupied by %s", s.Number, s.Table, s.Occupant)
	}
	s.Occupant = name
	return nil
}

// RemoveOccupant frees the seat and returns the previous occupant, or the
// empty string if the seat was free.
func (s *Seat) RemoveOccupant() string {
	name := s.Occupant
	s.Occupant = ""
	return name
}
