package models

import "time"

// SeatingPlan is the presentation form of a finished arrangement: table
// label -> seat label -> occupant name (empty string for a free seat).
// This is the exact shape persisted as JSON and exported to spreadsheets.
type SeatingPlan map[string]map[string]string

// Roster is a parsed participant workbook: names in input order plus the
// constraint pairs expressed as indices into Names. Identity is by index,
// never by name.
type Roster struct {
	Names        []string
	Compatible   [][2]int
	Incompatible [][2]int
}

// SessionRecord is one stored arrangement session.
type SessionRecord struct {
	SessionID    string      `json:"sessionId"`
	UploadedFile []byte      `json:"-"`
	Plan         SeatingPlan `json:"plan"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// SessionInfo is the listing view of a session, without payloads.
type SessionInfo struct {
	SessionID string    `json:"sessionId"`
	Status    string    `json:"status"`
	Tables    int       `json:"tables"`
	CreatedAt time.Time `json:"createdAt"`
}

// ArrangementEvent is broadcast over the websocket hub whenever a solve
// finishes, whatever the outcome.
type ArrangementEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Status    string `json:"status"`
	Tables    int    `json:"tables,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
