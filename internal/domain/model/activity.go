// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"time"
)

// Activity is one extracurricular offering and its roster.
type Activity struct {
	Description     string   `json:"description" koanf:"description"`
	Schedule        string   `json:"schedule" koanf:"schedule"`
	MaxParticipants int      `json:"max_participants" koanf:"max_participants"`
	Participants    []string `json:"participants" koanf:"participants"`
}

// Clone returns a deep copy. Participants is never nil on the copy so it
// always encodes as a JSON array.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

// Has reports whether email is on the roster.
func (a Activity) Has(email string) bool {
	return slices.Contains(a.Participants, email)
}

// SpotsLeft is MaxParticipants minus the roster size, floored at zero.
// Capacity is advisory: nothing rejects a signup when it reaches zero.
func (a Activity) SpotsLeft() int {
	return max(a.MaxParticipants-len(a.Participants), 0)
}

// Directory maps activity name to its record.
type Directory map[string]Activity

// Clone returns a deep copy of the directory.
func (d Directory) Clone() Directory {
	out := make(Directory, len(d))
	for name, a := range d {
		out[name] = a.Clone()
	}
	return out
}

// ChangeKind tells what happened to a roster.
type ChangeKind string

// Roster change kinds.
const (
	ChangeEnrolled  ChangeKind = "enrolled"
	ChangeWithdrawn ChangeKind = "withdrawn"
)

// RosterChange records one successful enroll or withdraw.
type RosterChange struct {
	ID       string     `json:"id"`
	Kind     ChangeKind `json:"kind"`
	Activity string     `json:"activity"`
	Email    string     `json:"email"`
	At       time.Time  `json:"at"`
}
