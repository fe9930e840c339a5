// Package rostercheck drives concurrent signup traffic against a running
// server and verifies the rosters it leaves behind.
package rostercheck

import "time"

// Config holds configuration for a roster check run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Students int           // Number of distinct students to sign up
	Racers   int           // Concurrent attempts per signup
	Workers  int           // Number of concurrent HTTP workers
	Timeout  time.Duration // HTTP request timeout
	Cleanup  bool          // Unregister every generated student afterwards
}

// Signup is one (activity, email) pair the run tries to enroll.
type Signup struct {
	Activity string
	Email    string
}

// Activity mirrors one entry of GET /activities.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Stats holds run statistics.
type Stats struct {
	Attempts     int
	Enrolled     int
	Rejected     int
	Failed       int
	Unregistered int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
