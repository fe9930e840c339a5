package rostercheck

import (
	"crypto/rand"
	"math/big"
	"slices"
	"strings"

	"github.com/google/uuid"
)

const emailDomain = "@mergington.edu"

// generateSignups assigns each new student to one activity and repeats the
// pair racers times. The result is shuffled so racing attempts interleave.
func generateSignups(activities []string, students, racers int) (unique []Signup, attempts []Signup) {
	slices.Sort(activities)

	unique = make([]Signup, students)
	for i := range students {
		unique[i] = Signup{
			Activity: activities[i%len(activities)],
			Email:    "load-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + emailDomain,
		}
	}

	attempts = make([]Signup, 0, students*racers)
	for _, s := range unique {
		for range racers {
			attempts = append(attempts, s)
		}
	}
	shuffle(attempts)
	return unique, attempts
}

// shuffle is a Fisher-Yates shuffle over crypto/rand.
func shuffle(s []Signup) {
	for i := len(s) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return
		}
		j := int(n.Int64())
		s[i], s[j] = s[j], s[i]
	}
}
