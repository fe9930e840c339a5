package rostercheck

import (
	"errors"
	"fmt"
	"slices"
)

// ErrVerification is returned when the rosters break an invariant.
var ErrVerification = errors.New("roster verification failed")

// verifyEnrolled checks that every generated signup landed exactly once and
// that no roster holds a duplicate.
func verifyEnrolled(dir map[string]Activity, unique []Signup, enrolled int) error {
	var errs []error

	if enrolled != len(unique) {
		errs = append(errs, fmt.Errorf("%d signups accepted, want exactly %d", enrolled, len(unique)))
	}

	for _, s := range unique {
		a, ok := dir[s.Activity]
		if !ok {
			errs = append(errs, fmt.Errorf("activity %q disappeared", s.Activity))
			continue
		}
		if n := count(a.Participants, s.Email); n != 1 {
			errs = append(errs, fmt.Errorf("%s appears %d times on %q", s.Email, n, s.Activity))
		}
	}

	for name, a := range dir {
		if dup := firstDuplicate(a.Participants); dup != "" {
			errs = append(errs, fmt.Errorf("%q lists %s more than once", name, dup))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrVerification, errors.Join(errs...))
	}
	return nil
}

// verifyRestored checks that every roster matches its state before the run.
func verifyRestored(before, after map[string]Activity) error {
	var errs []error
	for name, a := range before {
		if !slices.Equal(a.Participants, after[name].Participants) {
			errs = append(errs, fmt.Errorf("%q roster is %v, want %v", name, after[name].Participants, a.Participants))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrVerification, errors.Join(errs...))
	}
	return nil
}

func count(list []string, v string) int {
	n := 0
	for _, s := range list {
		if s == v {
			n++
		}
	}
	return n
}

func firstDuplicate(list []string) string {
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			return s
		}
		seen[s] = struct{}{}
	}
	return ""
}
