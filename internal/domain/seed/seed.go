// Package seed provides the activity directory a process starts with.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/mergington/internal/domain/model"
)

// Sentinel error kinds for seed loading.
var (
	ErrLoadSeed    = errors.New("load seed failed")
	ErrInvalidSeed = errors.New("invalid seed")
)

// keyDelim splits nested koanf keys. Activity names may contain dots and
// spaces, so the default "." is not usable here.
const keyDelim = "|"

// Default returns a fresh copy of the built-in Mergington High School
// activities.
func Default() model.Directory {
	return model.Directory{
		"Basketball Team": {
			Description:     "Join our competitive basketball team and play in league games",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 15,
			Participants:    []string{"james@mergington.edu"},
		},
		"Tennis Club": {
			Description:     "Practice tennis skills and compete in matches",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 10,
			Participants:    []string{"sarah@mergington.edu"},
		},
		"Drama Club": {
			Description:     "Perform in theatrical productions and develop acting skills",
			Schedule:        "Wednesdays and Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 25,
			Participants:    []string{"lucas@mergington.edu", "mia@mergington.edu"},
		},
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		"Programming Class": {
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		"Gym Class": {
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
	}
}

// Load reads a YAML seed file shaped as:
//
//	activities:
//	  Chess Club:
//	    description: ...
//	    schedule: ...
//	    max_participants: 12
//	    participants: [a@mergington.edu]
func Load(_ context.Context, path string) (model.Directory, error) {
	k := koanf.New(keyDelim)
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadSeed, path, err)
	}

	raw := map[string]model.Activity{}
	if err := k.UnmarshalWithConf("activities", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadSeed, path, err)
	}

	dir := make(model.Directory, len(raw))
	for name, a := range raw {
		dir[name] = a.Clone()
	}
	if err := Validate(dir); err != nil {
		return nil, err
	}
	return dir, nil
}

// Validate checks that every activity is named, has a positive capacity and
// holds each email at most once.
func Validate(dir model.Directory) error {
	if len(dir) == 0 {
		return fmt.Errorf("%w: no activities", ErrInvalidSeed)
	}
	for name, a := range dir {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty activity name", ErrInvalidSeed)
		}
		if a.MaxParticipants < 1 {
			return fmt.Errorf("%w: %q: max_participants must be positive", ErrInvalidSeed, name)
		}
		seen := make(map[string]struct{}, len(a.Participants))
		for _, email := range a.Participants {
			if _, dup := seen[email]; dup {
				return fmt.Errorf("%w: %q: duplicate participant %s", ErrInvalidSeed, name, email)
			}
			seen[email] = struct{}{}
		}
	}
	return nil
}
