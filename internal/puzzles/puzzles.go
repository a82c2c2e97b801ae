// Package puzzles holds the static puzzle configuration. Definitions are
// never mutated at runtime; progress lives in the database.
package puzzles

import "strings"

type Definition struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Answer      string   `json:"-"`
	Points      int      `json:"points"`
	// RestrictedTo lists the roster slots allowed to submit. Empty means
	// any player on the team.
	RestrictedTo []string `json:"restricted_to,omitempty"`
	// Requires names the puzzle that must be solved before this one
	// unlocks. Empty means available from the start.
	Requires string   `json:"requires,omitempty"`
	Hints    []string `json:"-"`
	// HintAfter is the failed-attempt count from which the first hint is
	// surfaced to the requester.
	HintAfter int `json:"-"`
}

var definitions = []Definition{
	{
		Name:         "chardin",
		Title:        "The Chardin Enigma",
		Description:  "Find the code hidden in the paintings",
		Answer:       "3563",
		Points:       100,
		RestrictedTo: []string{"team1"},
		Hints: []string{
			"Look closely at the paintings...",
			"The digits are hidden in the details",
			"Try counting certain elements",
		},
		HintAfter: 3,
	},
	{
		Name:         "sekhmet",
		Title:        "The Daughter of Ra",
		Description:  "Reproduce the name of Sekhmet in hieroglyphs",
		Answer:       "h3-h6-h5-h10",
		Points:       300,
		RestrictedTo: []string{"team2"},
		Requires:     "chardin",
		Hints: []string{
			"Follow the daughter of the sun...",
			"The lioness-headed goddess knows the order",
		},
		HintAfter: 3,
	},
	{
		Name:        "tableau_bleu",
		Title:       "The Blue Painting",
		Description: "Decipher the message of the blue painting",
		Answer:      "AZURE",
		Points:      150,
		Hints: []string{
			"The color matters...",
			"Think about shades of blue",
		},
		HintAfter: 3,
	},
	{
		Name:        "musee_secret",
		Title:       "The Museum's Secret",
		Description: "Uncover the hidden secret of the museum",
		Answer:      "1789",
		Points:      200,
		Hints: []string{
			"Look at the founding year...",
			"An important date in France",
			"Revolution...",
		},
		HintAfter: 3,
	},
}

// Get returns the definition for a puzzle name.
func Get(name string) (Definition, bool) {
	for _, d := range definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// All returns every definition in declaration order.
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// IsPlayerAllowed reports whether a roster slot may submit answers for the
// puzzle.
func IsPlayerAllowed(name, playerID string) bool {
	d, ok := Get(name)
	if !ok {
		return false
	}
	if len(d.RestrictedTo) == 0 {
		return true
	}
	for _, id := range d.RestrictedTo {
		if id == playerID {
			return true
		}
	}
	return false
}

// DependentsOf returns the puzzles unlocked by solving the named puzzle.
func DependentsOf(name string) []Definition {
	var out []Definition
	for _, d := range definitions {
		if d.Requires == name {
			out = append(out, d)
		}
	}
	return out
}

// TotalPoints is the maximum score a team can reach.
func TotalPoints() int {
	total := 0
	for _, d := range definitions {
		total += d.Points
	}
	return total
}

// Matches compares a submitted answer against the configured one. Input is
// trimmed and compared case-insensitively.
func (d Definition) Matches(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), d.Answer)
}
