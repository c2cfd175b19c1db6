// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stub

import (
	"fmt"
	"strings"
)

// Phrase is one Konglish expression the stub knows how to correct.
type Phrase struct {
	Konglish string
	Natural  string
	Why      string
	Reply    string // follow-up question appended to the correction
}

// DefaultPhrases is the built-in phrase table.
var DefaultPhrases = []Phrase{
	{"hand phone", "cell phone", "'hand phone' is not used by native speakers", "What happened to it?"},
	{"pocket ball", "pool", "billiards with pockets is called pool", "Where do you usually play?"},
	{"open car", "convertible", "a car with a folding roof is a convertible", "Where are you planning to drive?"},
	{"black consumer", "difficult customer", "'black consumer' is a Korean coinage", "What's the situation?"},
	{"eye shopping", "window shopping", "browsing without buying is window shopping", "Find anything nice?"},
	{"fighting", "you can do it", "'fighting!' as encouragement is Konglish", "What's the big day?"},
	{"one shot", "bottoms up", "drinking a glass in one go is 'bottoms up'", "What are we celebrating?"},
	{"sign pen", "felt-tip pen", "'sign pen' is a brand-derived term", "What are you drawing?"},
}

// match is a phrase found in a message.
type match struct {
	Phrase
	Similarity float64
}

// findPhrases returns the table entries whose Konglish text appears in
// message, in table order.
func findPhrases(table []Phrase, message string) []match {
	lower := strings.ToLower(message)
	var found []match
	for _, p := range table {
		if strings.Contains(lower, p.Konglish) {
			// Longer phrases are less likely to be accidental hits
			sim := 0.6 + 0.04*float64(len(p.Konglish))
			if sim > 0.99 {
				sim = 0.99
			}
			found = append(found, match{Phrase: p, Similarity: sim})
		}
	}
	return found
}

// correct builds the reply text for message.
func correct(table []Phrase, message string) string {
	found := findPhrases(table, message)
	if len(found) == 0 {
		return fmt.Sprintf("I'd help you make that sound more natural! Try giving me a complete sentence to work with.\n\nWhat you said: %q", message)
	}

	var b strings.Builder
	for _, m := range found {
		fmt.Fprintf(&b, "'%s' is Konglish, people just say '%s'.\n", m.Konglish, m.Natural)
	}
	b.WriteString("Anyway, ")
	b.WriteString(found[0].Reply)
	return b.String()
}
