package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/MinilikBelachew/voice-chat/models"
)

// factRule maps a set of trigger keywords to a fact builder. Rules are
// evaluated independently per utterance, so one utterance can yield
// several facts. Adding a rule means adding a table entry; the scan loop
// never changes.
type factRule struct {
	name     string
	keywords []string
	build    func(utterance string, now time.Time) string
}

const dateLayout = "January 2, 2006"

// factRules is the heuristic rule table mined against user utterances
// at the end of every session
var factRules = []factRule{
	{
		name:     "birthday",
		keywords: []string{"birthday"},
		build: func(utterance string, now time.Time) string {
			lower := strings.ToLower(utterance)
			switch {
			case strings.Contains(lower, "tomorrow"):
				return fmt.Sprintf("User's birthday is on %s", now.AddDate(0, 0, 1).Format(dateLayout))
			case strings.Contains(lower, "today"):
				return fmt.Sprintf("User's birthday is today, %s", now.Format(dateLayout))
			default:
				return fmt.Sprintf("User mentioned their birthday: %q", utterance)
			}
		},
	},
	{
		name:     "preference",
		keywords: []string{"i love", "i like", "my favorite"},
		build: func(utterance string, now time.Time) string {
			return fmt.Sprintf("User preference: %q", utterance)
		},
	},
	{
		name:     "personal_life",
		keywords: []string{"work", "job", "school"},
		build: func(utterance string, now time.Time) string {
			return fmt.Sprintf("About user's daily life: %q", utterance)
		},
	},
}

// ExtractFacts scans an ordered transcript for durable facts worth
// remembering. Only user utterances are considered; matching is
// case-insensitive. The result is deduplicated on exact fact text,
// preserving first-seen order. An empty transcript yields an empty
// result and no error condition exists: extraction is pure.
func ExtractFacts(utterances []models.Utterance, now time.Time) []string {
	facts := make([]string, 0)
	seen := make(map[string]bool)

	for _, u := range utterances {
		if u.Role != models.RoleUser {
			continue
		}
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)

		for _, rule := range factRules {
			if !containsAny(lower, rule.keywords) {
				continue
			}
			fact := rule.build(text, now)
			if seen[fact] {
				continue
			}
			seen[fact] = true
			facts = append(facts, fact)
		}
	}

	return facts
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
