package app

import "strings"

const TopicOther = "Other"

// topicRules is checked in order; the order fixes tag order in the output.
var topicRules = []struct {
	tag      string
	keywords []string
}{
	{"WiFi", []string{"wifi", "wi-fi", "internet"}},
	{"Cleanliness", []string{"clean", "dirty", "spotless"}},
	{"Location", []string{"location", "central", "near"}},
	{"Check-in", []string{"check in", "check-in", "checkin", "check out", "check-out", "checkout", "arrival", "key collection"}},
	{"Noise", []string{"noise", "noisy", "loud", "quiet"}},
	{"Staff", []string{"staff", "host", "team", "service"}},
}

// Topics lists every tag ExtractTopics can emit, Other last.
func Topics() []string {
	out := make([]string, 0, len(topicRules)+1)
	for _, r := range topicRules {
		out = append(out, r.tag)
	}
	return append(out, TopicOther)
}

// ExtractTopics tags free text by substring keyword match. Never returns an empty slice.
func ExtractTopics(text string) []string {
	if text == "" {
		return []string{TopicOther}
	}
	lower := strings.ToLower(text)
	var tags []string
	for _, r := range topicRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, r.tag)
				break
			}
		}
	}
	if len(tags) == 0 {
		return []string{TopicOther}
	}
	return tags
}
