package llm

import (
	"regexp"
	"strings"
)

// Interviewer-facing text must never carry raw URLs; the model is asked not
// to emit them but the policy is enforced locally, not delegated.
var urlRe = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

func ContainsURL(s string) bool {
	return urlRe.MatchString(s)
}

// StripURLs is the last resort after the bounded regeneration retries are
// exhausted.
func StripURLs(s string) string {
	out := urlRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(out), " ")
}
