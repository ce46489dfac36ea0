package runner

import "regexp"

// MatchesAll reports whether every pattern finds a match somewhere in text.
// Patterns are compiled in multi-line mode, so ^ and $ match at line
// boundaries. An empty pattern list matches vacuously.
func MatchesAll(text string, patterns []string) (bool, error) {
	_, ok, err := firstMissing(text, patterns)
	return ok, err
}

// firstMissing returns the first pattern without a match; ok is true when
// every pattern matched.
func firstMissing(text string, patterns []string) (missing string, ok bool, err error) {
	for _, p := range patterns {
		re, err := regexp.Compile("(?m)" + p)
		if err != nil {
			return "", false, &PatternError{Pattern: p, Err: err}
		}
		if !re.MatchString(text) {
			return p, false, nil
		}
	}
	return "", true, nil
}
