// Package pii scans text for sensitive-data patterns and produces a
// redacted copy alongside the exact spans that triggered.
package pii

// Detect runs the full catalog against text. It is a total function:
// any input, including the empty string and arbitrary unicode, yields a
// well-formed Result. Detect holds no shared state and is safe to call
// from any number of goroutines.
func Detect(text string) Result {
	redacted := text
	matches := make([]Match, 0)
	types := make([]Type, 0)
	seen := make(map[Type]bool)

	// Spans already claimed by an earlier pattern. A later pattern never
	// re-reports a claimed span, which is how catalog order classifies
	// shapes that two patterns would both accept.
	claimed := make([][2]int, 0)

	for _, pattern := range catalog {
		for _, loc := range pattern.Regex.FindAllStringIndex(text, -1) {
			if overlapsClaimed(claimed, loc[0], loc[1]) {
				continue
			}
			matches = append(matches, Match{
				Type:  pattern.Type,
				Value: text[loc[0]:loc[1]],
				Start: loc[0],
				End:   loc[1],
			})
			claimed = append(claimed, [2]int{loc[0], loc[1]})
			if !seen[pattern.Type] {
				seen[pattern.Type] = true
				types = append(types, pattern.Type)
			}
		}

		// Substitution runs type by type on the working copy, so a
		// placeholder written earlier is invisible to later patterns.
		redacted = pattern.Regex.ReplaceAllString(redacted, pattern.Placeholder)
	}

	return Result{
		HasPII:       len(matches) > 0,
		Types:        types,
		Count:        len(matches),
		Matches:      matches,
		RedactedText: redacted,
	}
}

// overlapsClaimed reports whether [start,end) intersects any claimed span.
func overlapsClaimed(claimed [][2]int, start, end int) bool {
	for _, span := range claimed {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}
