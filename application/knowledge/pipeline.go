package knowledge

import "strings"

// Normalize strips leading and trailing whitespace on every line and
// collapses the content to a canonical newline-terminated form.
func Normalize(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// DedupeTaxonomy drops duplicate taxonomy tokens, preserving the first
// occurrence of each.
func DedupeTaxonomy(taxonomy []string) []string {
	if len(taxonomy) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(taxonomy))
	out := make([]string, 0, len(taxonomy))
	for _, token := range taxonomy {
		if seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out
}

// Summarize derives a deterministic summary: the first SummaryLength
// runes of the single-line projection of normalized content, marked with
// an ellipsis when truncated.
func Summarize(normalized string) string {
	single := strings.Join(strings.Fields(normalized), " ")
	runes := []rune(single)
	if len(runes) <= SummaryLength {
		return single
	}
	return string(runes[:SummaryLength]) + "…"
}
