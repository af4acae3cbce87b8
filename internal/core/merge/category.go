package merge

import "strings"

// NormalizeEventCategory maps arbitrary source category labels to the stable
// buckets published downstream. The free-form label from the source is kept
// as-is; this only feeds the derived "category_normalized" field.
func NormalizeEventCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "cd" || s == "community day":
		return "CD"
	case s == "cd classic" || s == "community day classic":
		return "CD Classic"
	case strings.Contains(s, "shadow raid"):
		return "Shadow Raid"
	case strings.Contains(s, "spotlight"):
		return "Spotlight"
	case strings.Contains(s, "research"):
		return "Research"
	case strings.Contains(s, "mega"):
		return "Mega"
	case strings.Contains(s, "raid"):
		return "Raid"
	case strings.Contains(s, "event") || strings.Contains(s, "news"):
		return "Event/News"
	default:
		return "Other"
	}
}
