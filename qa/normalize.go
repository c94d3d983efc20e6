package qa

import "strings"

// NormalizeQuery turns raw model output into candidate query text: it drops
// a surrounding markdown fence and a leading bare "cypher" language tag.
// The result may be empty.
func NormalizeQuery(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			tag := strings.TrimSpace(text[:nl])
			if tag == "" || isLanguageTag(tag) {
				text = text[nl+1:]
			}
		} else if isLanguageTag(strings.TrimSpace(text)) {
			text = ""
		}
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		if isLanguageTag(strings.TrimSpace(text[:nl])) {
			text = text[nl+1:]
		}
	} else if isLanguageTag(text) {
		text = ""
	}

	return strings.TrimSpace(text)
}

func isLanguageTag(s string) bool {
	return strings.EqualFold(s, "cypher")
}
