package promptstyle

import "strings"

const marker = "ROADMAP_PROMPT_STYLE_V1"

// ApplySystem prepends the shared house-style block to a system prompt.
// Prompts that already carry the block are returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou are an expert learning coach who designs practical study plans.")
	if summary := firstLine(base); summary != "" {
		b.WriteString("\nTask summary: " + summary)
	}
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nPrefer concrete, actionable steps over general advice.")
	b.WriteString("\nDo not invent URLs; name resources so a learner can search for them.")
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "json":
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
	case "markdown":
		b.WriteString("\nFormat the answer as concise Markdown.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
