package textproc

import (
	"regexp"
	"strings"
)

var (
	replyPrefixExpr = regexp.MustCompile(`(?i)^(re|fwd|fw|회신|전달)\s*:\s*`)
	bracketTagExpr  = regexp.MustCompile(`[\[(][^\])]*[\])]`)
	whitespaceExpr  = regexp.MustCompile(`\s+`)
)

// Deriver produces a short, boilerplate-free event label from normalized text.
type Deriver struct {
	actionTerms []string
	boilerplate []string
	scanLines   int
	minLen      int
	maxLen      int
	fallback    string
}

// NewDeriver wires the vocabulary tables and length bounds.
func NewDeriver(actionTerms, boilerplate []string, scanLines, minLen, maxLen int, fallback string) *Deriver {
	return &Deriver{
		actionTerms: lowerAll(actionTerms),
		boilerplate: boilerplate,
		scanLines:   scanLines,
		minLen:      minLen,
		maxLen:      maxLen,
		fallback:    fallback,
	}
}

// Derive scans the first lines of normalized text, body-derived lines before
// the subject, for a line carrying an action keyword. Falls back to a cleaned
// subject, then to the generic placeholder.
func (d *Deriver) Derive(subject, normalized string) string {
	trimmedSubject := strings.TrimSpace(subject)

	var candidates []string
	for _, line := range strings.Split(normalized, "\n") {
		if line == "" || line == trimmedSubject {
			continue
		}
		candidates = append(candidates, line)
	}
	if trimmedSubject != "" {
		candidates = append(candidates, trimmedSubject)
	}
	if len(candidates) > d.scanLines {
		candidates = candidates[:d.scanLines]
	}

	for _, line := range candidates {
		if !d.hasActionTerm(line) {
			continue
		}
		cleaned := d.clean(line)
		if length := len([]rune(cleaned)); length >= d.minLen && length <= d.maxLen {
			return cleaned
		}
	}

	if cleaned := d.clean(trimmedSubject); cleaned != "" {
		if runes := []rune(cleaned); len(runes) > d.maxLen {
			return strings.TrimSpace(string(runes[:d.maxLen]))
		}
		return cleaned
	}

	return d.fallback
}

func (d *Deriver) hasActionTerm(line string) bool {
	lowered := strings.ToLower(line)
	for _, term := range d.actionTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func (d *Deriver) clean(line string) string {
	for {
		stripped := replyPrefixExpr.ReplaceAllString(line, "")
		if stripped == line {
			break
		}
		line = stripped
	}

	line = bracketTagExpr.ReplaceAllString(line, " ")
	for _, phrase := range d.boilerplate {
		line = strings.ReplaceAll(line, phrase, " ")
	}
	line = whitespaceExpr.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

func lowerAll(values []string) []string {
	lowered := make([]string, len(values))
	for i, v := range values {
		lowered[i] = strings.ToLower(v)
	}
	return lowered
}
