package textproc

import (
	"regexp"
	"strings"
)

var (
	replyBoundaryExpr = regexp.MustCompile(`^On .+ wrote:`)
	headerEchoExpr    = regexp.MustCompile(`^(From|To|Cc|Subject|Sent|Date|보낸 사람|받는 사람|제목|보낸 날짜)\s*:`)
)

// Normalizer strips quoting and header noise from raw message text.
// Deterministic and side-effect-free.
type Normalizer struct{}

// NewNormalizer returns a ready normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize joins subject, snippet and body, then drops blank lines, quoted
// reply boundaries, mail header echoes and quoted lines. Remaining lines are
// rejoined in order.
func (n *Normalizer) Normalize(subject, snippet, body string) string {
	joined := strings.Join([]string{subject, snippet, body}, "\n")

	var kept []string
	for _, line := range strings.Split(joined, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		if replyBoundaryExpr.MatchString(trimmed) {
			continue
		}
		if strings.Contains(trimmed, "님이 작성") {
			continue
		}
		if headerEchoExpr.MatchString(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}

	return strings.Join(kept, "\n")
}
