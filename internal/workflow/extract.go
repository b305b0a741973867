package workflow

import (
	"strings"
	"unicode"

	"github.com/savetree-1/docflow/internal/providers"
	"github.com/savetree-1/docflow/internal/taxonomy"
)

// FallbackReason explains a result built without any provider.
const FallbackReason = "Automatic analysis unavailable; routed to the uploading department for manual review."

const (
	maxSubjectChars = 120
	emptySummary    = "No text could be extracted from the document."
)

// extract builds the terminal result from the raw text alone.
func (o *Orchestrator) extract(req Request, text string) Result {
	summary := sentences(text, o.cfg.SummaryItems, o.cfg.SummaryChars)
	if len(summary) == 0 {
		summary = []string{emptySummary}
	}

	subject := strings.TrimSpace(req.Metadata.Title)
	if subject == "" {
		subject = firstLine(text)
	}
	if subject == "" {
		subject = "Untitled document"
	}

	department := strings.TrimSpace(req.Metadata.UploadingDepartment)
	if department == "" {
		department = string(taxonomy.GeneralAdministration)
	}

	return Result{
		Summary: summary,
		KeyDetails: providers.KeyDetails{
			Subject: providers.Truncate(subject, maxSubjectChars),
			Urgency: taxonomy.Medium,
		},
		Classification: providers.Classification{
			Category:   taxonomy.GeneralAdministration,
			Confidence: 0.0,
		},
		Routing: providers.Routing{
			PrimaryDepartment: department,
			CCDepartments:     []string{},
			Reason:            FallbackReason,
		},
	}
}

// sentences returns up to n leading sentences of text, each at most maxChars runes.
func sentences(text string, n, maxChars int) []string {
	out := make([]string, 0, n)
	var b strings.Builder

	flush := func() {
		s := strings.Join(strings.Fields(b.String()), " ")
		b.Reset()
		if s == "" {
			return
		}
		if len([]rune(s)) > maxChars {
			s = strings.TrimRightFunc(providers.Truncate(s, maxChars-1), unicode.IsSpace) + "…"
		}
		out = append(out, s)
	}

	runes := []rune(text)
	for i, r := range runes {
		if len(out) == n {
			return out
		}
		if r == '\n' && i+1 < len(runes) && runes[i+1] == '\n' {
			flush()
			continue
		}
		b.WriteRune(r)
		if (r == '.' || r == '!' || r == '?' || r == '।') && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			flush()
		}
	}
	if len(out) < n {
		flush()
	}
	return out
}

func firstLine(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
