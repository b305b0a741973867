package classifications

import (
	"github.com/savetree-1/docflow/internal/documents"
	"github.com/savetree-1/docflow/internal/prompts"
	"github.com/savetree-1/docflow/internal/routingrules"
	"github.com/savetree-1/docflow/internal/workflow"
)

// NewRequest builds the orchestrator input for doc. A previous result turns
// the run into a re-analysis.
func NewRequest(doc *documents.Document, text string, previous *workflow.Result) workflow.Request {
	req := workflow.Request{
		Text: text,
		Metadata: workflow.Metadata{
			Title:               doc.Title,
			UploadingDepartment: doc.UploadingDepartment,
		},
		Stage: prompts.StageClassify,
	}
	if previous != nil {
		req.Stage = prompts.StageReanalyze
		req.Previous = previous
	}
	return req
}

// Attributes describes a classified document for routing rule resolution.
// Keywords are drawn from the subject, the summary, and the text itself.
func Attributes(res workflow.Result, text string) routingrules.Attributes {
	texts := make([]string, 0, len(res.Summary)+2)
	texts = append(texts, res.KeyDetails.Subject)
	texts = append(texts, res.Summary...)
	texts = append(texts, text)

	return routingrules.Attributes{
		Department: res.Routing.PrimaryDepartment,
		Category:   res.Classification.Category,
		Urgency:    res.KeyDetails.Urgency,
		Keywords:   routingrules.Terms(texts...),
	}
}

// Suggestion converts a result and an optional rule decision into the
// routing suggestion stored on the document.
func Suggestion(res workflow.Result, decision *routingrules.Decision) documents.Suggestion {
	s := documents.Suggestion{
		Category:      string(res.Classification.Category),
		Urgency:       string(res.KeyDetails.Urgency),
		Department:    res.Routing.PrimaryDepartment,
		CCDepartments: res.Routing.CCDepartments,
		Confidence:    res.Classification.Confidence,
		Reason:        res.Routing.Reason,
	}
	if decision != nil {
		assignee := decision.AssignTo
		rule := decision.RuleName
		s.Assignee = &assignee
		s.MatchedRule = &rule
	}
	return s
}
