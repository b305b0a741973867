package workflow

import (
	"time"

	"github.com/savetree-1/docflow/internal/prompts"
	"github.com/savetree-1/docflow/internal/providers"
)

// ProviderUsed records which path produced a classification.
type ProviderUsed string

const (
	PrimaryAI  ProviderUsed = "PrimaryAI"
	FallbackAI ProviderUsed = "FallbackAI"
	HardRule   ProviderUsed = "HardRule"
	None       ProviderUsed = "None"
)

// Quality notes attached to every result.
const (
	NoteHighConfidence = "High confidence"
	NoteLowConfidence  = "Low confidence — manual review strongly recommended."
)

// Metadata describes the document being classified.
type Metadata struct {
	Title               string `json:"title"`
	UploadingDepartment string `json:"uploading_department"`
}

// Request is the input to one classification run.
type Request struct {
	Text     string
	Metadata Metadata
	// Stage selects the prompt; the zero value means StageClassify.
	Stage prompts.Stage
	// Previous is the superseded result offered as context on re-analysis.
	Previous *Result
}

// Result is a classification outcome. RequiresHumanApproval is always true.
type Result struct {
	Summary               []string                 `json:"summary"`
	KeyDetails            providers.KeyDetails     `json:"key_details"`
	Classification        providers.Classification `json:"classification"`
	Routing               providers.Routing        `json:"routing"`
	Provenance            Provenance               `json:"provenance"`
	RequiresHumanApproval bool                     `json:"requires_human_approval"`
	QualityNote           string                   `json:"quality_note"`
}

// Provenance explains how a result was produced.
type Provenance struct {
	ProviderUsed     ProviderUsed `json:"provider_used"`
	ProviderName     string       `json:"provider_name,omitempty"`
	HardRuleApplied  bool         `json:"hard_rule_applied"`
	HardRule         string       `json:"hard_rule,omitempty"`
	HardRuleKeyword  string       `json:"hard_rule_keyword,omitempty"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
	BudgetExhausted  bool         `json:"budget_exhausted"`
	Attempts         []Attempt    `json:"attempts"`
}

// Attempt records one provider call.
type Attempt struct {
	Provider   string       `json:"provider"`
	Role       ProviderUsed `json:"role"`
	Outcome    string       `json:"outcome"`
	DurationMs int64        `json:"duration_ms"`
}

// Backend pairs a provider with its call policy.
type Backend struct {
	Provider providers.Provider
	Timeout  time.Duration
	Retries  int
}
