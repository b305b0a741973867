// Package classifications stores classification runs and drives a document
// from intake text to a suggested routing. Every run is kept; a new run
// supersedes the previous one for the same document.
package classifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/routingrules"
	"github.com/savetree-1/docflow/internal/workflow"
)

// Classification is one stored classification run. The scalar fields mirror
// the indexed columns; Result holds the full orchestrator output.
type Classification struct {
	ID                uuid.UUID              `json:"id"`
	DocumentID        uuid.UUID              `json:"document_id"`
	Category          string                 `json:"category"`
	Urgency           string                 `json:"urgency"`
	Confidence        float64                `json:"confidence"`
	PrimaryDepartment string                 `json:"primary_department"`
	ProviderUsed      string                 `json:"provider_used"`
	HardRuleApplied   bool                   `json:"hard_rule_applied"`
	Result            workflow.Result        `json:"result"`
	Decision          *routingrules.Decision `json:"routing_decision"`
	RequestedBy       string                 `json:"requested_by"`
	ClassifiedAt      time.Time              `json:"classified_at"`
	SupersededAt      *time.Time             `json:"superseded_at,omitempty"`
}

// Current reports whether c is the latest run for its document.
func (c Classification) Current() bool {
	return c.SupersededAt == nil
}

// BatchRequest lists documents to classify in one call.
type BatchRequest struct {
	DocumentIDs []uuid.UUID `json:"document_ids"`
}

// BatchResult reports the outcome for a single document within a batch.
// On success, Classification is populated and Error is empty.
type BatchResult struct {
	DocumentID     uuid.UUID       `json:"document_id"`
	Classification *Classification `json:"classification,omitempty"`
	Error          string          `json:"error,omitempty"`
}
