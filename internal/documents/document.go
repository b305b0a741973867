// Package documents implements document intake and the routing state
// machine that turns a suggested routing into a human-confirmed one.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document is an intake record with its current routing.
type Document struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	UploadingDepartment string     `json:"uploading_department"`
	StorageKey          string     `json:"storage_key"`
	TextLength          int        `json:"text_length"`
	Routing             Routing    `json:"routing"`
	Version             int        `json:"version"`
	DeletedAt           *time.Time `json:"deleted_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	Intake              *Intake    `json:"intake,omitempty"`
}

// Deleted reports whether the document is soft-deleted.
func (d Document) Deleted() bool {
	return d.DeletedAt != nil
}

// CreateCommand carries extracted text and metadata for intake.
type CreateCommand struct {
	Title               string `json:"title"`
	UploadingDepartment string `json:"uploading_department"`
	Text                string `json:"text"`
}

// ConfirmCommand is a human decision on a suggested routing. Version, when
// set, must equal the version the caller observed.
type ConfirmCommand struct {
	Confirmed          bool    `json:"confirmed"`
	ModifiedDepartment *string `json:"modified_department,omitempty"`
	Note               string  `json:"note,omitempty"`
	Version            *int    `json:"version,omitempty"`
}

// ReopenCommand returns a confirmed routing to review.
type ReopenCommand struct {
	Reason  string `json:"reason"`
	Version *int   `json:"version,omitempty"`
}

// CommentCommand attaches a free-text remark to a document's history.
type CommentCommand struct {
	Text string `json:"text"`
}
