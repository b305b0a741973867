package documents

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/auth"
)

// Intake reports what happened to a document right after it was accepted.
type Intake struct {
	AutoClassify bool   `json:"auto_classify"`
	Error        string `json:"error,omitempty"`
}

// Classifier runs classification for one stored document on behalf of actor.
type Classifier func(ctx context.Context, id uuid.UUID, actor auth.Actor) error

type intake struct {
	System
	classify Classifier
	enabled  bool
	logger   *slog.Logger
}

// WithIntake returns sys with Create followed by an automated classification
// run under the System actor. The document is accepted even when that run
// fails; the failure is reported in Document.Intake.
func WithIntake(sys System, classify Classifier, enabled bool, logger *slog.Logger) System {
	return &intake{
		System:   sys,
		classify: classify,
		enabled:  enabled && classify != nil,
		logger:   logger.With("system", "intake"),
	}
}

func (s *intake) Handler() *Handler {
	h := *s.System.Handler()
	h.sys = s
	return &h
}

func (s *intake) Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Document, error) {
	doc, err := s.System.Create(ctx, actor, cmd)
	if err != nil {
		return nil, err
	}

	report := &Intake{AutoClassify: s.enabled}
	doc.Intake = report
	if !s.enabled {
		return doc, nil
	}

	if err := s.classify(ctx, doc.ID, auth.System); err != nil {
		s.logger.Warn("intake classification failed", "id", doc.ID, "error", err)
		report.Error = err.Error()
		return doc, nil
	}

	current, err := s.System.Find(ctx, doc.ID)
	if err != nil {
		report.Error = err.Error()
		return doc, nil
	}
	current.Intake = report
	return current, nil
}
