// Package workflow runs the classification fallback chain: hard rules, the
// primary provider, the secondary provider, and local extraction.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/savetree-1/docflow/internal/hardrules"
	"github.com/savetree-1/docflow/internal/prompts"
	"github.com/savetree-1/docflow/internal/providers"
)

// PromptSource composes the system prompt for a stage.
type PromptSource interface {
	Compose(ctx context.Context, stage prompts.Stage) (string, error)
}

// Orchestrator classifies documents. It is safe for concurrent use and holds
// no per-document state.
type Orchestrator struct {
	cfg       Config
	primary   *Backend
	secondary *Backend
	rules     *hardrules.Matcher
	prompts   PromptSource
	logger    *slog.Logger
}

// New creates an Orchestrator. Either backend may be nil; rules may be nil
// when no hard-rule table is in use.
func New(
	cfg Config,
	primary, secondary *Backend,
	rules *hardrules.Matcher,
	prompts PromptSource,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		primary:   primary,
		secondary: secondary,
		rules:     rules,
		prompts:   prompts,
		logger:    logger.With("system", "workflow"),
	}
}

// Classify always returns a result. Provider failures are absorbed, and when
// the configured budget or ctx expires the best result computed so far is
// returned.
func (o *Orchestrator) Classify(ctx context.Context, req Request) Result {
	start := time.Now()

	if budget := o.cfg.BudgetDuration(); budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	text := providers.Truncate(req.Text, o.cfg.TextWindow)

	var (
		hit     *hardrules.Result
		matched bool
	)
	if o.rules != nil {
		hit, matched = o.rules.Match(text)
	}

	var (
		out      *providers.Output
		used     = None
		name     string
		attempts []Attempt
	)

	if !matched || o.cfg.InferWithHardRule() {
		preq := providers.Request{Text: text, Prompt: o.prompt(ctx, req)}

		if o.primary != nil {
			out, attempts = o.attempt(ctx, o.primary, PrimaryAI, preq, attempts)
			if out != nil {
				used, name = PrimaryAI, o.primary.Provider.Name()
			}
		}

		if out == nil && o.secondary != nil && ctx.Err() == nil {
			out, attempts = o.attempt(ctx, o.secondary, FallbackAI, preq, attempts)
			if out != nil {
				used, name = FallbackAI, o.secondary.Provider.Name()
			}
		}
	}

	var res Result
	if out != nil {
		res = fromOutput(out)
		if used == FallbackAI {
			res.Classification.Confidence = min(res.Classification.Confidence, o.cfg.SecondaryCeiling)
		}
	} else {
		res = o.extract(req, text)
	}

	if matched {
		applyHardRule(&res, hit)
		if len(attempts) == 0 {
			used = HardRule
			res.Classification.Confidence = 1.0
		}
	}

	res.RequiresHumanApproval = true
	res.QualityNote = o.qualityNote(res.Classification.Confidence)
	res.Provenance.ProviderUsed = used
	res.Provenance.ProviderName = name
	res.Provenance.Attempts = attempts
	res.Provenance.BudgetExhausted = ctx.Err() != nil
	res.Provenance.ProcessingTimeMs = time.Since(start).Milliseconds()

	o.logger.Info("document classified",
		"title", req.Metadata.Title,
		"provider_used", used,
		"provider", name,
		"hard_rule", res.Provenance.HardRule,
		"category", res.Classification.Category,
		"urgency", res.KeyDetails.Urgency,
		"confidence", res.Classification.Confidence,
		"attempts", len(attempts),
		"duration_ms", res.Provenance.ProcessingTimeMs,
	)

	return res
}

func (o *Orchestrator) attempt(
	ctx context.Context,
	b *Backend,
	role ProviderUsed,
	req providers.Request,
	attempts []Attempt,
) (*providers.Output, []Attempt) {
	for try := 0; try <= b.Retries; try++ {
		if ctx.Err() != nil {
			break
		}

		began := time.Now()
		out, err := o.call(ctx, b, req)
		var kind error
		if err != nil {
			kind = providers.KindOf(err)
		}

		attempts = append(attempts, Attempt{
			Provider:   b.Provider.Name(),
			Role:       role,
			Outcome:    providers.KindName(kind),
			DurationMs: time.Since(began).Milliseconds(),
		})

		if err == nil {
			return out, attempts
		}

		o.logger.Warn("provider failed",
			"provider", b.Provider.Name(),
			"role", role,
			"kind", providers.KindName(kind),
			"try", try+1,
			"error", err,
		)

		if !providers.Retryable(kind) {
			break
		}
	}
	return nil, attempts
}

type callResult struct {
	out *providers.Output
	err error
}

// call runs one provider request bounded by the smaller of the backend
// timeout and the remaining budget. A result arriving after the bound is
// dropped; the buffered channel lets the provider goroutine finish without
// a receiver.
func (o *Orchestrator) call(ctx context.Context, b *Backend, req providers.Request) (*providers.Output, error) {
	timeout := b.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, providers.Fail(b.Provider.Name(), providers.ErrTimeout, context.DeadlineExceeded)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				done <- callResult{err: providers.Fail(b.Provider.Name(), providers.ErrNetwork, fmt.Errorf("panic: %v", v))}
			}
		}()
		out, err := b.Provider.Classify(callCtx, req)
		if err == nil && out == nil {
			err = providers.Fail(b.Provider.Name(), providers.ErrMalformedResponse, fmt.Errorf("empty output"))
		}
		done <- callResult{out: out, err: err}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-callCtx.Done():
		return nil, providers.Fail(b.Provider.Name(), providers.ErrTimeout, callCtx.Err())
	}
}

func (o *Orchestrator) prompt(ctx context.Context, req Request) string {
	stage := req.Stage
	if stage == "" {
		stage = prompts.StageClassify
	}

	var (
		text string
		err  error
	)
	if o.prompts != nil {
		text, err = o.prompts.Compose(ctx, stage)
	}
	if o.prompts == nil || err != nil {
		if err != nil {
			o.logger.Warn("prompt source failed, using defaults", "stage", stage, "error", err)
		}
		text, _ = prompts.Defaults{}.Compose(ctx, stage)
	}

	if req.Metadata.Title != "" || req.Metadata.UploadingDepartment != "" {
		text += fmt.Sprintf("\n\nDocument title: %s\nUploaded by department: %s",
			req.Metadata.Title, req.Metadata.UploadingDepartment)
	}

	if stage == prompts.StageReanalyze && req.Previous != nil {
		prev, _ := json.Marshal(struct {
			Summary        []string                 `json:"summary"`
			KeyDetails     providers.KeyDetails     `json:"key_details"`
			Classification providers.Classification `json:"classification"`
			Routing        providers.Routing        `json:"routing"`
		}{req.Previous.Summary, req.Previous.KeyDetails, req.Previous.Classification, req.Previous.Routing})
		text += "\n\nPrevious analysis:\n" + string(prev)
	}

	return text
}

func (o *Orchestrator) qualityNote(confidence float64) string {
	if confidence >= o.cfg.HighConfidence {
		return NoteHighConfidence
	}
	return NoteLowConfidence
}

func fromOutput(out *providers.Output) Result {
	return Result{
		Summary:        out.Summary,
		KeyDetails:     out.KeyDetails,
		Classification: out.Class,
		Routing:        out.Routing,
	}
}

// applyHardRule overwrites category, primary department, urgency, and reason.
func applyHardRule(res *Result, hit *hardrules.Result) {
	res.Classification.Category = hit.Category
	res.KeyDetails.Urgency = hit.Urgency
	res.Routing.PrimaryDepartment = hit.Department
	res.Routing.Reason = hit.Reason

	cc := make([]string, 0, len(res.Routing.CCDepartments))
	for _, d := range res.Routing.CCDepartments {
		if d != hit.Department {
			cc = append(cc, d)
		}
	}
	res.Routing.CCDepartments = cc

	res.Provenance.HardRuleApplied = true
	res.Provenance.HardRule = hit.Rule
	res.Provenance.HardRuleKeyword = hit.Keyword
}
