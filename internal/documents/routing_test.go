package documents_test

import (
	"errors"
	"testing"
	"time"

	"github.com/savetree-1/docflow/internal/documents"
)

func suggestion() documents.Suggestion {
	return documents.Suggestion{
		Category:      "Finance",
		Urgency:       "Medium",
		Department:    "Finance",
		CCDepartments: []string{"Revenue", "Finance", "Revenue"},
		Confidence:    0.8,
		Reason:        "Budget request",
	}
}

func suggested(t *testing.T) documents.Routing {
	t.Helper()
	r, err := documents.Routing{State: documents.StateUnclassified}.Suggest(suggestion())
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}
	return r
}

func TestSuggest(t *testing.T) {
	r := suggested(t)

	if r.State != documents.StateSuggested {
		t.Errorf("State = %q", r.State)
	}
	if r.SuggestedDepartment != "Finance" || r.RoutingConfidence != 0.8 || r.RoutingReason != "Budget request" {
		t.Errorf("routing = %+v", r)
	}
	if len(r.CCDepartments) != 1 || r.CCDepartments[0] != "Revenue" {
		t.Errorf("CCDepartments = %v, want [Revenue]", r.CCDepartments)
	}
	if r.Confirmed {
		t.Error("Confirmed = true after Suggest")
	}

	again, err := r.Suggest(documents.Suggestion{Department: "Health", Confidence: 0.4})
	if err != nil {
		t.Fatalf("re-Suggest() error: %v", err)
	}
	if again.SuggestedDepartment != "Health" {
		t.Errorf("SuggestedDepartment = %q after re-analysis", again.SuggestedDepartment)
	}

	if _, err := r.Suggest(documents.Suggestion{}); !errors.Is(err, documents.ErrInvalidCommand) {
		t.Errorf("empty suggestion error = %v, want ErrInvalidCommand", err)
	}
}

func TestConfirm(t *testing.T) {
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	t.Run("as suggested", func(t *testing.T) {
		r, overridden, err := suggested(t).Confirm("", "asha", at)
		if err != nil {
			t.Fatalf("Confirm() error: %v", err)
		}
		if overridden {
			t.Error("overridden = true")
		}
		if r.State != documents.StateConfirmed || !r.Confirmed {
			t.Errorf("routing = %+v", r)
		}
		if *r.ConfirmedDepartment != "Finance" || *r.ConfirmedBy != "asha" || !r.ConfirmedAt.Equal(at) {
			t.Errorf("confirmation = %v %v %v", *r.ConfirmedDepartment, *r.ConfirmedBy, r.ConfirmedAt)
		}
	})

	t.Run("same department is not an override", func(t *testing.T) {
		_, overridden, err := suggested(t).Confirm(" Finance ", "asha", at)
		if err != nil || overridden {
			t.Errorf("overridden = %v, err = %v", overridden, err)
		}
	})

	t.Run("override keeps suggestion", func(t *testing.T) {
		r, overridden, err := suggested(t).Confirm("Revenue", "asha", at)
		if err != nil {
			t.Fatalf("Confirm() error: %v", err)
		}
		if !overridden {
			t.Error("overridden = false")
		}
		if r.SuggestedDepartment != "Finance" || *r.ConfirmedDepartment != "Revenue" {
			t.Errorf("suggested %q confirmed %q", r.SuggestedDepartment, *r.ConfirmedDepartment)
		}
	})

	t.Run("requires actor", func(t *testing.T) {
		if _, _, err := suggested(t).Confirm("", " ", at); !errors.Is(err, documents.ErrInvalidCommand) {
			t.Errorf("error = %v, want ErrInvalidCommand", err)
		}
	})
}

func TestTransitionsNeverSkipSuggested(t *testing.T) {
	at := time.Now()
	unclassified := documents.Routing{State: documents.StateUnclassified}

	if _, _, err := unclassified.Confirm("Finance", "asha", at); !errors.Is(err, documents.ErrInvalidTransition) {
		t.Errorf("confirm unclassified error = %v, want ErrInvalidTransition", err)
	}
	if _, err := unclassified.Reopen(); !errors.Is(err, documents.ErrInvalidTransition) {
		t.Errorf("reopen unclassified error = %v, want ErrInvalidTransition", err)
	}
	if _, err := suggested(t).Reopen(); !errors.Is(err, documents.ErrInvalidTransition) {
		t.Errorf("reopen suggested error = %v, want ErrInvalidTransition", err)
	}

	confirmed, _, err := suggested(t).Confirm("", "asha", at)
	if err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}
	if _, _, err := confirmed.Confirm("", "ravi", at); !errors.Is(err, documents.ErrInvalidTransition) {
		t.Errorf("second confirm error = %v, want ErrInvalidTransition", err)
	}
	if _, err := confirmed.Suggest(suggestion()); !errors.Is(err, documents.ErrInvalidTransition) {
		t.Errorf("classify confirmed error = %v, want ErrInvalidTransition", err)
	}
}

func TestReopen(t *testing.T) {
	confirmed, _, err := suggested(t).Confirm("Revenue", "asha", time.Now())
	if err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}

	r, err := confirmed.Reopen()
	if err != nil {
		t.Fatalf("Reopen() error: %v", err)
	}
	if r.State != documents.StateSuggested || r.Confirmed {
		t.Errorf("routing = %+v", r)
	}
	if r.ConfirmedDepartment != nil || r.ConfirmedBy != nil || r.ConfirmedAt != nil {
		t.Error("confirmation fields not cleared")
	}
	if r.SuggestedDepartment != "Finance" {
		t.Errorf("SuggestedDepartment = %q, want suggestion kept", r.SuggestedDepartment)
	}

	if _, _, err := r.Confirm("", "ravi", time.Now()); err != nil {
		t.Errorf("confirm after reopen error: %v", err)
	}
}

func TestCheckVersion(t *testing.T) {
	v := func(n int) *int { return &n }

	if err := documents.CheckVersion(nil, 4); err != nil {
		t.Errorf("nil expected error = %v", err)
	}
	if err := documents.CheckVersion(v(4), 4); err != nil {
		t.Errorf("matching version error = %v", err)
	}
	if err := documents.CheckVersion(v(3), 4); !errors.Is(err, documents.ErrStaleState) {
		t.Errorf("stale version error = %v, want ErrStaleState", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{documents.ErrNotFound, 404},
		{documents.ErrDeleted, 410},
		{documents.ErrStaleState, 409},
		{documents.ErrInvalidTransition, 409},
		{documents.ErrInvalidCommand, 400},
		{documents.ErrForbidden, 403},
		{documents.ErrTextTooLarge, 413},
		{errors.New("boom"), 500},
	}

	for _, tt := range tests {
		if got := documents.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
