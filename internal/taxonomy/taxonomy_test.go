package taxonomy_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/savetree-1/docflow/internal/taxonomy"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  taxonomy.Category
		err   error
	}{
		{"canonical", "Disaster Management", taxonomy.DisasterManagement, nil},
		{"lowercase", "finance", taxonomy.Finance, nil},
		{"extra whitespace", "  law   and order ", taxonomy.LawAndOrder, nil},
		{"unknown", "Sports", "", taxonomy.ErrInvalidCategory},
		{"empty", "", "", taxonomy.ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := taxonomy.ParseCategory(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategoriesCount(t *testing.T) {
	if got := len(taxonomy.Categories()); got != 8 {
		t.Errorf("len(Categories()) = %d, want 8", got)
	}
}

func TestUrgencyUnmarshalJSON(t *testing.T) {
	var u taxonomy.Urgency
	if err := json.Unmarshal([]byte(`"HIGH"`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u != taxonomy.High {
		t.Errorf("got %q, want %q", u, taxonomy.High)
	}

	if err := json.Unmarshal([]byte(`"urgent"`), &u); !errors.Is(err, taxonomy.ErrInvalidUrgency) {
		t.Errorf("err = %v, want ErrInvalidUrgency", err)
	}
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"", taxonomy.Any, true},
		{"ANY", taxonomy.Any, true},
		{"finance", string(taxonomy.Finance), true},
		{"nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := taxonomy.ParseCondition(tt.input, taxonomy.ParseCategory)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v, ok want %v", err, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchCondition(t *testing.T) {
	if !taxonomy.MatchCondition(taxonomy.Any, "High") {
		t.Error("any should match")
	}
	if !taxonomy.MatchCondition("high", "High") {
		t.Error("match should be case-insensitive")
	}
	if taxonomy.MatchCondition("Low", "High") {
		t.Error("Low should not match High")
	}
}
