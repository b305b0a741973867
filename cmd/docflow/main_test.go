package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/savetree-1/docflow/internal/workflow"
)

const rulesJSON = `[
  {"name": "relief-desk", "department": "Disaster Management", "urgency": "high", "keywords": ["flood"], "assign_to": "relief.officer", "priority": 10},
  {"name": "registry", "department": "any", "assign_to": "registry.clerk"}
]`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClassifyOffline(t *testing.T) {
	dir := t.TempDir()
	flood := writeFile(t, dir, "ward-7.txt", "Flash flood in ward 7. Residents need relief supplies before Friday.")
	memo := writeFile(t, dir, "memo.txt", "Quarterly staff meeting moved to the second floor. Please bring the attendance sheet.")
	rules := writeFile(t, dir, "rules.json", rulesJSON)

	out, err := run(t, "classify", "--department", "Revenue", "--rules", rules, flood, memo)
	if err != nil {
		t.Fatalf("classify: %v\n%s", err, out)
	}

	var got []classifyOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}

	if got[0].Result.Provenance.ProviderUsed != workflow.HardRule {
		t.Errorf("flood provider = %s, want HardRule", got[0].Result.Provenance.ProviderUsed)
	}
	if got[0].Decision == nil || got[0].Decision.AssignTo != "relief.officer" {
		t.Errorf("flood decision = %+v", got[0].Decision)
	}

	if got[1].Result.Provenance.ProviderUsed != workflow.None {
		t.Errorf("memo provider = %s, want None", got[1].Result.Provenance.ProviderUsed)
	}
	if got[1].Result.Routing.PrimaryDepartment != "Revenue" {
		t.Errorf("memo department = %q", got[1].Result.Routing.PrimaryDepartment)
	}
	if got[1].Decision == nil || got[1].Decision.RuleName != "registry" {
		t.Errorf("memo decision = %+v", got[1].Decision)
	}
	for _, r := range got {
		if !r.Result.RequiresHumanApproval {
			t.Errorf("%s: approval not required", r.File)
		}
	}
}

func TestClassifyMissingFile(t *testing.T) {
	if _, err := run(t, "classify", filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRulesCheck(t *testing.T) {
	out, err := run(t, "rules", "check", "Cholera outbreak reported near the market")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, `"rule": "public-health-outbreak"`) {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, "rules", "check", "Request for new office chairs")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "no hard rule matched") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := run(t, "rules", "check"); err == nil {
		t.Error("expected error without text")
	}
}

func TestRulesList(t *testing.T) {
	out, err := run(t, "rules", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var rules []map[string]any
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(rules) == 0 || rules[0]["name"] != "disaster-emergency" {
		t.Errorf("first rule = %v", rules)
	}
}

func TestRulesResolve(t *testing.T) {
	rules := writeFile(t, t.TempDir(), "rules.json", rulesJSON)

	out, err := run(t, "rules", "resolve", "--rules", rules,
		"--department", "disaster management", "--category", "Disaster Management",
		"--urgency", "High", "--text", "Flood relief request")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, `"assign_to": "relief.officer"`) {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, "rules", "resolve", "--rules", rules, "--department", "Revenue")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, `"assign_to": "registry.clerk"`) {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := run(t, "rules", "resolve", "--rules", rules, "--urgency", "urgent"); err == nil {
		t.Error("expected error for unknown urgency")
	}
	if _, err := run(t, "rules", "resolve"); err == nil {
		t.Error("expected error without --rules")
	}
}
