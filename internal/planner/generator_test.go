package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"focusbuddy/internal/llm"
)

// fakeClient is a scripted llm.Client for generator tests.
type fakeClient struct {
	structured string
	completion string
	err        error

	lastSystem string
	lastUser   string
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.lastUser = prompt
	return f.completion, f.err
}

func (f *fakeClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	return f.completion, f.err
}

func (f *fakeClient) CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, schema llm.StructuredSchema) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	return f.structured, f.err
}

func TestParseTaskType(t *testing.T) {
	tests := []struct {
		label string
		want  TaskType
	}{
		{"focus", TaskFocus},
		{"research", TaskResearch},
		{"motivation", TaskMotivation},
		{" Research ", TaskResearch},
		{"MOTIVATION", TaskMotivation},
		{"", TaskFocus},
		{"banana", TaskFocus},
	}
	for _, tt := range tests {
		if got := ParseTaskType(tt.label); got != tt.want {
			t.Errorf("ParseTaskType(%q) = %s, want %s", tt.label, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	fake := &fakeClient{structured: `{"task_type":"research"}`}
	g := NewGenerator(fake, nil)

	got, err := g.Classify(context.Background(), "learn about deep work")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got != TaskResearch {
		t.Errorf("expected research, got %s", got)
	}
	if fake.lastUser != "learn about deep work" {
		t.Errorf("goal not passed through: %q", fake.lastUser)
	}
}

func TestClassifyMalformedDefaultsToFocus(t *testing.T) {
	fake := &fakeClient{structured: "not json"}
	g := NewGenerator(fake, nil)

	got, err := g.Classify(context.Background(), "whatever")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got != TaskFocus {
		t.Errorf("expected focus default, got %s", got)
	}
}

func TestClassifyTransportErrorPropagates(t *testing.T) {
	fake := &fakeClient{err: errors.New("unavailable")}
	g := NewGenerator(fake, nil)

	if _, err := g.Classify(context.Background(), "goal"); err == nil {
		t.Error("expected transport error to propagate")
	}
}

func TestPlanIncludesContext(t *testing.T) {
	fake := &fakeClient{completion: "the plan"}
	g := NewGenerator(fake, nil)

	out, err := g.Plan(context.Background(), PlanRequest{
		Goal:            "Write report",
		Duration:        "2 hours",
		Personalization: "Average focus: 50 minutes",
		ContextSummary:  "Free slot: 09:00-11:00",
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if out != "the plan" {
		t.Errorf("unexpected output: %q", out)
	}

	for _, want := range []string{"Goal: Write report", "Duration: 2 hours", "Average focus: 50 minutes", "Free slot: 09:00-11:00"} {
		if !strings.Contains(fake.lastUser, want) {
			t.Errorf("prompt missing %q:\n%s", want, fake.lastUser)
		}
	}
}

func TestResearchSummaryTemplate(t *testing.T) {
	fake := &fakeClient{completion: "### Strategy Summary\n..."}
	g := NewGenerator(fake, nil)

	_, err := g.ResearchSummary(context.Background(), "learn Go", "1 hour", "snippet text")
	if err != nil {
		t.Fatalf("ResearchSummary failed: %v", err)
	}
	for _, want := range []string{"Task: learn Go", "Duration: 1 hour", "snippet text", "### Strategy Summary"} {
		if !strings.Contains(fake.lastUser, want) {
			t.Errorf("research prompt missing %q", want)
		}
	}
}

func TestGenerationErrorsPropagate(t *testing.T) {
	fake := &fakeClient{err: errors.New("boom")}
	g := NewGenerator(fake, nil)

	if _, err := g.Plan(context.Background(), PlanRequest{Goal: "g", Duration: "1h"}); err == nil {
		t.Error("Plan should propagate errors")
	}
	if _, err := g.Motivate(context.Background(), "g"); err == nil {
		t.Error("Motivate should propagate errors")
	}
	if _, err := g.Reflect(context.Background(), "draft", "", ""); err == nil {
		t.Error("Reflect should propagate errors")
	}
}
