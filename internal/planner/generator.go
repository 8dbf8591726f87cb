// Package planner wraps the text-generation capability behind the
// task-specific prompt templates. Every method is a single templated
// call; the pipeline in the agent package owns all sequencing.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"focusbuddy/internal/llm"

	"go.uber.org/zap"
)

// TaskType is the closed classification of a goal.
type TaskType string

const (
	TaskFocus      TaskType = "focus"
	TaskResearch   TaskType = "research"
	TaskMotivation TaskType = "motivation"
)

// ParseTaskType maps a label to a TaskType, defaulting to TaskFocus
// for anything absent or unknown.
func ParseTaskType(label string) TaskType {
	switch TaskType(strings.ToLower(strings.TrimSpace(label))) {
	case TaskResearch:
		return TaskResearch
	case TaskMotivation:
		return TaskMotivation
	default:
		return TaskFocus
	}
}

// Generator produces text for each pipeline role.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator creates a Generator on top of an LLM client.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// classification is the structured classifier response.
type classification struct {
	TaskType string `json:"task_type"`
}

// Classify determines the goal category via structured output.
// A malformed or unknown label degrades to TaskFocus; transport
// failures propagate as errors.
func (g *Generator) Classify(ctx context.Context, goal string) (TaskType, error) {
	schema := llm.EnumObjectSchema(
		"TaskClassifier",
		"task_type",
		"Classify the goal as 'focus', 'research', or 'motivation'.",
		string(TaskFocus), string(TaskResearch), string(TaskMotivation),
	)

	raw, err := g.client.CompleteStructured(ctx, classifierSystemPrompt, goal, schema)
	if err != nil {
		return TaskFocus, fmt.Errorf("classification failed: %w", err)
	}

	var result classification
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		g.logger.Warn("classifier returned malformed JSON, defaulting to focus",
			zap.String("raw", raw), zap.Error(err))
		return TaskFocus, nil
	}

	taskType := ParseTaskType(result.TaskType)
	g.logger.Debug("goal classified", zap.String("task_type", string(taskType)))
	return taskType, nil
}

// PlanRequest carries the context for a planning call.
type PlanRequest struct {
	Goal     string
	Duration string

	// Personalization is an optional summary of past behavior
	// (average focus minutes, recent sessions).
	Personalization string

	// ContextSummary is an optional rendering of fetched free slots
	// and top tasks.
	ContextSummary string
}

// Plan generates a structured focus plan.
func (g *Generator) Plan(ctx context.Context, req PlanRequest) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Goal: %s\nDuration: %s", req.Goal, req.Duration)
	if req.Personalization != "" {
		fmt.Fprintf(&sb, "\n\nWhat I know about this user:\n%s", req.Personalization)
	}
	if req.ContextSummary != "" {
		fmt.Fprintf(&sb, "\n\nCurrent schedule and task context:\n%s", req.ContextSummary)
	}

	out, err := g.client.CompleteWithSystem(ctx, plannerSystemPrompt, sb.String())
	if err != nil {
		return "", fmt.Errorf("plan generation failed: %w", err)
	}
	return out, nil
}

// ResearchSummary generates a plan grounded in retrieved web context.
func (g *Generator) ResearchSummary(ctx context.Context, goal, duration, searchContext string) (string, error) {
	prompt := fmt.Sprintf(researchTemplate, goal, duration, searchContext)
	out, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("research summary failed: %w", err)
	}
	return out, nil
}

// Motivate generates encouragement tailored to the goal.
func (g *Generator) Motivate(ctx context.Context, goal string) (string, error) {
	out, err := g.client.CompleteWithSystem(ctx, motivatorSystemPrompt, goal)
	if err != nil {
		return "", fmt.Errorf("motivation failed: %w", err)
	}
	return out, nil
}

// Reflect reviews a draft plan against history and context.
func (g *Generator) Reflect(ctx context.Context, draft, history, contextSummary string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Here is the current focus plan:\n\n")
	sb.WriteString(draft)
	if history != "" {
		fmt.Fprintf(&sb, "\n\nThe user's recent sessions:\n%s", history)
	}
	if contextSummary != "" {
		fmt.Fprintf(&sb, "\n\nSchedule and task context:\n%s", contextSummary)
	}

	out, err := g.client.CompleteWithSystem(ctx, reflectorSystemPrompt, sb.String())
	if err != nil {
		return "", fmt.Errorf("reflection failed: %w", err)
	}
	return out, nil
}
