// Package agent runs the focus-session orchestration pipeline:
// classify -> route -> specialist -> reflect, with a context fetch up
// front and a session record written at the end. One Run is one
// strictly sequential chain of blocking calls.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"focusbuddy/internal/memory"
	"focusbuddy/internal/planner"
	"focusbuddy/internal/provider"
	"focusbuddy/internal/search"

	"go.uber.org/zap"
)

// ErrMissingInput is returned when goal or duration is absent.
var ErrMissingInput = errors.New("please enter both a goal and duration")

// Request is one focus-session invocation.
type Request struct {
	Goal         string
	Duration     string
	AutoSchedule bool
}

// Message is one entry in the run transcript. The transcript is
// append-only for the lifetime of a run and never persisted directly.
type Message struct {
	Role    string
	Content string
}

// state is the transient per-run pipeline state.
type state struct {
	goal        string
	duration    string
	minutes     int
	messages    []Message
	taskType    planner.TaskType
	slots       []provider.FreeSlot
	tasks       []provider.TaskItem
	ctxSummary  string
	autoBooking bool
}

func (s *state) append(role, content string) {
	s.messages = append(s.messages, Message{Role: role, Content: content})
}

func (s *state) last() Message {
	return s.messages[len(s.messages)-1]
}

// Pipeline wires the generator, the context providers, the session
// store and the web searcher into the fixed run sequence.
type Pipeline struct {
	gen      *planner.Generator
	calendar *provider.Calendar
	tasks    *provider.Tasks
	store    *memory.SessionStore
	searcher search.Searcher
	horizon  int
	logger   *zap.Logger
}

// NewPipeline constructs a pipeline. The registry must carry both
// built-in providers; a missing one is a construction error, not a
// runtime dispatch surprise.
func NewPipeline(gen *planner.Generator, registry *provider.Registry, store *memory.SessionStore, searcher search.Searcher, horizonHours int, logger *zap.Logger) (*Pipeline, error) {
	calendar, ok := registry.Calendar()
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnknownProvider, provider.CalendarName)
	}
	tasks, ok := registry.Tasks()
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnknownProvider, provider.TasksName)
	}
	if horizonHours <= 0 {
		horizonHours = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		gen:      gen,
		calendar: calendar,
		tasks:    tasks,
		store:    store,
		searcher: searcher,
		horizon:  horizonHours,
		logger:   logger,
	}, nil
}

// Run executes one focus session end to end and returns the content
// of the last transcript message. Exactly one session record is
// written per successful run.
func (p *Pipeline) Run(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Goal) == "" || strings.TrimSpace(req.Duration) == "" {
		return "", ErrMissingInput
	}

	st := &state{
		goal:        req.Goal,
		duration:    req.Duration,
		minutes:     ParseDurationMinutes(req.Duration),
		autoBooking: req.AutoSchedule,
	}

	p.logger.Info("focus session started",
		zap.String("goal", st.goal),
		zap.String("duration", st.duration),
		zap.Int("minutes", st.minutes))

	if err := p.fetchContext(ctx, st); err != nil {
		return "", err
	}
	if err := p.classify(ctx, st); err != nil {
		return "", err
	}
	if err := p.runSpecialist(ctx, st); err != nil {
		return "", err
	}
	if err := p.reflect(ctx, st); err != nil {
		return "", err
	}

	return st.last().Content, nil
}

// fetchContext pulls free slots sized to the parsed duration plus the
// top tasks. Failures here are hard failures of the whole run.
func (p *Pipeline) fetchContext(ctx context.Context, st *state) error {
	slots, err := p.calendar.GetFreeSlots(ctx, st.minutes, p.horizon)
	if err != nil {
		return fmt.Errorf("context fetch failed: %w", err)
	}
	tasks, err := p.tasks.ListTopTasks(ctx, 3)
	if err != nil {
		return fmt.Errorf("context fetch failed: %w", err)
	}

	st.slots = slots
	st.tasks = tasks
	st.ctxSummary = summarizeContext(slots, tasks)

	p.logger.Debug("context fetched",
		zap.Int("slots", len(slots)),
		zap.Int("tasks", len(tasks)))
	return nil
}

// classify determines the goal category; absent or unknown labels
// already degrade to focus inside the generator.
func (p *Pipeline) classify(ctx context.Context, st *state) error {
	taskType, err := p.gen.Classify(ctx, st.goal)
	if err != nil {
		return err
	}
	st.taskType = taskType
	p.logger.Info("routing", zap.String("task_type", string(taskType)))
	return nil
}

// runSpecialist routes the closed category enum to its handler. Each
// handler appends exactly one transcript message.
func (p *Pipeline) runSpecialist(ctx context.Context, st *state) error {
	switch st.taskType {
	case planner.TaskResearch:
		return p.runResearcher(ctx, st)
	case planner.TaskMotivation:
		return p.runMotivator(ctx, st)
	case planner.TaskFocus:
		return p.runPlanner(ctx, st)
	default:
		// Unreachable: ParseTaskType collapses everything else.
		return p.runPlanner(ctx, st)
	}
}

func (p *Pipeline) runPlanner(ctx context.Context, st *state) error {
	req := planner.PlanRequest{
		Goal:            st.goal,
		Duration:        st.duration,
		Personalization: p.personalization(),
		ContextSummary:  st.ctxSummary,
	}

	text, err := p.gen.Plan(ctx, req)
	if err != nil {
		return err
	}

	if st.autoBooking && len(st.slots) > 0 {
		slot := st.slots[0]
		conf, err := p.calendar.AddEvent(ctx, "Focus: "+st.goal, slot.Start, slot.End)
		if err != nil {
			return fmt.Errorf("auto-schedule failed: %w", err)
		}
		if conf.OK {
			text += fmt.Sprintf("\n\nScheduled: %s on %s - %s.",
				conf.Added.Title,
				slot.Start.Format("2006-01-02 15:04"),
				slot.End.Format("15:04"))
			p.logger.Info("focus block scheduled", zap.Time("start", slot.Start))
		}
	}

	st.append("assistant", text)
	return nil
}

func (p *Pipeline) runResearcher(ctx context.Context, st *state) error {
	query := "focus and productivity strategies for " + st.goal
	searchContext, err := p.searcher.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	text, err := p.gen.ResearchSummary(ctx, st.goal, st.duration, searchContext)
	if err != nil {
		return err
	}
	st.append("assistant", text)
	return nil
}

func (p *Pipeline) runMotivator(ctx context.Context, st *state) error {
	text, err := p.gen.Motivate(ctx, st.goal)
	if err != nil {
		return err
	}
	st.append("assistant", text)
	return nil
}

// reflect always runs exactly once, whichever specialist ran. The
// refined output is appended and recorded before returning.
func (p *Pipeline) reflect(ctx context.Context, st *state) error {
	draft := st.last().Content

	history := p.store.Summary(3)
	if history == memory.EmptySummary {
		history = ""
	}

	reflection, err := p.gen.Reflect(ctx, draft, history, st.ctxSummary)
	if err != nil {
		return err
	}

	refined := draft + "\n\nReflection:\n" + reflection
	st.append("assistant", refined)

	if err := p.store.Record(memory.SessionRecord{
		Goal:     st.goal,
		Duration: st.duration,
		Plan:     refined,
	}); err != nil {
		return err
	}

	p.logger.Info("focus session recorded", zap.String("goal", st.goal))
	return nil
}

// personalization renders the average-focus aggregate and the recency
// window into prompt text. Empty when no history exists.
func (p *Pipeline) personalization() string {
	var parts []string

	if avg, n, err := p.store.Average(memory.FieldActualFocus); err == nil {
		parts = append(parts, fmt.Sprintf("Average focused minutes per session: %.0f (over %d sessions).", avg, n))
	}
	if summary := p.store.Summary(3); summary != memory.EmptySummary {
		parts = append(parts, "Recent sessions:\n"+summary)
	}

	return strings.Join(parts, "\n")
}

// RecordFeedback writes a feedback record. Feedback never mutates the
// originating plan record; it is always a new entry.
func (p *Pipeline) RecordFeedback(goal, duration, note string, actualFocus, fatigue *int, breaks int) error {
	if strings.TrimSpace(goal) == "" || strings.TrimSpace(duration) == "" {
		return ErrMissingInput
	}
	return p.store.Record(memory.SessionRecord{
		Goal:               goal,
		Duration:           duration,
		Plan:               note,
		ActualFocusMinutes: actualFocus,
		FatigueScore:       fatigue,
		BreaksTaken:        breaks,
	})
}

// summarizeContext renders slots and tasks for prompt injection.
func summarizeContext(slots []provider.FreeSlot, tasks []provider.TaskItem) string {
	var sb strings.Builder

	if len(slots) > 0 {
		sb.WriteString("Free slots:\n")
		for _, s := range slots {
			fmt.Fprintf(&sb, "- %s to %s\n", s.Start.Format("2006-01-02 15:04"), s.End.Format("15:04"))
		}
	}
	if len(tasks) > 0 {
		sb.WriteString("Top tasks:\n")
		for _, t := range tasks {
			mark := " "
			if t.Done {
				mark = "x"
			}
			fmt.Fprintf(&sb, "- [%s] %s", mark, t.Title)
			if t.Due != "" {
				fmt.Fprintf(&sb, " (due %s)", t.Due)
			}
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
