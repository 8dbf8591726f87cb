package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"focusbuddy/internal/agent"
	"focusbuddy/internal/config"
	"focusbuddy/internal/llm"
	"focusbuddy/internal/memory"
	"focusbuddy/internal/planner"
	"focusbuddy/internal/provider"
	"focusbuddy/internal/search"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	timeout time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "focusbuddy",
	Short: "Focus Buddy - personal focus and productivity assistant",
	Long: `Focus Buddy plans focused work sessions around your calendar,
tasks, and past session history.

Give it a goal and a duration and it classifies the request, runs the
matching specialist (planner, researcher, or motivator), reflects on
the draft, and records the session for future personalization.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// planCmd runs the full planning pipeline for one session
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a focus session for a goal and duration",
	Long: `Runs the full pipeline: classify the goal, gather calendar and
task context, run the matching specialist, reflect, and record.

Examples:
  focusbuddy plan --goal "Finish data analysis report" --duration "2 hours"
  focusbuddy plan --goal "Write thesis chapter" --duration "90 min" --auto-schedule`,
	RunE: runPlan,
}

// feedbackCmd records post-session feedback
var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record how a focus session actually went",
	Long: `Stores actual focused minutes, a fatigue score, and breaks taken
alongside the session goal. Feedback feeds the personalization used by
future plans.

Example:
  focusbuddy feedback --goal "Finish report" --duration "2 hours" --focus-minutes 50 --fatigue 4 --breaks 2`,
	RunE: runFeedback,
}

// historyCmd lists recent sessions
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent focus sessions",
	RunE:  runHistory,
}

// statsCmd shows aggregates over recorded feedback
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show averages over recorded session feedback",
	RunE:  runStats,
}

// tasksCmd groups task-list operations
var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and update the task list",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List top tasks (incomplete first, earliest due first)",
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksAdd,
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete [id]",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksComplete,
}

// providersCmd lists the registered context providers
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered context providers and their operations",
	RunE:  runProviders,
}

// calendarCmd groups calendar operations
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Inspect free slots and add events",
}

var calendarSlotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show free slots for a session duration",
	RunE:  runCalendarSlots,
}

var calendarAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a calendar event",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarAdd,
}

var (
	planGoal     string
	planDuration string
	autoSchedule bool

	feedbackGoal     string
	feedbackDuration string
	feedbackNote     string
	focusMinutes     int
	fatigueScore     int
	breaksTaken      int

	historyCount int

	taskDue string

	slotDuration  string
	eventStart    string
	eventDuration string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	planCmd.Flags().StringVar(&planGoal, "goal", "", "Session goal (required)")
	planCmd.Flags().StringVar(&planDuration, "duration", "", "Session duration, e.g. \"2 hours\" or \"90 min\" (required)")
	planCmd.Flags().BoolVar(&autoSchedule, "auto-schedule", false, "Book the first free slot on the calendar")
	planCmd.MarkFlagRequired("goal")
	planCmd.MarkFlagRequired("duration")

	feedbackCmd.Flags().StringVar(&feedbackGoal, "goal", "", "Goal of the session the feedback is about (required)")
	feedbackCmd.Flags().StringVar(&feedbackDuration, "duration", "", "Planned duration of that session (required)")
	feedbackCmd.Flags().StringVar(&feedbackNote, "note", "", "Free-form note about how it went")
	feedbackCmd.Flags().IntVar(&focusMinutes, "focus-minutes", -1, "Minutes actually spent focused")
	feedbackCmd.Flags().IntVar(&fatigueScore, "fatigue", -1, "Fatigue score, 1 (fresh) to 5 (exhausted)")
	feedbackCmd.Flags().IntVar(&breaksTaken, "breaks", 0, "Breaks taken during the session")
	feedbackCmd.MarkFlagRequired("goal")
	feedbackCmd.MarkFlagRequired("duration")

	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 5, "Number of sessions to show")

	tasksAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date, YYYY-MM-DD")
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)

	calendarSlotsCmd.Flags().StringVar(&slotDuration, "duration", "1 hour", "Session duration to fit")
	calendarAddCmd.Flags().StringVar(&eventStart, "start", "", "Start time, RFC 3339 or \"2006-01-02 15:04\" (required)")
	calendarAddCmd.Flags().StringVar(&eventDuration, "duration", "1 hour", "Event duration")
	calendarAddCmd.MarkFlagRequired("start")
	calendarCmd.AddCommand(calendarSlotsCmd)
	calendarCmd.AddCommand(calendarAddCmd)

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildPipeline wires the full stack from config. Every command that
// talks to the LLM goes through here.
func buildPipeline(ctx context.Context, cfg config.Config) (*agent.Pipeline, *memory.SessionStore, error) {
	client, err := llm.NewClientFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := memory.NewSessionStore(cfg.SessionDBPath(), logger)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewDefaultRegistry(cfg.CalendarPath(), cfg.TasksPath(), logger)
	gen := planner.NewGenerator(client, logger)
	searcher := search.NewDuckDuckGoSearcher()

	pipeline, err := agent.NewPipeline(gen, registry, store, searcher, cfg.HorizonHours, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return pipeline, store, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pipeline, store, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := pipeline.Run(ctx, agent.Request{
		Goal:         planGoal,
		Duration:     planDuration,
		AutoSchedule: autoSchedule || cfg.AutoSchedule,
	})
	if err != nil {
		return err
	}

	fmt.Println(result)
	fmt.Println()
	fmt.Println("Recent sessions:")
	fmt.Println(store.Summary(3))
	return nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := memory.NewSessionStore(cfg.SessionDBPath(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := memory.SessionRecord{
		Goal:        feedbackGoal,
		Duration:    feedbackDuration,
		Plan:        feedbackNote,
		BreaksTaken: breaksTaken,
	}
	if focusMinutes >= 0 {
		rec.ActualFocusMinutes = &focusMinutes
	}
	if fatigueScore >= 0 {
		rec.FatigueScore = &fatigueScore
	}

	if err := store.Record(rec); err != nil {
		return err
	}
	fmt.Println("Feedback recorded. Thanks!")
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := memory.NewSessionStore(cfg.SessionDBPath(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(historyCount)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(memory.EmptySummary)
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %s (%s)\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Goal, rec.Duration)
		if rec.ActualFocusMinutes != nil {
			fmt.Printf("          focused %d min", *rec.ActualFocusMinutes)
			if rec.FatigueScore != nil {
				fmt.Printf(", fatigue %d/5", *rec.FatigueScore)
			}
			if rec.BreaksTaken > 0 {
				fmt.Printf(", %d breaks", rec.BreaksTaken)
			}
			fmt.Println()
		}
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := memory.NewSessionStore(cfg.SessionDBPath(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	fields := []struct {
		field string
		label string
	}{
		{memory.FieldActualFocus, "Average focused minutes"},
		{memory.FieldFatigue, "Average fatigue score"},
		{memory.FieldBreaks, "Average breaks per session"},
	}

	printed := false
	for _, f := range fields {
		avg, n, err := store.Average(f.field)
		if err == memory.ErrNoData {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s: %.1f (over %d sessions)\n", f.label, avg, n)
		printed = true
	}
	if !printed {
		fmt.Println("No feedback recorded yet. Run `focusbuddy feedback` after a session.")
	}
	return nil
}

func runTasksList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := provider.NewDefaultRegistry(cfg.CalendarPath(), cfg.TasksPath(), logger)
	out, err := registry.Call(ctx, provider.TasksName, provider.OpListTopTasks,
		map[string]interface{}{"limit": 10})
	if err != nil {
		return err
	}
	items := out.([]provider.TaskItem)
	if len(items) == 0 {
		fmt.Println("No tasks yet.")
		return nil
	}
	for _, item := range items {
		mark := " "
		if item.Done {
			mark = "x"
		}
		due := item.Due
		if due == "" {
			due = "no due date"
		}
		fmt.Printf("[%s] %s  %s  (%s)\n", mark, item.ID, item.Title, due)
	}
	return nil
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := provider.NewDefaultRegistry(cfg.CalendarPath(), cfg.TasksPath(), logger)
	out, err := registry.Call(ctx, provider.TasksName, provider.OpAddTask,
		map[string]interface{}{"title": args[0], "due": taskDue})
	if err != nil {
		return err
	}
	conf := out.(provider.Confirmation)
	fmt.Printf("Added task %s: %s\n", conf.ID, args[0])
	return nil
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := provider.NewDefaultRegistry(cfg.CalendarPath(), cfg.TasksPath(), logger)
	out, err := registry.Call(ctx, provider.TasksName, provider.OpCompleteTask,
		map[string]interface{}{"id": args[0]})
	if err != nil {
		return err
	}
	conf := out.(provider.Confirmation)
	if !conf.OK {
		fmt.Printf("No task with id %s.\n", args[0])
		return nil
	}
	fmt.Printf("Completed task %s.\n", args[0])
	return nil
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := provider.NewDefaultRegistry(cfg.CalendarPath(), cfg.TasksPath(), logger)
	for _, op := range registry.Describe() {
		fmt.Println(op)
	}
	return nil
}

func runCalendarSlots(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := provider.NewDefaultRegistry(cfg.CalendarPath(), cfg.TasksPath(), logger)
	minutes := agent.ParseDurationMinutes(slotDuration)
	out, err := registry.Call(ctx, provider.CalendarName, provider.OpGetFreeSlots,
		map[string]interface{}{"duration_minutes": minutes, "horizon_hours": cfg.HorizonHours})
	if err != nil {
		return err
	}
	slots := out.([]provider.FreeSlot)
	if len(slots) == 0 {
		fmt.Printf("No free %d-minute slots in the next %d hours.\n", minutes, cfg.HorizonHours)
		return nil
	}
	for i, slot := range slots {
		fmt.Printf("%d. %s - %s (%d min)\n", i+1,
			slot.Start.Format("2006-01-02 15:04"),
			slot.End.Format("15:04"),
			slot.Minutes())
	}
	return nil
}

func runCalendarAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	start, err := parseStart(eventStart)
	if err != nil {
		return err
	}
	end := start.Add(time.Duration(agent.ParseDurationMinutes(eventDuration)) * time.Minute)

	registry := provider.NewDefaultRegistry(cfg.CalendarPath(), cfg.TasksPath(), logger)
	_, err = registry.Call(ctx, provider.CalendarName, provider.OpAddEvent,
		map[string]interface{}{
			"title": args[0],
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		})
	if err != nil {
		return err
	}
	fmt.Printf("Added %q, %s - %s.\n", args[0],
		start.Format("2006-01-02 15:04"), end.Format("15:04"))
	return nil
}

func parseStart(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse start time %q", s)
}
