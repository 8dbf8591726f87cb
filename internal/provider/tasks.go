package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tasks operation names.
const (
	TasksName      = "tasks"
	OpListTopTasks = "list_top_tasks"
	OpCompleteTask = "complete_task"
	OpAddTask      = "add_task"

	// dueSentinel sorts tasks without a due date last.
	dueSentinel = "9999-12-31"
)

// tasksDoc is the on-disk shape: one object, one array field.
type tasksDoc struct {
	Tasks []TaskItem `json:"tasks"`
}

// Tasks is the stand-in task-list provider.
type Tasks struct {
	path   string
	logger *zap.Logger
}

// NewTasks creates a task provider backed by the given file.
func NewTasks(path string, logger *zap.Logger) *Tasks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tasks{path: path, logger: logger}
}

// Name implements Provider.
func (t *Tasks) Name() string { return TasksName }

// Operations implements Provider.
func (t *Tasks) Operations() []string {
	return []string{OpListTopTasks, OpCompleteTask, OpAddTask}
}

// Call implements Provider for the string-addressed dispatch surface.
func (t *Tasks) Call(ctx context.Context, op string, args map[string]interface{}) (interface{}, error) {
	switch op {
	case OpListTopTasks:
		return t.ListTopTasks(ctx, intArg(args, "limit", 3))
	case OpCompleteTask:
		return t.CompleteTask(ctx, stringArg(args, "id"))
	case OpAddTask:
		return t.AddTask(ctx, stringArg(args, "title"), stringArg(args, "due"))
	default:
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownOperation, op, TasksName)
	}
}

// ListTopTasks returns up to limit tasks, incomplete first, then by
// due date ascending; tasks without a due date sort last.
func (t *Tasks) ListTopTasks(ctx context.Context, limit int) ([]TaskItem, error) {
	_ = ctx

	if limit <= 0 {
		limit = 3
	}

	var doc tasksDoc
	if err := loadJSON(t.path, &doc); err != nil {
		return nil, err
	}

	tasks := make([]TaskItem, len(doc.Tasks))
	copy(tasks, doc.Tasks)

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Done != tasks[j].Done {
			return !tasks[i].Done
		}
		return dueKey(tasks[i]) < dueKey(tasks[j])
	})

	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

// CompleteTask flips the done flag of the task with the given id.
// A missing id is not an error: the confirmation carries OK=false and
// the persisted list is untouched.
func (t *Tasks) CompleteTask(ctx context.Context, id string) (Confirmation, error) {
	_ = ctx

	var doc tasksDoc
	if err := loadJSON(t.path, &doc); err != nil {
		return Confirmation{}, err
	}

	found := false
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == id {
			doc.Tasks[i].Done = true
			found = true
			break
		}
	}
	if !found {
		return Confirmation{OK: false, ID: id}, nil
	}

	if err := saveJSON(t.path, &doc); err != nil {
		return Confirmation{}, err
	}

	t.logger.Debug("task completed", zap.String("id", id))
	return Confirmation{OK: true, ID: id}, nil
}

// AddTask appends a task with a generated identifier.
func (t *Tasks) AddTask(ctx context.Context, title, due string) (Confirmation, error) {
	_ = ctx

	if title == "" {
		return Confirmation{}, fmt.Errorf("task title is required")
	}

	var doc tasksDoc
	if err := loadJSON(t.path, &doc); err != nil {
		return Confirmation{}, err
	}

	id := uuid.NewString()
	doc.Tasks = append(doc.Tasks, TaskItem{ID: id, Title: title, Due: due})
	if err := saveJSON(t.path, &doc); err != nil {
		return Confirmation{}, err
	}

	t.logger.Debug("task added", zap.String("id", id), zap.String("title", title))
	return Confirmation{OK: true, ID: id}, nil
}

func dueKey(t TaskItem) string {
	if t.Due == "" {
		return dueSentinel
	}
	return t.Due
}
