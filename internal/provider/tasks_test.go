package provider

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func seedTasks(t *testing.T, tasks []TaskItem) *Tasks {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks_data.json")
	data, err := json.Marshal(tasksDoc{Tasks: tasks})
	if err != nil {
		t.Fatalf("failed to marshal seed tasks: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write seed tasks: %v", err)
	}
	return NewTasks(path, nil)
}

func TestListTopTasksOrdering(t *testing.T) {
	tp := seedTasks(t, []TaskItem{
		{ID: "t1", Title: "done early", Due: "2026-09-01", Done: true},
		{ID: "t2", Title: "no due date"},
		{ID: "t3", Title: "due soon", Due: "2026-09-02"},
		{ID: "t4", Title: "due later", Due: "2026-09-10"},
	})

	tasks, err := tp.ListTopTasks(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListTopTasks failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	// Incomplete first, due ascending, missing due last.
	want := []string{"t3", "t4", "t2"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, tasks[i].ID)
		}
	}
}

func TestListTopTasksEmptyFile(t *testing.T) {
	tp := NewTasks(filepath.Join(t.TempDir(), "tasks_data.json"), nil)
	tasks, err := tp.ListTopTasks(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListTopTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}
}

func TestCompleteTask(t *testing.T) {
	tp := seedTasks(t, []TaskItem{{ID: "abc", Title: "write report"}})

	conf, err := tp.CompleteTask(context.Background(), "abc")
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if !conf.OK || conf.ID != "abc" {
		t.Errorf("unexpected confirmation: %+v", conf)
	}

	tasks, _ := tp.ListTopTasks(context.Background(), 10)
	if len(tasks) != 1 || !tasks[0].Done {
		t.Errorf("expected task marked done, got %+v", tasks)
	}
}

func TestCompleteTaskMissingIDLeavesListUnchanged(t *testing.T) {
	tp := seedTasks(t, []TaskItem{{ID: "t1", Title: "keep me"}})

	before, err := os.ReadFile(tp.path)
	if err != nil {
		t.Fatalf("failed to read tasks file: %v", err)
	}

	conf, err := tp.CompleteTask(context.Background(), "abc")
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if conf.OK {
		t.Error("expected OK=false for missing id")
	}
	if conf.ID != "abc" {
		t.Errorf("expected id echoed back, got %q", conf.ID)
	}

	after, err := os.ReadFile(tp.path)
	if err != nil {
		t.Fatalf("failed to read tasks file: %v", err)
	}
	if string(before) != string(after) {
		t.Error("persisted list changed on a missing id")
	}
}

func TestAddTask(t *testing.T) {
	tp := NewTasks(filepath.Join(t.TempDir(), "tasks_data.json"), nil)

	conf, err := tp.AddTask(context.Background(), "new task", "2026-09-05")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if !conf.OK || conf.ID == "" {
		t.Errorf("unexpected confirmation: %+v", conf)
	}

	tasks, _ := tp.ListTopTasks(context.Background(), 10)
	if len(tasks) != 1 || tasks[0].Title != "new task" {
		t.Errorf("expected the added task, got %+v", tasks)
	}

	if _, err := tp.AddTask(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty title")
	}
}
