package provider

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Provider is one context source behind the dispatch facade. The
// operation set is fixed and declared up front, so unknown-operation
// errors are caught at registration, not at invocation.
type Provider interface {
	Name() string
	Operations() []string
	Call(ctx context.Context, op string, args map[string]interface{}) (interface{}, error)
}

// Registry routes (provider, operation, arguments) calls to a static
// set of providers. Dispatch is synchronous and in-process; provider
// errors propagate unchanged, with no retry and no added timeout.
type Registry struct {
	providers map[string]Provider
	ops       map[string]map[string]bool
	logger    *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		providers: make(map[string]Provider),
		ops:       make(map[string]map[string]bool),
		logger:    logger,
	}
}

// NewDefaultRegistry wires up the built-in calendar and task
// providers backed by the given files.
func NewDefaultRegistry(calendarPath, tasksPath string, logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(NewCalendar(calendarPath, logger))
	r.Register(NewTasks(tasksPath, logger))
	return r
}

// Register adds a provider and snapshots its operation set.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
	opSet := make(map[string]bool, len(p.Operations()))
	for _, op := range p.Operations() {
		opSet[op] = true
	}
	r.ops[p.Name()] = opSet
}

// Call dispatches one operation. Unknown provider or operation names
// fail with the typed routing errors; everything else is the
// provider's result or its error, unchanged.
func (r *Registry) Call(ctx context.Context, providerName, op string, args map[string]interface{}) (interface{}, error) {
	p, ok := r.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
	}
	if !r.ops[providerName][op] {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownOperation, op, providerName)
	}

	r.logger.Debug("provider dispatch",
		zap.String("provider", providerName),
		zap.String("operation", op))
	return p.Call(ctx, op, args)
}

// Calendar returns the registered calendar provider, if any.
func (r *Registry) Calendar() (*Calendar, bool) {
	c, ok := r.providers[CalendarName].(*Calendar)
	return c, ok
}

// Tasks returns the registered task provider, if any.
func (r *Registry) Tasks() (*Tasks, bool) {
	t, ok := r.providers[TasksName].(*Tasks)
	return t, ok
}

// Describe lists registered providers and their operations, sorted
// for stable display.
func (r *Registry) Describe() []string {
	var out []string
	for name, opSet := range r.ops {
		ops := make([]string, 0, len(opSet))
		for op := range opSet {
			ops = append(ops, op)
		}
		sort.Strings(ops)
		for _, op := range ops {
			out = append(out, name+"."+op)
		}
	}
	sort.Strings(out)
	return out
}
