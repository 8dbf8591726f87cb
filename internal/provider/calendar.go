package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Calendar operation names.
const (
	CalendarName     = "calendar"
	OpGetFreeSlots   = "get_free_slots"
	OpAddEvent       = "add_event"
	maxSlots         = 3
	defaultHorizonHr = 8
)

// calendarDoc is the on-disk shape: one object, one array field.
type calendarDoc struct {
	Events []CalendarEvent `json:"events"`
}

// Calendar is the stand-in calendar provider. Free slots are computed
// on demand from the persisted event list; events are append only.
type Calendar struct {
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// NewCalendar creates a calendar provider backed by the given file.
func NewCalendar(path string, logger *zap.Logger) *Calendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calendar{path: path, now: time.Now, logger: logger}
}

// SetNow overrides the clock, used in tests.
func (c *Calendar) SetNow(now func() time.Time) {
	c.now = now
}

// Name implements Provider.
func (c *Calendar) Name() string { return CalendarName }

// Operations implements Provider.
func (c *Calendar) Operations() []string {
	return []string{OpGetFreeSlots, OpAddEvent}
}

// Call implements Provider for the string-addressed dispatch surface.
func (c *Calendar) Call(ctx context.Context, op string, args map[string]interface{}) (interface{}, error) {
	switch op {
	case OpGetFreeSlots:
		return c.GetFreeSlots(ctx, intArg(args, "duration_minutes", 60), intArg(args, "horizon_hours", defaultHorizonHr))
	case OpAddEvent:
		start, err := time.Parse(time.RFC3339, stringArg(args, "start"))
		if err != nil {
			return nil, fmt.Errorf("invalid start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, stringArg(args, "end"))
		if err != nil {
			return nil, fmt.Errorf("invalid end: %w", err)
		}
		return c.AddEvent(ctx, stringArg(args, "title"), start, end)
	default:
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownOperation, op, CalendarName)
	}
}

// GetFreeSlots returns up to three candidate windows of exactly
// durationMinutes within the horizon. The scan starts from now
// truncated to the minute; windows overlapping a persisted event
// (clipped to the horizon) are skipped by jumping past the conflict,
// and accepted candidates never overlap one another: successive
// candidates are separated by a stagger gap of half the block length,
// at least one minute.
func (c *Calendar) GetFreeSlots(ctx context.Context, durationMinutes, horizonHours int) ([]FreeSlot, error) {
	_ = ctx

	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	if horizonHours <= 0 {
		horizonHours = defaultHorizonHr
	}

	var doc calendarDoc
	if err := loadJSON(c.path, &doc); err != nil {
		return nil, err
	}

	now := c.now().Truncate(time.Minute)
	end := now.Add(time.Duration(horizonHours) * time.Hour)
	block := time.Duration(durationMinutes) * time.Minute

	// Occupied windows clipped to the scan horizon.
	type window struct{ start, end time.Time }
	var occupied []window
	for _, e := range doc.Events {
		s, f := e.Start, e.End
		if !f.After(now) || !end.After(s) {
			continue
		}
		if s.Before(now) {
			s = now
		}
		if f.After(end) {
			f = end
		}
		occupied = append(occupied, window{s, f})
	}

	stagger := block / 2
	if stagger < time.Minute {
		stagger = time.Minute
	}

	var slots []FreeSlot
	cur := now
	for !cur.Add(block).After(end) && len(slots) < maxSlots {
		conflict := false
		for _, w := range occupied {
			if cur.Before(w.end) && cur.Add(block).After(w.start) {
				conflict = true
				if w.end.After(cur) {
					cur = w.end
				}
				break
			}
		}
		if conflict {
			continue
		}
		slot := FreeSlot{Start: cur, End: cur.Add(block)}
		slots = append(slots, slot)
		cur = slot.End.Add(stagger)
	}

	c.logger.Debug("computed free slots",
		zap.Int("duration_minutes", durationMinutes),
		zap.Int("count", len(slots)))
	return slots, nil
}

// AddEvent appends an event unconditionally; there is no conflict
// check. The whole file is rewritten.
func (c *Calendar) AddEvent(ctx context.Context, title string, start, end time.Time) (Confirmation, error) {
	_ = ctx

	if !end.After(start) {
		return Confirmation{}, fmt.Errorf("event end must be after start")
	}

	var doc calendarDoc
	if err := loadJSON(c.path, &doc); err != nil {
		return Confirmation{}, err
	}

	event := CalendarEvent{Title: title, Start: start, End: end}
	doc.Events = append(doc.Events, event)
	if err := saveJSON(c.path, &doc); err != nil {
		return Confirmation{}, err
	}

	c.logger.Debug("event added", zap.String("title", title), zap.Time("start", start))
	return Confirmation{OK: true, Added: &event}, nil
}

// Events returns a snapshot of the persisted event list.
func (c *Calendar) Events() ([]CalendarEvent, error) {
	var doc calendarDoc
	if err := loadJSON(c.path, &doc); err != nil {
		return nil, err
	}
	return doc.Events, nil
}
