package planner

import (
	"fmt"
	"strings"
	"time"
)

// Owner is the minimal account identity joined onto records for admin views.
type Owner struct {
	ID       string `json:"id"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Note is a free-form note with tags and a display color.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Owner     *Owner    `json:"owner,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Color     string    `json:"color"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize applies defaults. Notes have no required fields.
func (n *Note) Normalize() error {
	if strings.TrimSpace(n.Color) == "" {
		n.Color = "#ffffff"
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return nil
}

// Task priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task statuses.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// TodoItem is a checklist entry inside a task.
type TodoItem struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a unit of work with optional schedule, checklist and tags.
type Task struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"userId"`
	Owner       *Owner          `json:"owner,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	Todo        []TodoItem      `json:"todo"`
	Tags        []string        `json:"tags"`
	Completed   map[string]bool `json:"completed"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Normalize applies defaults and validates enum fields.
func (t *Task) Normalize() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, t.Priority)
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	switch t.Status {
	case StatusPending, StatusInProgress, StatusCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, t.Status)
	}
	for _, item := range t.Todo {
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("%w: todo item title is required", ErrInvalidInput)
		}
	}
	if t.Todo == nil {
		t.Todo = []TodoItem{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Completed == nil {
		t.Completed = map[string]bool{}
	}
	return nil
}

// Event recurrence options.
const (
	RecurNone    = "None"
	RecurDaily   = "Daily"
	RecurWeekly  = "Weekly"
	RecurMonthly = "Monthly"
)

// Event is a calendar entry, optionally recurring, with an optional reminder.
type Event struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"userId"`
	Owner         *Owner     `json:"owner,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	StartDateTime time.Time  `json:"startDateTime"`
	EndDateTime   time.Time  `json:"endDateTime"`
	Reminder      *time.Time `json:"reminder,omitempty"`
	Recurring     string     `json:"recurring"`
	Color         string     `json:"color"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Normalize applies defaults and validates the schedule.
func (e *Event) Normalize() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if e.StartDateTime.IsZero() || e.EndDateTime.IsZero() {
		return fmt.Errorf("%w: start and end times are required", ErrInvalidInput)
	}
	if !e.EndDateTime.After(e.StartDateTime) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	if e.Recurring == "" {
		e.Recurring = RecurNone
	}
	switch e.Recurring {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly:
	default:
		return fmt.Errorf("%w: unknown recurrence %q", ErrInvalidInput, e.Recurring)
	}
	if strings.TrimSpace(e.Color) == "" {
		e.Color = "#000000"
	}
	return nil
}

// Goal repeat kinds.
const (
	RepeatDaily  = "daily"
	RepeatWeekly = "weekly"
)

// Goal life areas.
var goalAreas = map[string]bool{
	"Personal": true,
	"Work":     true,
	"Health":   true,
	"General":  true,
	"Study":    true,
}

var weekdays = map[string]bool{
	"Sun": true, "Mon": true, "Tue": true, "Wed": true,
	"Thu": true, "Fri": true, "Sat": true,
}

// Goal is a recurring habit. Completed is keyed by date string.
type Goal struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"userId"`
	Owner        *Owner          `json:"owner,omitempty"`
	Title        string          `json:"title"`
	Repeat       string          `json:"repeat"`
	SelectedDays []string        `json:"selectedDays"`
	Frequency    int             `json:"frequency"`
	Notification bool            `json:"notification"`
	NotifyTime   string          `json:"notifyTime"`
	Area         string          `json:"area"`
	Color        string          `json:"color"`
	Completed    map[string]bool `json:"completed"`
	Pinned       bool            `json:"pinned"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Normalize applies defaults and validates the repeat schedule. Daily goals
// carry no selected days; weekly goals may only name real weekdays.
func (g *Goal) Normalize() error {
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if g.Repeat == "" {
		g.Repeat = RepeatDaily
	}
	switch g.Repeat {
	case RepeatDaily:
		g.SelectedDays = []string{}
	case RepeatWeekly:
		for _, day := range g.SelectedDays {
			if !weekdays[day] {
				return fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, day)
			}
		}
		if g.SelectedDays == nil {
			g.SelectedDays = []string{}
		}
	default:
		return fmt.Errorf("%w: unknown repeat kind %q", ErrInvalidInput, g.Repeat)
	}
	if g.Frequency <= 0 {
		g.Frequency = 1
	}
	if g.Area == "" {
		g.Area = "Personal"
	}
	if !goalAreas[g.Area] {
		return fmt.Errorf("%w: unknown area %q", ErrInvalidInput, g.Area)
	}
	if strings.TrimSpace(g.Color) == "" {
		g.Color = "#FF6384"
	}
	if g.Completed == nil {
		g.Completed = map[string]bool{}
	}
	return nil
}

// Transaction types.
const (
	TxnIncome  = "Income"
	TxnExpense = "Expense"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Owner     *Owner    `json:"owner,omitempty"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"`
	Icon      string    `json:"icon,omitempty"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize validates the required fields.
func (t *Transaction) Normalize() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if t.Amount == 0 {
		return fmt.Errorf("%w: amount is required", ErrInvalidInput)
	}
	switch t.Type {
	case TxnIncome, TxnExpense:
	default:
		return fmt.Errorf("%w: type must be Income or Expense", ErrInvalidInput)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}
