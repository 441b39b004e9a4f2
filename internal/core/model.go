package core

import (
	"fmt"
	"time"
)

// Task identifies one classification axis requested per email
type Task string

const (
	TaskCategory Task = "category"
	TaskPriority Task = "priority"
	TaskAction   Task = "action"
)

// AllTasks lists the classification tasks in the order they are run
var AllTasks = []Task{TaskCategory, TaskPriority, TaskAction}

// Valid reports whether t is a known task
func (t Task) Valid() bool {
	switch t {
	case TaskCategory, TaskPriority, TaskAction:
		return true
	}
	return false
}

// UncategorizedLabel is the bucket for emails whose category could not be determined
const UncategorizedLabel = "Uncategorized"

// RawMessage is a retrieved message before classification.
// Subject and Sender are nil when the provider omits the header.
type RawMessage struct {
	Subject *string
	Sender  *string
}

// Email represents one retrieved email and its classification results
type Email struct {
	Subject        *string
	Sender         *string
	Category       *string
	Priority       *int
	ActionRequired bool
}

// NewEmail wraps a raw message into an unclassified email
func NewEmail(raw RawMessage) *Email {
	return &Email{
		Subject: raw.Subject,
		Sender:  raw.Sender,
	}
}

// SubjectText returns the subject or an empty string when absent
func (e *Email) SubjectText() string {
	return deref(e.Subject)
}

// SenderText returns the sender or an empty string when absent
func (e *Email) SenderText() string {
	return deref(e.Sender)
}

// CategoryLabel returns the category, or UncategorizedLabel when unset
func (e *Email) CategoryLabel() string {
	if e.Category == nil || *e.Category == "" {
		return UncategorizedLabel
	}
	return *e.Category
}

// PriorityRank returns the priority used for ordering; unset priorities rank lowest
func (e *Email) PriorityRank() int {
	if e.Priority == nil {
		return 0
	}
	return *e.Priority
}

func (e *Email) String() string {
	priority := "none"
	if e.Priority != nil {
		priority = fmt.Sprintf("%d", *e.Priority)
	}
	return fmt.Sprintf("subject=%q sender=%q category=%q priority=%s action_required=%t",
		e.SubjectText(), e.SenderText(), e.CategoryLabel(), priority, e.ActionRequired)
}

// CacheEntry is a stored model response
type CacheEntry struct {
	Key       string
	Value     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry at now
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
