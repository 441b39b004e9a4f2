package core

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	categoryLabel = "Category"
	priorityLabel = "Priority"
	actionLabel   = "Action Required"

	// MinPriority and MaxPriority bound the priority scale
	MinPriority = 1
	MaxPriority = 10
)

// ParseCategory extracts the category from a "Category: <value>" response.
// The value is kept as the model wrote it, including labels outside the
// predefined set.
func ParseCategory(text string) (string, error) {
	value, err := extractLabeled(text, categoryLabel)
	if err != nil {
		return "", err
	}
	return value, nil
}

// ParsePriority extracts an integer priority within 1..10
func ParsePriority(text string) (int, error) {
	value, err := extractLabeled(text, priorityLabel)
	if err != nil {
		return 0, err
	}

	// tolerate "8/10" and "8." style answers
	digits := value
	if i := strings.IndexFunc(value, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits = value[:i]
	}

	priority, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: priority %q is not an integer", ErrUnparseable, value)
	}
	if priority < MinPriority || priority > MaxPriority {
		return 0, fmt.Errorf("%w: priority %d outside %d..%d", ErrUnparseable, priority, MinPriority, MaxPriority)
	}
	return priority, nil
}

// ParseActionRequired reports whether the response answers "Yes"
func ParseActionRequired(text string) (bool, error) {
	value, err := extractLabeled(text, actionLabel)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(value, "yes"), nil
}

// extractLabeled finds the value after "label:" on any line. Without such a
// line it falls back to the text after the first colon of the first
// non-empty line, or that whole line.
func extractLabeled(text, label string) (string, error) {
	var fallback string
	prefix := strings.ToLower(label) + ":"

	for _, line := range strings.Split(text, "\n") {
		line = cleanValue(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			if value := cleanValue(line[len(prefix):]); value != "" {
				return value, nil
			}
			continue
		}
		if fallback == "" {
			fallback = line
			if i := strings.Index(line, ":"); i >= 0 {
				fallback = cleanValue(line[i+1:])
			}
		}
	}

	if fallback == "" {
		return "", fmt.Errorf("%w: no %s in %q", ErrUnparseable, strings.ToLower(label), text)
	}
	return fallback, nil
}

func cleanValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), "'\"`[]*. ")
}
