package noreply

import (
	"strings"

	"go.uber.org/zap"
)

// Checker flags automated senders whose mail never needs a follow-up
type Checker struct {
	patterns []string
	logger   *zap.Logger
}

// NewChecker creates a checker matching any of patterns, case-insensitively
func NewChecker(patterns []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			normalized = append(normalized, p)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Debug("Initialized no-reply checker", zap.Strings("patterns", normalized))
	}

	return &Checker{
		patterns: normalized,
		logger:   logger,
	}
}

// IsNoReply reports whether the sender or subject contains a no-reply marker
func (c *Checker) IsNoReply(sender, subject string) bool {
	sender = strings.ToLower(sender)
	subject = strings.ToLower(subject)

	for _, p := range c.patterns {
		if strings.Contains(sender, p) || strings.Contains(subject, p) {
			if c.logger != nil {
				c.logger.Debug("No-reply sender detected",
					zap.String("pattern", p),
					zap.String("sender", sender))
			}
			return true
		}
	}

	return false
}
