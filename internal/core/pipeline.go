package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// NoReplyRule detects automated senders that never need a follow-up
type NoReplyRule interface {
	IsNoReply(sender, subject string) bool
}

// Classifier is the subset of ClassificationService the pipeline depends on
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (string, error)
}

// FetchRecorder counts retrieved emails
type FetchRecorder interface {
	EmailsFetched(n int)
}

// Pipeline fetches emails and fills in their classification fields
type Pipeline struct {
	source     MailSource
	classifier Classifier
	noReply    NoReplyRule
	recorder   FetchRecorder
	logger     *zap.Logger
	categories []string
	progress   io.Writer
}

// NewPipeline creates a pipeline. noReply and recorder may be nil.
func NewPipeline(
	source MailSource,
	classifier Classifier,
	noReply NoReplyRule,
	recorder FetchRecorder,
	logger *zap.Logger,
	categories []string,
) *Pipeline {
	return &Pipeline{
		source:     source,
		classifier: classifier,
		noReply:    noReply,
		recorder:   recorder,
		logger:     logger,
		categories: categories,
	}
}

// SetProgressOutput enables a progress bar written to w during classification
func (p *Pipeline) SetProgressOutput(w io.Writer) {
	p.progress = w
}

// Categories returns the predefined category labels
func (p *Pipeline) Categories() []string {
	return p.categories
}

// Fetch authenticates and retrieves up to limit emails. Authentication
// failures are returned; listing failures degrade to an empty batch.
func (p *Pipeline) Fetch(ctx context.Context, limit int) ([]*Email, error) {
	if err := p.source.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("failed to authenticate mail source: %w", err)
	}

	raw, err := p.source.ListRecent(ctx, limit)
	if err != nil {
		p.logger.Warn("Failed to list messages, continuing with an empty batch", zap.Error(err))
		return []*Email{}, nil
	}

	emails := make([]*Email, 0, len(raw))
	for _, msg := range raw {
		emails = append(emails, NewEmail(msg))
	}
	if p.recorder != nil {
		p.recorder.EmailsFetched(len(emails))
	}
	return emails, nil
}

// Classify runs the given tasks (all tasks when none are given) over every
// email, one call at a time. Failed or unparseable classifications leave
// the field unset and never abort the batch.
func (p *Pipeline) Classify(ctx context.Context, emails []*Email, tasks ...Task) error {
	if len(tasks) == 0 {
		tasks = AllTasks
	}

	var bar *progressbar.ProgressBar
	if p.progress != nil {
		bar = progressbar.NewOptions(len(emails),
			progressbar.OptionSetWriter(p.progress),
			progressbar.OptionSetDescription("Processing Emails"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, task := range tasks {
			p.classifyOne(ctx, email, task)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return nil
}

func (p *Pipeline) classifyOne(ctx context.Context, email *Email, task Task) {
	subject, sender := email.SubjectText(), email.SenderText()

	if task == TaskAction && p.noReply != nil && p.noReply.IsNoReply(sender, subject) {
		email.ActionRequired = false
		return
	}

	text, err := p.classifier.Classify(ctx, ClassifyRequest{
		Subject:    subject,
		Sender:     sender,
		Categories: p.categories,
		Task:       task,
	})
	if err != nil {
		if !errors.Is(err, ErrModelInvocation) {
			p.logger.Warn("Classification failed",
				zap.String("task", string(task)),
				zap.String("subject", subject),
				zap.Error(err))
		}
		return
	}

	switch task {
	case TaskCategory:
		category, err := ParseCategory(text)
		if err != nil {
			p.logUnparseable(task, subject, text, err)
			return
		}
		if !p.isPredefined(category) {
			p.logger.Debug("Model suggested a category outside the predefined set",
				zap.String("category", category),
				zap.String("subject", subject))
		}
		email.Category = &category
	case TaskPriority:
		priority, err := ParsePriority(text)
		if err != nil {
			p.logUnparseable(task, subject, text, err)
			return
		}
		email.Priority = &priority
	case TaskAction:
		action, err := ParseActionRequired(text)
		if err != nil {
			p.logUnparseable(task, subject, text, err)
			return
		}
		email.ActionRequired = action
	}
}

func (p *Pipeline) isPredefined(category string) bool {
	for _, c := range p.categories {
		if c == category {
			return true
		}
	}
	return false
}

func (p *Pipeline) logUnparseable(task Task, subject, text string, err error) {
	p.logger.Warn("Unparseable model response",
		zap.String("task", string(task)),
		zap.String("subject", subject),
		zap.String("response", text),
		zap.Error(err))
}

// Summary holds the aggregates the reports consume
type Summary struct {
	Emails         []*Email
	Groups         *CategoryGroups
	ActionRequired []*Email
}

// Summarize builds the category buckets and the ranked action list
func Summarize(emails []*Email) *Summary {
	return &Summary{
		Emails:         emails,
		Groups:         GroupByCategory(emails),
		ActionRequired: RankActionRequired(emails),
	}
}
