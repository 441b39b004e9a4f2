package core

import (
	"fmt"
	"strings"

	"github.com/mikey/email-classifier/internal/utils"
)

const categoryPromptFormat = `Categorize the following email concisely.

Sender: '%s'
Subject: '%s'
Predefined Categories: %s

Task: Select the most relevant category from the predefined list, or suggest a new category if none apply.
Output Format: 'Category: [Category]'.
Do not include any explanations or additional text.`

const priorityPromptFormat = `Determine the priority of the following email on a scale of 1-10 (10 is urgent, 1 can wait):

Sender: '%s'
Subject: '%s'

Criteria:
- Emails from individuals have a higher priority than those from newsletters or companies.

Output Format:
Respond strictly in this format: 'Priority: [Priority]'.
Example: 'Priority: 5'.

Instructions:
- Do not include any explanations, comments, reasoning, or additional text. Write a number between 1 and 10 only.
- Do not write anything other than the format: 'Priority: [Priority]'.
- Ensure that the output includes only the priority value in the required format and nothing else.`

const actionPromptFormat = `Instructions:
1. Determine if follow-up action is required for the given email.
2. If 'noreply' or 'no-reply' appears in the sender or subject, no action is required.
3. Action is required only if:
   - The email requests an explicit response or task from you.
   - The email contains time-sensitive information needing your attention.
4. Tickets or reports do not require action.

Respond strictly in this format: 'Action Required: [Yes/No]'.
Do not include any extra words or explanations.

Email Data:
- Sender: '%s'
- Subject: '%s'`

// PromptBuilder renders the task-specific instruction prompts
type PromptBuilder struct {
	textProcessor *utils.TextProcessor
	maxFieldSize  int
}

// NewPromptBuilder creates a prompt builder that limits header fields to maxFieldSize bytes
func NewPromptBuilder(textProcessor *utils.TextProcessor, maxFieldSize int) *PromptBuilder {
	return &PromptBuilder{
		textProcessor: textProcessor,
		maxFieldSize:  maxFieldSize,
	}
}

// Build returns the prompt for task
func (b *PromptBuilder) Build(task Task, subject, sender string, categories []string) (string, error) {
	subject = b.textProcessor.ProcessField(subject, b.maxFieldSize)
	sender = b.textProcessor.ProcessField(sender, b.maxFieldSize)

	switch task {
	case TaskCategory:
		return fmt.Sprintf(categoryPromptFormat, sender, subject, formatCategories(categories)), nil
	case TaskPriority:
		return fmt.Sprintf(priorityPromptFormat, sender, subject), nil
	case TaskAction:
		return fmt.Sprintf(actionPromptFormat, sender, subject), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
}

func formatCategories(categories []string) string {
	quoted := make([]string, len(categories))
	for i, c := range categories {
		quoted[i] = "'" + c + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
