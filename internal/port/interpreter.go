package port

import "context"

// CompletionInput carries the prompts sent to a language model.
type CompletionInput struct {
	SystemPrompt string
	UserPrompt   string
}

// CompletionOutput is a single text completion.
type CompletionOutput struct {
	Text      string
	ModelUsed string
}

// Interpreter abstracts a language model completion service.
type Interpreter interface {
	Complete(ctx context.Context, input CompletionInput) (*CompletionOutput, error)
}
