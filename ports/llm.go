package ports

import "context"

// TextGenerator sends one prompt to the external generative endpoint and
// returns the raw response text. Implementations must honor the context and
// an internal request timeout; the pipeline treats any error as recoverable.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)

	// ModelName identifies the backing model for provenance tagging.
	ModelName() string
}
