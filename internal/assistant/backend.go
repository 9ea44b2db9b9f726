package assistant

import "context"

// Backend produces raw reply text for a prompt. Backends are tried in order
// until one yields a valid response.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
