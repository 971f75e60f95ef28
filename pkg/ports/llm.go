package ports

import "context"

// TextGenerator produces text for a prompt. Sub-tasks expect the output to be
// a JSON document.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageSearcher returns image URLs matching a query. Callers treat any
// failure as "no image".
type ImageSearcher interface {
	Search(ctx context.Context, query string, count int) ([]string, error)
}
