package ports

import "context"

// Writer serialises read-modify-write cycles so that no two mutations of the
// shared collections interleave.
type Writer interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
