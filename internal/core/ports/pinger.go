package ports

import "context"

// Pinger is implemented by backends that can report their own reachability.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}
