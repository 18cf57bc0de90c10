package audit

import "context"

// Store persists audit events. Implementations must be safe for concurrent
// appends.
type Store interface {
	Append(ctx context.Context, event Event) error
}
