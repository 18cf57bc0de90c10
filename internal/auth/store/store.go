// Package store defines the two persistence scopes the session manager
// owns. Transient state (verifier, state) lives per login attempt and dies
// with the process or an explicit delete; durable state (tokens, user info)
// survives restarts until logout or an overwrite.
//
// The session manager is the only writer of these keys. Concurrent processes
// sharing a durable backend race last-write-wins; that is accepted, not
// coordinated.
package store

import (
	"context"

	dErrors "walletgate/pkg/domain-errors"
)

// Storage keys, namespaced under a fixed prefix.
const (
	Prefix          = "oauth2_"
	KeyCodeVerifier = Prefix + "code_verifier"
	KeyState        = Prefix + "state"
	KeyTokens       = Prefix + "tokens"
	KeyUserInfo     = Prefix + "user_info"
)

// ErrNotFound keeps storage-specific misses consistent across backends.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "key not found")

// TransientStore holds per-login-attempt values. Implementations are
// process-local; losing them mid-flow surfaces as a missing-verifier error
// at the callback, never as silent success.
type TransientStore interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// DurableStore holds values that outlive a login attempt. Values are opaque
// encoded blobs; the session manager owns the encoding.
type DurableStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
