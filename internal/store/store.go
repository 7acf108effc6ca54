// Package store provides the local key-value persistence backing the
// session and conversation controllers. Implementations must be safe for
// concurrent use. Each key is owned by exactly one controller and never
// cross-written.
package store

import "errors"

// ErrNotFound is returned by Get when a key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// Fixed keys for persisted client state.
const (
	KeyAuthToken      = "auth_token"
	KeyAuthUser       = "auth_user"
	KeyConversationID = "chat_conversation_id"
	KeyChatMessages   = "chat_messages"
)

// Store is a minimal key-value persistence capability. Controllers receive
// a Store by injection so tests can substitute an in-memory implementation.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any existing value.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases any resources held by the store.
	Close() error
}
