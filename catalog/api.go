package catalog

import "context"

// MaxTagKeyLen is the longest tag key the catalog accepts.
const MaxTagKeyLen = 1000

// TagAPI is the remote tagging surface consumed by the reconciler.
//
// Implementations must make list failures loud (an authorization or
// not-found error is an error, never an empty map) and must make create and
// delete idempotent: creating a tag that already exists and deleting one
// that does not exist both succeed.
type TagAPI interface {
	// ListTags returns the full key/value tag set currently applied to the
	// securable. An empty map means zero tags, which is a valid state.
	ListTags(ctx context.Context, sec Securable) (map[string]string, error)

	// CreateTag applies a key/value tag. Value may be empty.
	CreateTag(ctx context.Context, sec Securable, key, value string) error

	// DeleteTag removes a tag by key.
	DeleteTag(ctx context.Context, sec Securable, key string) error
}
