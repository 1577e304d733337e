// Package cache provides caching for parsed snapshots, branch comparisons,
// and rendered views.
//
// The same interface backs three deployments: a file cache under the user's
// cache directory for CLI usage, a Redis cache for the API server, and a
// null cache for tests and --no-cache runs.
//
// Keys are derived through a [Keyer] so every consumer hashes the same
// inputs the same way. Key prefixes name the artifact kind (snapshot,
// comparison, view), which also feeds the cache observability hooks.
package cache

import (
	"context"
	"time"
)

// =============================================================================
// Cache Interface
// =============================================================================

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Key Derivation
// =============================================================================

// SnapshotKeyOpts are the inputs that distinguish one parsed snapshot
// from another beyond project and branch.
type SnapshotKeyOpts struct {
	// TreeHash identifies the source tree contents, typically a commit
	// SHA or a content hash of the .tf files.
	TreeHash string `json:"tree_hash"`
}

// ComparisonKeyOpts identify a branch comparison by its two inputs.
type ComparisonKeyOpts struct {
	BaseHash    string `json:"base_hash"`
	CompareHash string `json:"compare_hash"`
}

// ViewKeyOpts identify a computed view (layout plus routed edges) of one
// comparison.
type ViewKeyOpts struct {
	ComparisonHash string `json:"comparison_hash"`
	Format         string `json:"format,omitempty"`
	Detailed       bool   `json:"detailed,omitempty"`
}

// Keyer derives cache keys for the artifact kinds tfcanvas caches.
// Implementations must be deterministic: equal inputs yield equal keys.
type Keyer interface {
	// SnapshotKey derives the key for a parsed snapshot.
	SnapshotKey(project, branch string, opts SnapshotKeyOpts) string

	// ComparisonKey derives the key for a branch comparison.
	ComparisonKey(project string, opts ComparisonKeyOpts) string

	// ViewKey derives the key for a rendered view.
	ViewKey(project string, opts ViewKeyOpts) string
}

// Key prefixes, also used as the keyType reported to cache hooks.
const (
	KeySnapshot   = "snapshot"
	KeyComparison = "comparison"
	KeyView       = "view"
)

// Default TTLs per artifact kind. Snapshots are keyed by content hash and
// can live long; comparisons and views are cheap to recompute.
const (
	TTLSnapshot   = 24 * time.Hour
	TTLComparison = time.Hour
	TTLView       = time.Hour
)

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key derivation.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

func (DefaultKeyer) SnapshotKey(project, branch string, opts SnapshotKeyOpts) string {
	return hashKey(KeySnapshot, project, branch, opts)
}

func (DefaultKeyer) ComparisonKey(project string, opts ComparisonKeyOpts) string {
	return hashKey(KeyComparison, project, opts)
}

func (DefaultKeyer) ViewKey(project string, opts ViewKeyOpts) string {
	return hashKey(KeyView, project, opts)
}
