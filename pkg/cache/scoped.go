package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The API server uses this to give each user or deployment its own cache
// namespace on a shared Redis instance.
//
// Example usage:
//
//	// User-specific keys for private projects
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Global keys for shared projects
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) SnapshotKey(project, branch string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(project, branch, opts)
}

// ComparisonKey generates a prefixed key for comparison caching.
func (k *ScopedKeyer) ComparisonKey(project string, opts ComparisonKeyOpts) string {
	return k.prefix + k.inner.ComparisonKey(project, opts)
}

// ViewKey generates a prefixed key for view caching.
func (k *ScopedKeyer) ViewKey(project string, opts ViewKeyOpts) string {
	return k.prefix + k.inner.ViewKey(project, opts)
}
