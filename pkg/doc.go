// Package pkg provides the core libraries for tfcanvas.
//
// # Overview
//
// tfcanvas turns infrastructure-as-code configuration trees into spatial
// graph views and diffs them branch against branch. The pkg directory is
// organized around the data flow:
//
//	Configuration tree (.tf files)
//	         ↓
//	    [parse] package (blocks, addresses, typed dependencies)
//	         ↓
//	    [diff] package (classify blocks across two snapshots)
//	         ↓
//	    [hierarchy] + [layout] packages (group trie, box positions)
//	         ↓
//	    [route] package (anchored dependency edges)
//	         ↓
//	    [render] package (DOT / SVG artifacts)
//
// The [pipeline] package orchestrates the full run with caching; [snapshot]
// holds the shared data model. Everything from diff down is pure: no IO, no
// panics, deterministic output for identical input.
//
// # Infrastructure
//
// [cache] - Cache interface with file, Redis, and null backends plus the
// SHA-256 key derivation shared by CLI and server.
//
// [store] - Project and snapshot persistence (memory and MongoDB).
//
// [errors] - Structured errors with machine-readable codes, used at the
// edges; core packages return plain values instead of failing.
//
// [observability] - Pluggable hooks for pipeline, cache, and server events.
//
// [snapshot]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/snapshot
// [parse]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/parse
// [diff]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/diff
// [hierarchy]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/hierarchy
// [layout]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/layout
// [route]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/route
// [render]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/cache
// [store]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/store
// [errors]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/errors
// [observability]: https://pkg.go.dev/github.com/tfcanvas/tfcanvas/pkg/observability
package pkg
