package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tfcanvas/tfcanvas/pkg/cache"
	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/hierarchy"
	"github.com/tfcanvas/tfcanvas/pkg/layout"
	"github.com/tfcanvas/tfcanvas/pkg/observability"
	"github.com/tfcanvas/tfcanvas/pkg/parse"
	"github.com/tfcanvas/tfcanvas/pkg/render"
	"github.com/tfcanvas/tfcanvas/pkg/route"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → compare → view pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Parse both trees
	parseStart := time.Now()
	base, baseErrs, baseHit, err := r.parseTree(ctx, opts.BaseDir, opts.BaseLabel, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", opts.BaseLabel, err)
	}
	compare, compErrs, compHit, err := r.parseTree(ctx, opts.CompareDir, opts.CompareLabel, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", opts.CompareLabel, err)
	}
	result.BaseSnapshot = base
	result.CompareSnapshot = compare
	result.ParseErrors = append(baseErrs, compErrs...)
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.BlockCount = compare.BlockCount()
	result.CacheInfo.BaseParseHit = baseHit
	result.CacheInfo.CompareParseHit = compHit

	r.Logger.Info("parsed snapshots",
		"base_blocks", base.BlockCount(),
		"compare_blocks", compare.BlockCount(),
		"parse_errors", len(result.ParseErrors),
		"duration", result.Stats.ParseTime)

	// Stage 2: Compare
	compareStart := time.Now()
	comparison, compareHit, err := r.CompareWithCacheInfo(ctx, base, compare, opts)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	result.Comparison = comparison
	result.Stats.CompareTime = time.Since(compareStart)
	result.Stats.ChangedCount = comparison.Summary.Created + comparison.Summary.Modified + comparison.Summary.Deleted
	result.CacheInfo.CompareHit = compareHit

	r.Logger.Info("compared branches",
		"created", comparison.Summary.Created,
		"modified", comparison.Summary.Modified,
		"deleted", comparison.Summary.Deleted,
		"duration", result.Stats.CompareTime)

	// Stage 3: View
	viewStart := time.Now()
	boxes, edges := r.BuildView(ctx, compare, comparison)
	result.Boxes = boxes
	result.Edges = edges
	result.Stats.ViewTime = time.Since(viewStart)
	result.Stats.EdgeCount = len(edges)

	renderStart := time.Now()
	artifact, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("built view",
		"boxes", len(boxes),
		"edges", len(edges),
		"format", opts.Format,
		"duration", result.Stats.ViewTime+result.Stats.RenderTime)

	return result, nil
}

// parseTree parses one directory with caching. A clean parse is cached
// keyed by the tree's content hash; a parse with file errors is returned
// uncached so a fixed tree is never shadowed by a stale entry. An empty dir
// yields an empty snapshot, which compares as "everything created".
func (r *Runner) parseTree(ctx context.Context, dir, label string, opts Options) (*snapshot.ParsedSnapshot, []parse.FileError, bool, error) {
	if dir == "" {
		return &snapshot.ParsedSnapshot{
			Blocks:      map[string][]snapshot.Block{},
			BranchLabel: label,
		}, nil, false, nil
	}

	observability.Pipeline().OnParseStart(ctx, label)
	start := time.Now()

	treeHash, err := parse.TreeHash(dir)
	if err != nil {
		observability.Pipeline().OnParseComplete(ctx, label, 0, time.Since(start), err)
		return nil, nil, false, err
	}
	cacheKey := r.Keyer.SnapshotKey(opts.Project, label, cache.SnapshotKeyOpts{TreeHash: treeHash})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if snap, err := snapshot.Unmarshal(data); err == nil {
				snap.BranchLabel = label
				observability.Cache().OnCacheHit(ctx, cache.KeySnapshot)
				observability.Pipeline().OnParseComplete(ctx, label, snap.BlockCount(), time.Since(start), nil)
				return snap, nil, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeySnapshot)
	}

	snap, fileErrs, err := parse.Dir(dir, label)
	if err != nil {
		observability.Pipeline().OnParseComplete(ctx, label, 0, time.Since(start), err)
		return nil, nil, false, err
	}

	if len(fileErrs) == 0 {
		if data, err := snapshot.Marshal(snap); err == nil {
			if r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot) == nil {
				observability.Cache().OnCacheSet(ctx, cache.KeySnapshot, len(data))
			}
		}
	}

	observability.Pipeline().OnParseComplete(ctx, label, snap.BlockCount(), time.Since(start), nil)
	return snap, fileErrs, false, nil
}

// ParseSnapshot parses one directory into a snapshot, using the cache.
func (r *Runner) ParseSnapshot(ctx context.Context, dir, label string, opts Options) (*snapshot.ParsedSnapshot, []parse.FileError, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, nil, err
	}
	r.applyLogger(&opts)
	snap, fileErrs, _, err := r.parseTree(ctx, dir, label, opts)
	return snap, fileErrs, err
}

// CompareWithCacheInfo diffs two snapshots with caching and returns cache
// hit info. The cache key covers both snapshots' content, so any edit to
// either tree misses.
func (r *Runner) CompareWithCacheInfo(ctx context.Context, base, compare *snapshot.ParsedSnapshot, opts Options) (*diff.BranchComparison, bool, error) {
	if err := opts.ValidateForCompare(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	observability.Pipeline().OnCompareStart(ctx, base.BranchLabel, compare.BranchLabel)
	start := time.Now()

	baseData, err := snapshot.Marshal(base)
	if err != nil {
		return nil, false, fmt.Errorf("serialize base snapshot: %w", err)
	}
	compData, err := snapshot.Marshal(compare)
	if err != nil {
		return nil, false, fmt.Errorf("serialize compare snapshot: %w", err)
	}
	cacheKey := r.Keyer.ComparisonKey(opts.Project, cache.ComparisonKeyOpts{
		BaseHash:    cache.Hash(baseData),
		CompareHash: cache.Hash(compData),
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached diff.BranchComparison
			if err := json.Unmarshal(data, &cached); err == nil {
				changed := cached.Summary.Created + cached.Summary.Modified + cached.Summary.Deleted
				observability.Cache().OnCacheHit(ctx, cache.KeyComparison)
				observability.Pipeline().OnCompareComplete(ctx, base.BranchLabel, compare.BranchLabel, changed, time.Since(start), nil)
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyComparison)
	}

	comparison := diff.Compare(base, compare)

	if data, err := json.Marshal(comparison); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLComparison) == nil {
			observability.Cache().OnCacheSet(ctx, cache.KeyComparison, len(data))
		}
	}

	changed := comparison.Summary.Created + comparison.Summary.Modified + comparison.Summary.Deleted
	observability.Pipeline().OnCompareComplete(ctx, base.BranchLabel, compare.BranchLabel, changed, time.Since(start), nil)
	return comparison, false, nil
}

// Compare is a convenience wrapper that calls CompareWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Compare(ctx context.Context, base, compare *snapshot.ParsedSnapshot, opts Options) (*diff.BranchComparison, error) {
	comparison, _, err := r.CompareWithCacheInfo(ctx, base, compare, opts)
	return comparison, err
}

// BuildView computes box positions and routed edges for the compare
// snapshot. Both computations are pure and cheap, so they always run fresh;
// only the rendered artifact is cached.
func (r *Runner) BuildView(ctx context.Context, compare *snapshot.ParsedSnapshot, comparison *diff.BranchComparison) ([]layout.Box, []route.Edge) {
	observability.Pipeline().OnLayoutStart(ctx, compare.BlockCount())
	layoutStart := time.Now()
	boxes := layout.Build(hierarchy.FromSnapshot(compare))
	observability.Pipeline().OnLayoutComplete(ctx, len(boxes), time.Since(layoutStart), nil)

	observability.Pipeline().OnRouteStart(ctx, len(compare.Dependencies))
	routeStart := time.Now()
	edges := route.Route(compare.Dependencies, boxes, comparison)
	observability.Pipeline().OnRouteComplete(ctx, len(edges), time.Since(routeStart), nil)

	return boxes, edges
}

// viewPayload is the JSON artifact shape.
type viewPayload struct {
	Comparison *diff.BranchComparison `json:"comparison"`
	Boxes      []layout.Box           `json:"boxes"`
	Edges      []route.Edge           `json:"edges"`
}

// RenderWithCacheInfo renders the artifact for the requested format with
// caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForView(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	comparisonData, err := json.Marshal(result.Comparison)
	if err != nil {
		return nil, false, fmt.Errorf("serialize comparison for cache key: %w", err)
	}
	cacheKey := r.Keyer.ViewKey(opts.Project, cache.ViewKeyOpts{
		ComparisonHash: cache.Hash(comparisonData),
		Format:         opts.Format,
		Detailed:       opts.Detailed,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, cache.KeyView)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyView)
	}

	artifact, err := r.renderArtifact(ctx, result, opts)
	if err != nil {
		return nil, false, err
	}

	if r.Cache.Set(ctx, cacheKey, artifact, cache.TTLView) == nil {
		observability.Cache().OnCacheSet(ctx, cache.KeyView, len(artifact))
	}
	return artifact, false, nil
}

// renderArtifact produces the requested output format.
func (r *Runner) renderArtifact(ctx context.Context, result *Result, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return json.MarshalIndent(viewPayload{
			Comparison: result.Comparison,
			Boxes:      result.Boxes,
			Edges:      result.Edges,
		}, "", "  ")
	case FormatDOT:
		dot := render.ToDOT(result.CompareSnapshot, result.Comparison, render.Options{Detailed: opts.Detailed})
		return []byte(dot), nil
	case FormatSVG:
		dot := render.ToDOT(result.CompareSnapshot, result.Comparison, render.Options{Detailed: opts.Detailed})
		return render.SVG(ctx, dot)
	default:
		return nil, fmt.Errorf("invalid format: %q", opts.Format)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
