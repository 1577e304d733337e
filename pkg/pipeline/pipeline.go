// Package pipeline provides the core comparison pipeline for tfcanvas.
//
// This package implements the complete parse → compare → view pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Turn two configuration trees into parsed snapshots
//  2. Compare: Classify every block and dependency across the snapshots
//  3. View: Build the hierarchy, compute box positions, route edges, and
//     render the result in the requested format (JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    BaseDir:    "/repo/main",
//	    CompareDir: "/repo/feature",
//	    BaseLabel:  "main",
//	    CompareLabel: "feature",
//	    Format:     pipeline.FormatSVG,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifact
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/layout"
	"github.com/tfcanvas/tfcanvas/pkg/parse"
	"github.com/tfcanvas/tfcanvas/pkg/route"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultBaseLabel is the branch label used for the base snapshot when
	// none is given.
	DefaultBaseLabel = "base"

	// DefaultCompareLabel is the branch label used for the compare snapshot
	// when none is given.
	DefaultCompareLabel = "compare"

	// DefaultProject is the project name used for cache key scoping when no
	// project is given.
	DefaultProject = "default"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// DefaultFormat is the default output format.
const DefaultFormat = FormatJSON

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the comparison pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	BaseDir      string `json:"base_dir,omitempty"`
	CompareDir   string `json:"compare_dir,omitempty"`
	BaseLabel    string `json:"base_label,omitempty"`
	CompareLabel string `json:"compare_label,omitempty"`
	Project      string `json:"project,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"`

	// View options
	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"` // Include block types and change counts in labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// BaseSnapshot and CompareSnapshot are the two parsed inputs.
	BaseSnapshot    *snapshot.ParsedSnapshot
	CompareSnapshot *snapshot.ParsedSnapshot

	// Comparison classifies every block and dependency across the snapshots.
	Comparison *diff.BranchComparison

	// Boxes are the positioned groups and blocks of the compare snapshot.
	Boxes []layout.Box

	// Edges are the routed dependency edges.
	Edges []route.Edge

	// Artifact is the rendered output in the requested format.
	Artifact []byte

	// ParseErrors lists files that failed to parse, per branch label.
	ParseErrors []parse.FileError

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BlockCount   int
	ChangedCount int
	EdgeCount    int
	ParseTime    time.Duration
	CompareTime  time.Duration
	ViewTime     time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BaseParseHit    bool // Whether the base snapshot came from cache
	CompareParseHit bool // Whether the compare snapshot came from cache
	CompareHit      bool // Whether the comparison came from cache
	RenderHit       bool // Whether the artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetViewDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.CompareDir == "" {
		return fmt.Errorf("compare_dir is required")
	}

	// Parse defaults. A missing base directory means "compare against an
	// empty tree": every block classifies as created.
	if o.BaseLabel == "" {
		o.BaseLabel = DefaultBaseLabel
	}
	if o.CompareLabel == "" {
		o.CompareLabel = DefaultCompareLabel
	}
	if o.Project == "" {
		o.Project = DefaultProject
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// ValidateForCompare applies defaults needed by the compare stage. Unlike
// ValidateForParse it does not require directories, so it also serves
// callers comparing snapshots that were parsed elsewhere.
func (o *Options) ValidateForCompare() error {
	if o.Project == "" {
		o.Project = DefaultProject
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetViewDefaults sets default values for the view stage.
func (o *Options) SetViewDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForView validates and sets defaults for the view stage.
func (o *Options) ValidateForView() error {
	o.SetViewDefaults()
	return ValidateFormat(o.Format)
}
