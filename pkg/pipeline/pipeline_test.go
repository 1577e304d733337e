package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/tfcanvas/tfcanvas/pkg/cache"
	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/observability"
)

// writeTree materializes a map of relative path → file contents under dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

const baseMain = `
resource "aws_instance" "web" {
  ami           = "ami-123"
  instance_type = "t2.micro"
}

resource "aws_instance" "old" {
  ami = "ami-456"
}
`

const compareMain = `
resource "aws_instance" "web" {
  ami           = "ami-789"
  instance_type = "t2.micro"
}

resource "aws_s3_bucket" "logs" {
  bucket = "logs"
}
`

func testOptions(t *testing.T) Options {
	t.Helper()
	baseDir := t.TempDir()
	compareDir := t.TempDir()
	writeTree(t, baseDir, map[string]string{"main.tf": baseMain})
	writeTree(t, compareDir, map[string]string{"main.tf": compareMain})
	return Options{
		BaseDir:      baseDir,
		CompareDir:   compareDir,
		BaseLabel:    "main",
		CompareLabel: "feature",
		Logger:       discardLogger(),
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{CompareDir: "/tmp/x"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.BaseLabel != DefaultBaseLabel {
		t.Errorf("BaseLabel = %q, want %q", opts.BaseLabel, DefaultBaseLabel)
	}
	if opts.CompareLabel != DefaultCompareLabel {
		t.Errorf("CompareLabel = %q, want %q", opts.CompareLabel, DefaultCompareLabel)
	}
	if opts.Project != DefaultProject {
		t.Errorf("Project = %q, want %q", opts.Project, DefaultProject)
	}
	if opts.Format != FormatJSON {
		t.Errorf("Format = %q, want %q", opts.Format, FormatJSON)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// Idempotent: a second call must not error or change anything.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults: %v", err)
	}
}

func TestOptionsValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"missing compare dir", Options{}, "compare_dir is required"},
		{"bad format", Options{CompareDir: "/tmp/x", Format: "png"}, "invalid format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, discardLogger())
	result, err := runner.Execute(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.BaseSnapshot.BranchLabel != "main" {
		t.Errorf("base label = %q", result.BaseSnapshot.BranchLabel)
	}
	if len(result.ParseErrors) != 0 {
		t.Errorf("parse errors: %v", result.ParseErrors)
	}

	wantClass := map[string]diff.Classification{
		"aws_instance.web":   diff.Modified,
		"aws_s3_bucket.logs": diff.Created,
		"aws_instance.old":   diff.Deleted,
	}
	for addr, want := range wantClass {
		bd, ok := result.Comparison.Lookup(addr)
		if !ok {
			t.Fatalf("no diff entry for %s", addr)
		}
		if bd.Classification != want {
			t.Errorf("%s classified %s, want %s", addr, bd.Classification, want)
		}
	}

	if result.Stats.BlockCount != 2 {
		t.Errorf("BlockCount = %d, want 2", result.Stats.BlockCount)
	}
	if result.Stats.ChangedCount != 3 {
		t.Errorf("ChangedCount = %d, want 3", result.Stats.ChangedCount)
	}
	if len(result.Boxes) == 0 {
		t.Error("no boxes")
	}

	// Default format is JSON; the artifact must round-trip.
	var payload struct {
		Comparison *diff.BranchComparison `json:"comparison"`
	}
	if err := json.Unmarshal(result.Artifact, &payload); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if payload.Comparison.Summary.Modified != 1 {
		t.Errorf("artifact summary modified = %d, want 1", payload.Comparison.Summary.Modified)
	}
}

func TestExecuteEmptyBase(t *testing.T) {
	compareDir := t.TempDir()
	writeTree(t, compareDir, map[string]string{"main.tf": compareMain})

	runner := NewRunner(nil, nil, discardLogger())
	result, err := runner.Execute(context.Background(), Options{
		CompareDir: compareDir,
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Comparison.Summary.Created != 2 {
		t.Errorf("created = %d, want 2", result.Comparison.Summary.Created)
	}
	if result.Comparison.Summary.Deleted != 0 {
		t.Errorf("deleted = %d, want 0", result.Comparison.Summary.Deleted)
	}
}

func TestExecuteDOTFormat(t *testing.T) {
	opts := testOptions(t)
	opts.Format = FormatDOT

	runner := NewRunner(nil, nil, discardLogger())
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	dot := string(result.Artifact)
	if !strings.HasPrefix(dot, "digraph") {
		t.Errorf("artifact does not start with digraph: %.40q", dot)
	}
	if !strings.Contains(dot, "aws_s3_bucket.logs") {
		t.Error("artifact missing created block")
	}
}

func TestExecuteCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, discardLogger())
	defer runner.Close()

	opts := testOptions(t)

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.CompareParseHit || first.CacheInfo.CompareHit || first.CacheInfo.RenderHit {
		t.Errorf("first run reported cache hits: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.BaseParseHit || !second.CacheInfo.CompareParseHit {
		t.Errorf("second run missed snapshot cache: %+v", second.CacheInfo)
	}
	if !second.CacheInfo.CompareHit {
		t.Error("second run missed comparison cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run missed view cache")
	}
	if string(second.Artifact) != string(first.Artifact) {
		t.Error("cached artifact differs from computed artifact")
	}

	// Refresh bypasses every cache.
	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.BaseParseHit || third.CacheInfo.CompareHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run reported cache hits: %+v", third.CacheInfo)
	}
}

func TestExecuteCacheMissOnEdit(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, discardLogger())
	defer runner.Close()

	opts := testOptions(t)
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("first Execute: %v", err)
	}

	// Editing the compare tree must invalidate its snapshot entry.
	writeTree(t, opts.CompareDir, map[string]string{"extra.tf": `
resource "aws_sqs_queue" "q" {
  name = "q"
}
`})
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if second.CacheInfo.CompareParseHit {
		t.Error("edited tree hit the snapshot cache")
	}
	if !second.CacheInfo.BaseParseHit {
		t.Error("untouched base tree missed the snapshot cache")
	}
	if _, ok := second.Comparison.Lookup("aws_sqs_queue.q"); !ok {
		t.Error("new block missing from comparison")
	}
}

func TestParseSnapshotReportsFileErrors(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"ok.tf":     `resource "aws_instance" "web" {}`,
		"broken.tf": `resource "aws_instance" {`,
	})

	runner := NewRunner(nil, nil, discardLogger())
	snap, fileErrs, err := runner.ParseSnapshot(context.Background(), dir, "main", Options{CompareDir: dir})
	if err != nil {
		t.Fatalf("ParseSnapshot: %v", err)
	}
	if len(fileErrs) != 1 || fileErrs[0].File != "broken.tf" {
		t.Fatalf("fileErrs = %v, want one entry for broken.tf", fileErrs)
	}
	if snap.BlockCount() != 1 {
		t.Errorf("BlockCount = %d, want 1", snap.BlockCount())
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets map[string]int
}

func newCountingCacheHooks() *countingCacheHooks {
	return &countingCacheHooks{
		hits:   map[string]int{},
		misses: map[string]int{},
		sets:   map[string]int{},
	}
}

func (h *countingCacheHooks) OnCacheHit(_ context.Context, keyType string) { h.hits[keyType]++ }
func (h *countingCacheHooks) OnCacheMiss(_ context.Context, keyType string) { h.misses[keyType]++ }
func (h *countingCacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.sets[keyType]++
}

func TestExecuteReportsCacheEvents(t *testing.T) {
	hooks := newCountingCacheHooks()
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, discardLogger())

	if _, err := runner.Execute(context.Background(), testOptions(t)); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wantCold := map[string]int{cache.KeySnapshot: 2, cache.KeyComparison: 1, cache.KeyView: 1}
	if diff := cmp.Diff(wantCold, hooks.misses); diff != "" {
		t.Errorf("cold run misses mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantCold, hooks.sets); diff != "" {
		t.Errorf("cold run sets mismatch (-want +got):\n%s", diff)
	}
	if len(hooks.hits) != 0 {
		t.Errorf("cold run hits = %v, want none", hooks.hits)
	}

	hooks2 := newCountingCacheHooks()
	observability.SetCacheHooks(hooks2)

	if _, err := runner.Execute(context.Background(), testOptions(t)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff(wantCold, hooks2.hits); diff != "" {
		t.Errorf("warm run hits mismatch (-want +got):\n%s", diff)
	}
	if len(hooks2.misses) != 0 {
		t.Errorf("warm run misses = %v, want none", hooks2.misses)
	}
}
