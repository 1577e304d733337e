// Package diff matches configuration blocks across two snapshots and
// classifies what changed.
//
// Compare is a pure function: it never mutates its inputs, performs no I/O,
// and produces deep-equal results for deep-equal inputs, so callers can
// re-run it on every upstream change.
package diff

import (
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// =============================================================================
// Classification
// =============================================================================

// Classification describes how a block changed between two snapshots.
type Classification string

const (
	Created   Classification = "created"
	Modified  Classification = "modified"
	Deleted   Classification = "deleted"
	Unchanged Classification = "unchanged"
)

// =============================================================================
// Delta Types
// =============================================================================

// ValueChange holds the old and new value of a modified config key.
type ValueChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ConfigDelta is the result of diffing two blocks' config maps.
type ConfigDelta struct {
	Added    map[string]any         `json:"added,omitempty" bson:"added,omitempty"`
	Removed  map[string]any         `json:"removed,omitempty" bson:"removed,omitempty"`
	Modified map[string]ValueChange `json:"modified,omitempty" bson:"modified,omitempty"`
}

// Empty reports whether the delta records no changes.
func (d *ConfigDelta) Empty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0)
}

// DependencyDelta lists dependency edges present in only one snapshot.
type DependencyDelta struct {
	Added   []snapshot.Dependency `json:"added,omitempty" bson:"added,omitempty"`
	Removed []snapshot.Dependency `json:"removed,omitempty" bson:"removed,omitempty"`
}

// Empty reports whether the delta records no changes.
func (d *DependencyDelta) Empty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0)
}

// =============================================================================
// BranchComparison
// =============================================================================

// BlockDiff is the per-block comparison result.
type BlockDiff struct {
	Address        string         `json:"address" bson:"address"`
	Classification Classification `json:"classification" bson:"classification"`

	// Block is the compare-side payload, or the base-side payload for
	// deleted blocks.
	Block snapshot.Block `json:"block" bson:"block"`

	Config       *ConfigDelta     `json:"config_delta,omitempty" bson:"config_delta,omitempty"`
	Dependencies *DependencyDelta `json:"dependency_delta,omitempty" bson:"dependency_delta,omitempty"`
}

// Summary tallies classifications.
type Summary struct {
	Created   int `json:"created" bson:"created"`
	Modified  int `json:"modified" bson:"modified"`
	Deleted   int `json:"deleted" bson:"deleted"`
	Unchanged int `json:"unchanged" bson:"unchanged"`
	Total     int `json:"total" bson:"total"`
}

// BranchComparison is the full diff between two snapshots.
type BranchComparison struct {
	BaseLabel    string `json:"base_label" bson:"base_label"`
	CompareLabel string `json:"compare_label" bson:"compare_label"`

	PerBlock map[string]BlockDiff `json:"per_block" bson:"per_block"`

	// GlobalDependencies is the dependency delta over the full, unfiltered
	// dependency lists of both snapshots.
	GlobalDependencies DependencyDelta `json:"global_dependencies" bson:"global_dependencies"`

	Summary Summary `json:"summary" bson:"summary"`

	// Collision counts per side. Duplicate addresses within one snapshot
	// resolve last-write-wins; the count surfaces the dropped blocks.
	BaseCollisions    int `json:"base_collisions,omitempty" bson:"base_collisions,omitempty"`
	CompareCollisions int `json:"compare_collisions,omitempty" bson:"compare_collisions,omitempty"`
}

// Lookup returns the diff entry for an address, if classified.
func (c *BranchComparison) Lookup(addr string) (BlockDiff, bool) {
	d, ok := c.PerBlock[addr]
	return d, ok
}

// DependencyStatus reports whether the given dependency was added or
// removed globally. Returns Unchanged for edges present in both snapshots.
func (c *BranchComparison) DependencyStatus(dep snapshot.Dependency) Classification {
	key := dep.Key()
	for _, d := range c.GlobalDependencies.Added {
		if d.Key() == key {
			return Created
		}
	}
	for _, d := range c.GlobalDependencies.Removed {
		if d.Key() == key {
			return Deleted
		}
	}
	return Unchanged
}

// =============================================================================
// Compare
// =============================================================================

// Compare diffs two snapshots. Nil snapshots are treated as empty; the
// result classifies every address in the union of both sides exactly once.
func Compare(base, compare *snapshot.ParsedSnapshot) *BranchComparison {
	if base == nil {
		base = &snapshot.ParsedSnapshot{}
	}
	if compare == nil {
		compare = &snapshot.ParsedSnapshot{}
	}

	baseIdx := snapshot.NewIndex(base)
	compIdx := snapshot.NewIndex(compare)

	result := &BranchComparison{
		BaseLabel:         base.BranchLabel,
		CompareLabel:      compare.BranchLabel,
		PerBlock:          make(map[string]BlockDiff),
		BaseCollisions:    baseIdx.Collisions,
		CompareCollisions: compIdx.Collisions,
	}

	for _, addr := range unionAddresses(baseIdx, compIdx) {
		baseBlock, inBase := baseIdx.Get(addr)
		compBlock, inComp := compIdx.Get(addr)

		var d BlockDiff
		d.Address = addr

		switch {
		case !inBase:
			d.Classification = Created
			d.Block = compBlock
		case !inComp:
			d.Classification = Deleted
			d.Block = baseBlock
		default:
			d.Block = compBlock
			cfg := diffConfig(baseBlock.Config, compBlock.Config)
			deps := diffBlockDependencies(addr, base.Dependencies, compare.Dependencies)
			if !cfg.Empty() {
				d.Config = cfg
			}
			if !deps.Empty() {
				d.Dependencies = deps
			}
			if d.Config != nil || d.Dependencies != nil {
				d.Classification = Modified
			} else {
				d.Classification = Unchanged
			}
		}

		result.PerBlock[addr] = d

		switch d.Classification {
		case Created:
			result.Summary.Created++
		case Modified:
			result.Summary.Modified++
		case Deleted:
			result.Summary.Deleted++
		case Unchanged:
			result.Summary.Unchanged++
		}
		result.Summary.Total++
	}

	result.GlobalDependencies = *diffDependencies(base.Dependencies, compare.Dependencies)

	return result
}

// unionAddresses returns base addresses in order followed by compare-only
// addresses in order.
func unionAddresses(base, compare *snapshot.Index) []string {
	out := base.Addresses()
	for _, addr := range compare.Addresses() {
		if !base.Has(addr) {
			out = append(out, addr)
		}
	}
	return out
}

// diffConfig computes the per-key delta between two config maps.
// Missing or malformed config degrades to an empty map.
func diffConfig(oldCfg, newCfg map[string]any) *ConfigDelta {
	d := &ConfigDelta{
		Added:    map[string]any{},
		Removed:  map[string]any{},
		Modified: map[string]ValueChange{},
	}

	for key, oldVal := range oldCfg {
		newVal, ok := newCfg[key]
		if !ok {
			d.Removed[key] = oldVal
			continue
		}
		if !valueEqual(oldVal, newVal) {
			d.Modified[key] = ValueChange{Old: oldVal, New: newVal}
		}
	}
	for key, newVal := range newCfg {
		if _, ok := oldCfg[key]; !ok {
			d.Added[key] = newVal
		}
	}

	return d
}

// diffBlockDependencies scopes the dependency delta to edges touching addr.
func diffBlockDependencies(addr string, baseDeps, compDeps []snapshot.Dependency) *DependencyDelta {
	return diffDependencies(filterTouching(addr, baseDeps), filterTouching(addr, compDeps))
}

// diffDependencies set-differences two dependency lists on their identity
// keys, preserving input order.
func diffDependencies(baseDeps, compDeps []snapshot.Dependency) *DependencyDelta {
	baseKeys := make(map[string]bool, len(baseDeps))
	for _, dep := range baseDeps {
		baseKeys[dep.Key()] = true
	}
	compKeys := make(map[string]bool, len(compDeps))
	for _, dep := range compDeps {
		compKeys[dep.Key()] = true
	}

	d := &DependencyDelta{}
	for _, dep := range compDeps {
		if !baseKeys[dep.Key()] {
			d.Added = append(d.Added, dep)
		}
	}
	for _, dep := range baseDeps {
		if !compKeys[dep.Key()] {
			d.Removed = append(d.Removed, dep)
		}
	}
	return d
}

func filterTouching(addr string, deps []snapshot.Dependency) []snapshot.Dependency {
	var out []snapshot.Dependency
	for _, dep := range deps {
		if dep.From == addr || dep.To == addr {
			out = append(out, dep)
		}
	}
	return out
}
