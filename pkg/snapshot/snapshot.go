// Package snapshot defines the canonical data model for parsed
// infrastructure-as-code configurations.
//
// A ParsedSnapshot is the full block + dependency set for one branch or
// session at one point in time. It is produced by pkg/parse (or by an
// external parsing service) and consumed read-only by the diff, hierarchy,
// layout, and routing packages.
//
// The format is designed for round-trip fidelity: a snapshot serialized to
// JSON and read back compares deep-equal to the original.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Block types recognized in a snapshot.
const (
	BlockResource  = "resource"
	BlockData      = "data"
	BlockModule    = "module"
	BlockOutput    = "output"
	BlockVariable  = "variable"
	BlockLocals    = "locals"
	BlockProvider  = "provider"
	BlockTerraform = "terraform"
)

// BlockTypes lists all known block types in canonical order.
// Iteration over a snapshot's blocks follows this order for determinism.
var BlockTypes = []string{
	BlockResource,
	BlockData,
	BlockModule,
	BlockOutput,
	BlockVariable,
	BlockLocals,
	BlockProvider,
	BlockTerraform,
}

// Dependency types.
const (
	DepResourceToResource = "resource_to_resource"
	DepModule             = "module_dependency"
	DepDatasource         = "datasource_dependency"
	DepVariableReference  = "variable_reference"
	DepLocalReference     = "local_reference"
)

// =============================================================================
// Block - Single Configuration Entity
// =============================================================================

// Block is a single named configuration entity parsed from an
// infrastructure-as-code source tree.
type Block struct {
	BlockType    string `json:"block_type" bson:"block_type"`
	Name         string `json:"name,omitempty" bson:"name,omitempty"`
	ResourceType string `json:"resource_type,omitempty" bson:"resource_type,omitempty"`

	// Address uniquely identifies the block within one snapshot.
	// When empty it is derived deterministically from type and name.
	Address string `json:"address" bson:"address"`

	// Config holds the block's attribute values as plain Go values
	// (string, float64, bool, []any, map[string]any, nil).
	Config map[string]any `json:"config,omitempty" bson:"config,omitempty"`

	// GroupPath is the slash-delimited directory path of the block's
	// source file relative to the project root. "" means root.
	GroupPath string `json:"group_path" bson:"group_path"`

	// FileName is the source file name without extension.
	FileName string `json:"file_name,omitempty" bson:"file_name,omitempty"`
}

// Label returns a short display label for the block.
func (b *Block) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Addr()
}

// =============================================================================
// Dependency - Directed Typed Reference
// =============================================================================

// Dependency is a directed, typed reference from one block to another.
// Blocks are referenced by address only, never by pointer, so a cyclic
// dependency graph cannot create ownership cycles elsewhere.
type Dependency struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
	Type string `json:"type" bson:"type"`

	TargetAttribute string `json:"target_attribute,omitempty" bson:"target_attribute,omitempty"`
	TargetOutput    string `json:"target_output,omitempty" bson:"target_output,omitempty"`
}

// Key returns the identity key of the dependency. Two dependencies with the
// same key are the same edge regardless of attribute metadata.
func (d Dependency) Key() string {
	return d.From + "\x00" + d.To + "\x00" + d.Type
}

// =============================================================================
// ParsedSnapshot - One Branch at One Point in Time
// =============================================================================

// ParsedSnapshot is the full block and dependency set parsed for one
// branch or session.
type ParsedSnapshot struct {
	// Blocks maps block type to the blocks of that type, in source order.
	Blocks map[string][]Block `json:"blocks" bson:"blocks"`

	Dependencies []Dependency `json:"dependencies,omitempty" bson:"dependencies,omitempty"`

	// BranchLabel names the branch or session this snapshot was parsed from.
	BranchLabel string `json:"branch_label,omitempty" bson:"branch_label,omitempty"`
}

// All returns every block in the snapshot in canonical block-type order,
// preserving source order within each type. Unknown block types follow the
// known ones, sorted by name so repeated calls return the same order.
func (s *ParsedSnapshot) All() []Block {
	var out []Block
	seen := make(map[string]bool, len(BlockTypes))
	for _, bt := range BlockTypes {
		seen[bt] = true
		out = append(out, s.Blocks[bt]...)
	}
	var unknown []string
	for bt := range s.Blocks {
		if !seen[bt] {
			unknown = append(unknown, bt)
		}
	}
	sort.Strings(unknown)
	for _, bt := range unknown {
		out = append(out, s.Blocks[bt]...)
	}
	return out
}

// BlockCount returns the total number of blocks across all types.
func (s *ParsedSnapshot) BlockCount() int {
	n := 0
	for _, blocks := range s.Blocks {
		n += len(blocks)
	}
	return n
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal serializes a snapshot to pretty-printed JSON bytes.
func Marshal(s *ParsedSnapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal deserializes JSON bytes into a snapshot.
func Unmarshal(data []byte) (*ParsedSnapshot, error) {
	var s ParsedSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if s.Blocks == nil {
		s.Blocks = map[string][]Block{}
	}
	return &s, nil
}

// WriteFile writes a snapshot to a JSON file.
func WriteFile(s *ParsedSnapshot, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a snapshot from a JSON file.
func ReadFile(path string) (*ParsedSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
