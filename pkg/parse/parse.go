// Package parse turns a directory tree of HCL configuration files into a
// [snapshot.ParsedSnapshot].
//
// Parsing is syntax-only: expressions are evaluated with no variable scope,
// so literal values come out as plain Go values while references and
// interpolations fall back to their source text. References are not lost,
// though — every traversal found in an expression becomes a typed
// [snapshot.Dependency].
//
// Parse errors degrade per file: a file that fails to parse is reported in
// the returned error list and the remaining files still contribute to the
// snapshot.
package parse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// configExt is the file extension of parseable configuration files.
const configExt = ".tf"

// ignoredDirs are directory names never descended into during the walk.
var ignoredDirs = map[string]bool{
	".git":         true,
	".terraform":   true,
	".vscode":      true,
	".idea":        true,
	"node_modules": true,
}

// =============================================================================
// Types
// =============================================================================

// FileError reports a file that failed to parse. The rest of the tree is
// unaffected.
type FileError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// =============================================================================
// Directory Parsing
// =============================================================================

// Dir parses every .tf file under root into one snapshot labeled with
// branchLabel. File order is the lexical walk order, so the result is
// deterministic for a given tree.
//
// The returned FileError slice lists files that could not be parsed; it is
// empty on a clean tree. The error return is reserved for failures of the
// walk itself (for example a missing root directory).
func Dir(root, branchLabel string) (*snapshot.ParsedSnapshot, []FileError, error) {
	files, err := configFiles(root)
	if err != nil {
		return nil, nil, err
	}

	snap := &snapshot.ParsedSnapshot{
		Blocks:      map[string][]snapshot.Block{},
		BranchLabel: branchLabel,
	}

	var fileErrs []FileError
	seenDeps := make(map[string]bool)

	for _, rel := range files {
		src, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			fileErrs = append(fileErrs, FileError{File: rel, Message: err.Error()})
			continue
		}

		blocks, deps, err := parseFile(src, rel)
		if err != nil {
			fileErrs = append(fileErrs, FileError{File: rel, Message: err.Error()})
			continue
		}

		for _, b := range blocks {
			snap.Blocks[b.BlockType] = append(snap.Blocks[b.BlockType], b)
		}
		for _, d := range deps {
			if seenDeps[d.Key()] {
				continue
			}
			seenDeps[d.Key()] = true
			snap.Dependencies = append(snap.Dependencies, d)
		}
	}

	return snap, fileErrs, nil
}

// configFiles returns the relative paths of all .tf files under root in
// lexical walk order, skipping ignored directories.
func configFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), configExt) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// TreeHash returns a content hash over every .tf file under root, covering
// both file paths and file bytes. Two trees with identical configuration
// hash the same regardless of modification times, which makes the hash a
// stable cache key for parsed snapshots.
func TreeHash(root string) (string, error) {
	files, err := configFiles(root)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, rel := range files {
		src, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", rel, err)
		}
		fmt.Fprintf(h, "%s\x00%d\x00", rel, len(src))
		h.Write(src)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// =============================================================================
// File Parsing
// =============================================================================

// parseFile parses one file's source into blocks and dependencies. rel is
// the slash-delimited path of the file relative to the project root; it
// supplies both the group path and the file name recorded on each block.
func parseFile(src []byte, rel string) ([]snapshot.Block, []snapshot.Dependency, error) {
	file, diags := hclsyntax.ParseConfig(src, rel, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, nil, nil
	}

	groupPath := ""
	if dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." {
		groupPath = dir
	}
	fileName := strings.TrimSuffix(filepath.Base(rel), configExt)

	var blocks []snapshot.Block
	var deps []snapshot.Dependency

	for _, blk := range body.Blocks {
		b := newBlock(blk, groupPath, fileName)
		b.Config = bodyToConfig(blk.Body, src)
		b.Address = b.Addr()
		blocks = append(blocks, b)

		deps = append(deps, blockDependencies(b.Address, blk.Body)...)
	}

	return blocks, deps, nil
}

// newBlock maps an HCL block header to the snapshot model. Labels carry the
// type and name for resources and data sources, just the name for modules,
// outputs, variables and providers, and nothing for locals and terraform
// blocks.
func newBlock(blk *hclsyntax.Block, groupPath, fileName string) snapshot.Block {
	b := snapshot.Block{
		BlockType: blk.Type,
		GroupPath: groupPath,
		FileName:  fileName,
	}
	switch blk.Type {
	case snapshot.BlockResource, snapshot.BlockData:
		if len(blk.Labels) >= 2 {
			b.ResourceType = blk.Labels[0]
			b.Name = blk.Labels[1]
		}
	case snapshot.BlockModule, snapshot.BlockOutput, snapshot.BlockVariable, snapshot.BlockProvider:
		if len(blk.Labels) >= 1 {
			b.Name = blk.Labels[0]
		}
	case snapshot.BlockLocals, snapshot.BlockTerraform:
		// No labels.
	default:
		if len(blk.Labels) >= 1 {
			b.Name = blk.Labels[0]
		}
	}
	return b
}
