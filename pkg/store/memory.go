package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tfcanvas/tfcanvas/pkg/errors"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// MemoryStore is an in-memory store for development and testing.
// Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	projects  map[string]*Project
	order     []string
	snapshots map[string]map[string]*snapshot.ParsedSnapshot // projectID → branch → snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:  make(map[string]*Project),
		snapshots: make(map[string]map[string]*snapshot.ParsedSnapshot),
	}
}

func (s *MemoryStore) CreateProject(ctx context.Context, p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[p.ID]; exists {
		return errors.New(errors.ErrCodeInvalidProject, "project %s already exists", p.ID)
	}
	cp := *p
	s.projects[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *MemoryStore) GetProject(ctx context.Context, id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "project %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ListProjects(ctx context.Context) ([]*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Project, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.projects[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return errors.New(errors.ErrCodeProjectNotFound, "project %s not found", id)
	}
	delete(s.projects, id)
	delete(s.snapshots, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) PutSnapshot(ctx context.Context, projectID string, snap *snapshot.ParsedSnapshot) error {
	if snap == nil || snap.BranchLabel == "" {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot must carry a branch label")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return errors.New(errors.ErrCodeProjectNotFound, "project %s not found", projectID)
	}
	branches := s.snapshots[projectID]
	if branches == nil {
		branches = make(map[string]*snapshot.ParsedSnapshot)
		s.snapshots[projectID] = branches
	}
	branches[snap.BranchLabel] = snap
	return nil
}

func (s *MemoryStore) GetSnapshot(ctx context.Context, projectID, branch string) (*snapshot.ParsedSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.projects[projectID]; !ok {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "project %s not found", projectID)
	}
	snap, ok := s.snapshots[projectID][branch]
	if !ok {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot for branch %q", branch)
	}
	return snap, nil
}

func (s *MemoryStore) ListBranches(ctx context.Context, projectID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.projects[projectID]; !ok {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "project %s not found", projectID)
	}
	branches := make([]string, 0, len(s.snapshots[projectID]))
	for branch := range s.snapshots[projectID] {
		branches = append(branches, branch)
	}
	sort.Strings(branches)
	return branches, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
