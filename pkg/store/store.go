// Package store persists projects and their parsed snapshots.
//
// This package defines the storage interface with implementations for
// different backends:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for the API server
//
// A project owns one snapshot per branch label; storing a snapshot for an
// existing branch replaces it. Comparisons and views are derived data and
// are never persisted here — they belong to the cache.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// Project is a registered infrastructure configuration repository.
type Project struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// NewProject creates a project with a fresh random ID.
func NewProject(name, description string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Store is the interface for project and snapshot persistence backends.
type Store interface {
	// CreateProject persists a new project.
	CreateProject(ctx context.Context, p *Project) error

	// GetProject retrieves a project by ID.
	// Returns a PROJECT_NOT_FOUND error when the ID is unknown.
	GetProject(ctx context.Context, id string) (*Project, error)

	// ListProjects returns all projects ordered by creation time.
	ListProjects(ctx context.Context) ([]*Project, error)

	// DeleteProject removes a project and all of its snapshots.
	DeleteProject(ctx context.Context, id string) error

	// PutSnapshot stores a snapshot under its branch label, replacing any
	// previous snapshot of the same branch.
	PutSnapshot(ctx context.Context, projectID string, snap *snapshot.ParsedSnapshot) error

	// GetSnapshot retrieves the snapshot for one branch.
	// Returns a SNAPSHOT_NOT_FOUND error when the branch has none.
	GetSnapshot(ctx context.Context, projectID, branch string) (*snapshot.ParsedSnapshot, error)

	// ListBranches returns the branch labels with stored snapshots,
	// sorted lexically.
	ListBranches(ctx context.Context, projectID string) ([]string, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
