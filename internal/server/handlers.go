package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/errors"
	"github.com/tfcanvas/tfcanvas/pkg/layout"
	"github.com/tfcanvas/tfcanvas/pkg/pipeline"
	"github.com/tfcanvas/tfcanvas/pkg/route"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
	"github.com/tfcanvas/tfcanvas/pkg/store"
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Projects
// =============================================================================

// createProjectRequest is the POST /api/projects body.
type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if projects == nil {
		projects = []*store.Project{}
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := errors.ValidateProjectName(req.Name); err != nil {
		s.writeError(w, err)
		return
	}

	p := store.NewProject(req.Name, req.Description)
	if err := s.store.CreateProject(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Snapshots
// =============================================================================

func (s *Server) handleListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := s.store.ListBranches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if branches == nil {
		branches = []string{}
	}
	s.writeJSON(w, http.StatusOK, branches)
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	branch := chi.URLParam(r, "branch")
	if err := errors.ValidateBranchName(branch); err != nil {
		s.writeError(w, err)
		return
	}

	var snap snapshot.ParsedSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "invalid snapshot body"))
		return
	}
	if snap.Blocks == nil {
		snap.Blocks = map[string][]snapshot.Block{}
	}
	// The URL is authoritative for the branch label.
	snap.BranchLabel = branch

	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.PutSnapshot(r.Context(), projectID, &snap); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"branch":       branch,
		"block_count":  snap.BlockCount(),
		"dependencies": len(snap.Dependencies),
	})
}

// =============================================================================
// Views
// =============================================================================

// graphResponse is the single-branch view payload.
type graphResponse struct {
	Branch     string       `json:"branch"`
	BlockCount int          `json:"block_count"`
	Boxes      []layout.Box `json:"boxes"`
	Edges      []route.Edge `json:"edges"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidBranch, "branch query parameter is required"))
		return
	}

	snap, err := s.store.GetSnapshot(r.Context(), projectID, branch)
	if err != nil {
		s.writeError(w, err)
		return
	}

	boxes, edges := s.runner.BuildView(r.Context(), snap, nil)
	s.writeJSON(w, http.StatusOK, graphResponse{
		Branch:     branch,
		BlockCount: snap.BlockCount(),
		Boxes:      boxes,
		Edges:      edges,
	})
}

// compareResponse is the two-branch view payload.
type compareResponse struct {
	Comparison *diff.BranchComparison `json:"comparison"`
	Boxes      []layout.Box           `json:"boxes"`
	Edges      []route.Edge           `json:"edges"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	q := r.URL.Query()
	baseBranch, compareBranch := q.Get("base"), q.Get("compare")
	if baseBranch == "" || compareBranch == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "base and compare query parameters are required"))
		return
	}

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unsupported format"))
		return
	}

	base, err := s.store.GetSnapshot(r.Context(), projectID, baseBranch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	compare, err := s.store.GetSnapshot(r.Context(), projectID, compareBranch)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Project:  projectID,
		Format:   format,
		Detailed: q.Get("detailed") == "true",
		Logger:   s.logger,
	}
	comparison, err := s.runner.Compare(r.Context(), base, compare, opts)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "compare failed"))
		return
	}
	boxes, edges := s.runner.BuildView(r.Context(), compare, comparison)

	if format == pipeline.FormatJSON {
		s.writeJSON(w, http.StatusOK, compareResponse{
			Comparison: comparison,
			Boxes:      boxes,
			Edges:      edges,
		})
		return
	}

	result := &pipeline.Result{
		BaseSnapshot:    base,
		CompareSnapshot: compare,
		Comparison:      comparison,
		Boxes:           boxes,
		Edges:           edges,
	}
	artifact, _, err := s.runner.RenderWithCacheInfo(r.Context(), result, opts)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render failed"))
		return
	}

	switch format {
	case pipeline.FormatDOT:
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}
