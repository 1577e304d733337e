package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

func testComparison() *diff.BranchComparison {
	base := &snapshot.ParsedSnapshot{
		BranchLabel: "main",
		Blocks: map[string][]snapshot.Block{
			snapshot.BlockResource: {
				{BlockType: snapshot.BlockResource, ResourceType: "aws_instance", Name: "web", Address: "aws_instance.web",
					Config: map[string]any{"ami": "ami-123"}},
				{BlockType: snapshot.BlockResource, ResourceType: "aws_instance", Name: "old", Address: "aws_instance.old"},
			},
		},
	}
	compare := &snapshot.ParsedSnapshot{
		BranchLabel: "feature",
		Blocks: map[string][]snapshot.Block{
			snapshot.BlockResource: {
				{BlockType: snapshot.BlockResource, ResourceType: "aws_instance", Name: "web", Address: "aws_instance.web",
					Config: map[string]any{"ami": "ami-789"}},
				{BlockType: snapshot.BlockResource, ResourceType: "aws_s3_bucket", Name: "logs", Address: "aws_s3_bucket.logs"},
			},
		},
	}
	return diff.Compare(base, compare)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestChangeListModelEntries(t *testing.T) {
	m := newChangeListModel(testComparison())

	if len(m.entries) != 3 {
		t.Fatalf("entries = %d, want 3 (unchanged blocks excluded)", len(m.entries))
	}
	// Address order.
	want := []string{"aws_instance.old", "aws_instance.web", "aws_s3_bucket.logs"}
	for i, addr := range want {
		if m.entries[i].Address != addr {
			t.Errorf("entries[%d] = %s, want %s", i, m.entries[i].Address, addr)
		}
	}
}

func TestChangeListModelNavigation(t *testing.T) {
	var m tea.Model = newChangeListModel(testComparison())

	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("down")) // clamped at last entry
	if got := m.(changeListModel).cursor; got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}

	m, _ = m.Update(keyMsg("up"))
	if got := m.(changeListModel).cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
}

func TestChangeListModelDetailToggle(t *testing.T) {
	var m tea.Model = newChangeListModel(testComparison())

	// Move to aws_instance.web (modified) and open details.
	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("enter"))

	view := m.(changeListModel).View()
	if !strings.Contains(view, "aws_instance.web") {
		t.Errorf("detail view missing address:\n%s", view)
	}
	if !strings.Contains(view, "ami") {
		t.Errorf("detail view missing changed attribute:\n%s", view)
	}

	// Escape returns to the list without quitting.
	m, cmd := m.Update(keyMsg("esc"))
	if cmd != nil {
		t.Error("esc from detail view should not quit")
	}
	if m.(changeListModel).showDiff {
		t.Error("detail pane still open after esc")
	}

	// A second escape quits.
	_, cmd = m.Update(keyMsg("esc"))
	if cmd == nil {
		t.Error("esc from list view should quit")
	}
}

func TestChangeListModelListView(t *testing.T) {
	m := newChangeListModel(testComparison())
	view := m.View()

	for _, want := range []string{"main", "feature", "aws_instance.old", "deleted", "created", "modified"} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing %q:\n%s", want, view)
		}
	}
}
