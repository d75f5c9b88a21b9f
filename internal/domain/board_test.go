package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewBoard(t *testing.T) {
	owner := uuid.New()

	board, err := NewBoard(" Sprint 1 ", "", true, owner)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if board.Name != "Sprint 1" {
		t.Errorf("Expected trimmed name, got %q", board.Name)
	}
	if board.OwnerID != owner {
		t.Errorf("Expected owner %s, got %s", owner, board.OwnerID)
	}

	if _, err := NewBoard("", "", false, owner); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for empty name, got %v", err)
	}
	if _, err := NewBoard(strings.Repeat("n", 101), "", false, owner); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for long name, got %v", err)
	}
	if _, err := NewBoard("ok", "", false, uuid.Nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Expected invalid ID error for nil owner, got %v", err)
	}
}

func TestBoardVisibleTo(t *testing.T) {
	private := &Board{IsPublic: false}
	public := &Board{IsPublic: true}
	user := &User{ID: uuid.New()}

	if private.VisibleTo(nil) {
		t.Error("Private board must be hidden from anonymous callers")
	}
	if !private.VisibleTo(user) {
		t.Error("Private board must be visible to authenticated callers")
	}
	if !public.VisibleTo(nil) {
		t.Error("Public board must be visible to anonymous callers")
	}
}

func TestBoardPatchApply(t *testing.T) {
	board, err := NewBoard("Roadmap", "Q3", false, uuid.New())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	public := true
	if err := (BoardPatch{IsPublic: &public}).Apply(board); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !board.IsPublic || board.Name != "Roadmap" || board.Description != "Q3" {
		t.Errorf("Unexpected board after patch: %+v", board)
	}

	empty := "   "
	if err := (BoardPatch{Name: &empty}).Apply(board); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
