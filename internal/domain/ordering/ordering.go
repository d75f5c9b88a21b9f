// Package ordering computes position changes for tasks inside status
// columns. A column is the set of tasks sharing (board, status); its
// positions must always be exactly 0..n-1. The functions here are pure:
// they take the current column contents and return the rows to rewrite.
package ordering

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// ErrNotInColumn is returned when the task to move or remove is not a
// member of the column passed in.
var ErrNotInColumn = errors.New("task not in column")

// Entry is the placement of one task.
type Entry struct {
	ID       uuid.UUID
	Status   domain.TaskStatus
	Position int
}

// EntriesFromTasks extracts the placement of each task.
func EntriesFromTasks(tasks []*domain.Task) []Entry {
	entries := make([]Entry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, Entry{ID: t.ID, Status: t.Status, Position: t.Position})
	}
	return entries
}

// Result holds the outcome of a planning call.
type Result struct {
	// Placed is the final placement of the moved, inserted or removed task.
	Placed Entry
	// Changes lists every entry whose status or position must be rewritten,
	// including Placed when it differs from its starting point.
	Changes []Entry
}

// Clamp limits pos to [lo, hi].
func Clamp(pos, lo, hi int) int {
	if pos < lo {
		return lo
	}
	if pos > hi {
		return hi
	}
	return pos
}

// Move relocates task id from source (the column it belongs to) to the
// given status and position. destination is the current content of the
// target column and is ignored when status equals the task's status.
//
// Within a column the position is clamped to [0, len-1]; across columns
// it is clamped to [0, len(destination)]. Both affected columns come back
// dense. Moving a task onto its current placement yields no changes.
func Move(source, destination []Entry, id uuid.UUID, status domain.TaskStatus, position int) (Result, error) {
	src := sortEntries(source)
	idx := indexOf(src, id)
	if idx < 0 {
		return Result{}, ErrNotInColumn
	}

	moved := src[idx]
	from := moved.Status
	src = removeAt(src, idx)

	var changes []Entry
	if status == from {
		src = insertAt(src, moved, Clamp(position, 0, len(src)))
		changes = renumber(src, from)
	} else {
		dst := sortEntries(without(destination, id))
		dst = insertAt(dst, moved, Clamp(position, 0, len(dst)))
		changes = append(renumber(src, from), renumber(dst, status)...)
	}

	placed := moved
	for _, c := range changes {
		if c.ID == id {
			placed = c
			break
		}
	}
	return Result{Placed: placed, Changes: changes}, nil
}

// Insert places a new task into column. A nil position appends it, which
// gives it position len(column). Otherwise the position is clamped to
// [0, len(column)] and later tasks shift up by one.
func Insert(column []Entry, id uuid.UUID, status domain.TaskStatus, position *int) Result {
	col := sortEntries(without(column, id))
	at := len(col)
	if position != nil {
		at = Clamp(*position, 0, len(col))
	}

	// -1 marks the new entry as unplaced so renumber always reports it.
	col = insertAt(col, Entry{ID: id, Status: status, Position: -1}, at)
	changes := renumber(col, status)

	var placed Entry
	for _, c := range changes {
		if c.ID == id {
			placed = c
			break
		}
	}
	return Result{Placed: placed, Changes: excluding(changes, id)}
}

// Remove takes task id out of column and closes the gap it leaves.
// The returned changes do not include the removed task.
func Remove(column []Entry, id uuid.UUID) (Result, error) {
	col := sortEntries(column)
	idx := indexOf(col, id)
	if idx < 0 {
		return Result{}, ErrNotInColumn
	}
	removed := col[idx]
	col = removeAt(col, idx)
	return Result{Placed: removed, Changes: renumber(col, removed.Status)}, nil
}

// IsDense reports whether the positions of column are exactly 0..n-1.
func IsDense(column []Entry) bool {
	seen := make([]bool, len(column))
	for _, e := range column {
		if e.Position < 0 || e.Position >= len(column) || seen[e.Position] {
			return false
		}
		seen[e.Position] = true
	}
	return true
}

// Apply returns a copy of entries with changes applied, for callers that
// keep a column in memory.
func Apply(entries []Entry, changes []Entry) []Entry {
	byID := make(map[uuid.UUID]Entry, len(changes))
	for _, c := range changes {
		byID[c.ID] = c
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if c, ok := byID[e.ID]; ok {
			e = c
		}
		out[i] = e
	}
	return out
}

// sortEntries returns a copy ordered by position. Ties, which only exist
// in already-corrupted columns, are broken by ID to keep results stable.
func sortEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func renumber(column []Entry, status domain.TaskStatus) []Entry {
	var changes []Entry
	for i, e := range column {
		if e.Position != i || e.Status != status {
			changes = append(changes, Entry{ID: e.ID, Status: status, Position: i})
		}
	}
	return changes
}

func indexOf(entries []Entry, id uuid.UUID) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(entries []Entry, i int) []Entry {
	out := make([]Entry, 0, len(entries)-1)
	out = append(out, entries[:i]...)
	return append(out, entries[i+1:]...)
}

func insertAt(entries []Entry, e Entry, i int) []Entry {
	out := make([]Entry, 0, len(entries)+1)
	out = append(out, entries[:i]...)
	out = append(out, e)
	return append(out, entries[i:]...)
}

func without(entries []Entry, id uuid.UUID) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func excluding(changes []Entry, id uuid.UUID) []Entry {
	return without(changes, id)
}
