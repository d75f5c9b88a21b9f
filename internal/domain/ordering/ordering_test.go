package ordering

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(status domain.TaskStatus, ids ...uuid.UUID) []Entry {
	entries := make([]Entry, len(ids))
	for i, id := range ids {
		entries[i] = Entry{ID: id, Status: status, Position: i}
	}
	return entries
}

func idsInOrder(entries []Entry) []uuid.UUID {
	sorted := sortEntries(entries)
	out := make([]uuid.UUID, len(sorted))
	for i, e := range sorted {
		out[i] = e.ID
	}
	return out
}

func TestMoveWithinColumnToFront(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	todo := column(domain.StatusTodo, a, b, c)

	res, err := Move(todo, nil, c, domain.StatusTodo, 0)
	require.NoError(t, err)

	after := Apply(todo, res.Changes)
	assert.Equal(t, []uuid.UUID{c, a, b}, idsInOrder(after))
	assert.True(t, IsDense(after))
	assert.Equal(t, Entry{ID: c, Status: domain.StatusTodo, Position: 0}, res.Placed)
	assert.Len(t, res.Changes, 3)
}

func TestMoveAcrossColumns(t *testing.T) {
	d, e := uuid.New(), uuid.New()
	inProgress := column(domain.StatusInProgress, d)
	done := column(domain.StatusDone, e)

	res, err := Move(inProgress, done, d, domain.StatusDone, 0)
	require.NoError(t, err)

	assert.Equal(t, Entry{ID: d, Status: domain.StatusDone, Position: 0}, res.Placed)
	after := Apply(append(inProgress, done...), res.Changes)
	for _, entry := range after {
		assert.Equal(t, domain.StatusDone, entry.Status)
	}
	assert.Equal(t, []uuid.UUID{d, e}, idsInOrder(after))
	assert.True(t, IsDense(after))
}

func TestMoveToCurrentPlacementIsNoop(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	todo := column(domain.StatusTodo, a, b, c)

	res, err := Move(todo, nil, b, domain.StatusTodo, 1)
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.Equal(t, todo[1], res.Placed)
}

func TestMoveClampsPosition(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name     string
		position int
		want     []uuid.UUID
	}{
		{name: "past end in same column", position: 99, want: []uuid.UUID{b, c, a}},
		{name: "negative", position: -5, want: []uuid.UUID{a, b, c}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			todo := column(domain.StatusTodo, a, b, c)
			res, err := Move(todo, nil, a, domain.StatusTodo, tc.position)
			require.NoError(t, err)
			after := Apply(todo, res.Changes)
			assert.Equal(t, tc.want, idsInOrder(after))
			assert.True(t, IsDense(after))
		})
	}

	t.Run("past end of destination appends", func(t *testing.T) {
		x, y := uuid.New(), uuid.New()
		todo := column(domain.StatusTodo, a)
		done := column(domain.StatusDone, x, y)

		res, err := Move(todo, done, a, domain.StatusDone, 50)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Placed.Position)
		// Existing destination entries keep their positions.
		assert.Len(t, res.Changes, 1)
	})
}

func TestMoveRepairsGaps(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	todo := []Entry{
		{ID: a, Status: domain.StatusTodo, Position: 0},
		{ID: b, Status: domain.StatusTodo, Position: 4},
		{ID: c, Status: domain.StatusTodo, Position: 9},
	}

	res, err := Move(todo, nil, a, domain.StatusTodo, 0)
	require.NoError(t, err)
	after := Apply(todo, res.Changes)
	assert.True(t, IsDense(after))
	assert.Equal(t, []uuid.UUID{a, b, c}, idsInOrder(after))
}

func TestMoveUnknownTask(t *testing.T) {
	todo := column(domain.StatusTodo, uuid.New())
	_, err := Move(todo, nil, uuid.New(), domain.StatusTodo, 0)
	assert.ErrorIs(t, err, ErrNotInColumn)
}

func TestInsert(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	pos := func(i int) *int { return &i }

	tests := []struct {
		name         string
		position     *int
		wantPosition int
		wantOrder    func(n uuid.UUID) []uuid.UUID
	}{
		{
			name:         "nil appends",
			position:     nil,
			wantPosition: 2,
			wantOrder:    func(n uuid.UUID) []uuid.UUID { return []uuid.UUID{a, b, n} },
		},
		{
			name:         "front shifts others",
			position:     pos(0),
			wantPosition: 0,
			wantOrder:    func(n uuid.UUID) []uuid.UUID { return []uuid.UUID{n, a, b} },
		},
		{
			name:         "beyond end is clamped",
			position:     pos(10),
			wantPosition: 2,
			wantOrder:    func(n uuid.UUID) []uuid.UUID { return []uuid.UUID{a, b, n} },
		},
		{
			name:         "negative is clamped",
			position:     pos(-1),
			wantPosition: 0,
			wantOrder:    func(n uuid.UUID) []uuid.UUID { return []uuid.UUID{n, a, b} },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			todo := column(domain.StatusTodo, a, b)
			n := uuid.New()

			res := Insert(todo, n, domain.StatusTodo, tc.position)

			assert.Equal(t, tc.wantPosition, res.Placed.Position)
			for _, c := range res.Changes {
				assert.NotEqual(t, n, c.ID, "new entry should not appear in changes")
			}
			after := append(Apply(todo, res.Changes), res.Placed)
			assert.Equal(t, tc.wantOrder(n), idsInOrder(after))
			assert.True(t, IsDense(after))
		})
	}
}

func TestInsertIntoEmptyColumn(t *testing.T) {
	n := uuid.New()
	res := Insert(nil, n, domain.StatusDone, nil)
	assert.Equal(t, Entry{ID: n, Status: domain.StatusDone, Position: 0}, res.Placed)
	assert.Empty(t, res.Changes)
}

func TestRemove(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	todo := column(domain.StatusTodo, a, b, c)

	res, err := Remove(todo, a)
	require.NoError(t, err)

	assert.Equal(t, a, res.Placed.ID)
	assert.Equal(t, []Entry{
		{ID: b, Status: domain.StatusTodo, Position: 0},
		{ID: c, Status: domain.StatusTodo, Position: 1},
	}, res.Changes)

	res, err = Remove(todo, c)
	require.NoError(t, err)
	assert.Empty(t, res.Changes, "removing the last entry leaves no gap")

	_, err = Remove(todo, uuid.New())
	assert.ErrorIs(t, err, ErrNotInColumn)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 5))
	assert.Equal(t, 5, Clamp(8, 0, 5))
	assert.Equal(t, 2, Clamp(2, 0, 5))
	assert.Equal(t, 0, Clamp(3, 0, 0))
}

func TestIsDense(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.True(t, IsDense(nil))
	assert.True(t, IsDense(column(domain.StatusTodo, a, b)))
	assert.False(t, IsDense([]Entry{{ID: a, Position: 0}, {ID: b, Position: 2}}))
	assert.False(t, IsDense([]Entry{{ID: a, Position: 1}, {ID: b, Position: 1}}))
}

// TestRandomOperationsStayDense drives a board through random creates,
// moves and deletes and checks every column after each step.
func TestRandomOperationsStayDense(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	board := map[uuid.UUID]Entry{}

	columnOf := func(status domain.TaskStatus) []Entry {
		var out []Entry
		for _, e := range board {
			if e.Status == status {
				out = append(out, e)
			}
		}
		return out
	}
	apply := func(changes []Entry) {
		for _, c := range changes {
			board[c.ID] = c
		}
	}
	randomStatus := func() domain.TaskStatus {
		return domain.TaskStatuses[rng.Intn(len(domain.TaskStatuses))]
	}
	randomTask := func() (Entry, bool) {
		if len(board) == 0 {
			return Entry{}, false
		}
		i := rng.Intn(len(board))
		for _, e := range board {
			if i == 0 {
				return e, true
			}
			i--
		}
		return Entry{}, false
	}

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(board) < 3:
			status := randomStatus()
			var pos *int
			if rng.Intn(2) == 0 {
				p := rng.Intn(8) - 2
				pos = &p
			}
			id := uuid.New()
			res := Insert(columnOf(status), id, status, pos)
			apply(res.Changes)
			board[id] = res.Placed
		case op == 1:
			task, _ := randomTask()
			to := randomStatus()
			res, err := Move(columnOf(task.Status), columnOf(to), task.ID, to, rng.Intn(10)-2)
			require.NoError(t, err)
			apply(res.Changes)
		default:
			task, _ := randomTask()
			res, err := Remove(columnOf(task.Status), task.ID)
			require.NoError(t, err)
			delete(board, task.ID)
			apply(res.Changes)
		}

		for _, status := range domain.TaskStatuses {
			require.True(t, IsDense(columnOf(status)), "column %s not dense at step %d", status, step)
		}
	}
}
