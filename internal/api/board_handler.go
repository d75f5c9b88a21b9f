package api

import (
	"net/http"

	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
)

// BoardHandler serves the /boards endpoints. Read endpoints run behind
// optional authentication; anonymous callers only see public boards.
type BoardHandler struct {
	boards service.BoardService
}

// NewBoardHandler creates a BoardHandler.
func NewBoardHandler(boards service.BoardService) *BoardHandler {
	return &BoardHandler{boards: boards}
}

// List handles GET /boards.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	ownerID, err := getQueryUUID(r, "owner_id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	boards, err := h.boards.ListBoards(r.Context(), currentUser(r), ownerID, page)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summariesToResponse(boards))
}

// Create handles POST /boards. owner_id may come from the body or the
// query string and defaults to the caller.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBoardRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if req.OwnerID == nil {
		ownerID, err := getQueryUUID(r, "owner_id")
		if err != nil {
			HandleAPIError(w, r, err)
			return
		}
		req.OwnerID = ownerID
	}

	board, err := h.boards.CreateBoard(r.Context(), currentUser(r), service.BoardInput{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, boardToResponse(board.Board, board.TasksCount))
}

// Get handles GET /boards/{id}.
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	detail, err := h.boards.GetBoard(r.Context(), currentUser(r), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BoardDetailResponse{
		BoardResponse: boardToResponse(detail.Board, len(detail.Tasks)),
		Tasks:         tasksToResponse(detail.Tasks),
	})
}

// Update handles PUT /boards/{id}.
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateBoardRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	board, err := h.boards.UpdateBoard(r.Context(), currentUser(r), id, domain.BoardPatch{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, boardToResponse(board.Board, board.TasksCount))
}

// Delete handles DELETE /boards/{id}.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	deleted, err := h.boards.DeleteBoard(r.Context(), currentUser(r), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteBoardResponse{
		Message:           "Board deleted",
		DeletedTasksCount: deleted,
	})
}
