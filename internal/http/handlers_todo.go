package http

import (
	"net/http"

	"kharcha/internal/core"
)

// handleAddTodo serves POST /api/todos/add.
func (s *Server) handleAddTodo(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text := parser.Get("text")
	if text == "" {
		respondError(w, r, core.ErrEmptyText)
		return
	}

	id, err := s.repo.AddTodo(r.Context(), text)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

// handleToggleTodo serves POST /api/todos/toggle.
func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}

	id, ok := s.todoID(w, r)
	if !ok {
		return
	}

	if err := s.repo.ToggleTodo(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleDeleteTodo serves POST /api/todos/delete. Deleting an id that
// is already gone succeeds; the end state is the same.
func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}

	id, ok := s.todoID(w, r)
	if !ok {
		return
	}

	if err := s.repo.DeleteTodo(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return 0, false
	}

	id, ok := parser.GetInt64("id")
	if !ok || id <= 0 {
		writeError(w, http.StatusBadRequest, "id is required")
		return 0, false
	}
	return id, true
}
