package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"simpletodo/internal/model"
	"simpletodo/internal/store"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st, err := s.openStore()
	if err != nil {
		s.storeError(w, err)
		return
	}
	defer st.Close()

	todos, err := st.ListTodos(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.render(w, "index", indexData{Todos: todos})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	st, err := s.openStore()
	if err != nil {
		s.storeError(w, err)
		return
	}
	defer st.Close()

	todo, err := st.GetTodo(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.render(w, "detail", detailData{Todo: todo})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		http.Error(w, "title must not be empty", http.StatusBadRequest)
		return
	}

	st, err := s.openStore()
	if err != nil {
		s.storeError(w, err)
		return
	}
	defer st.Close()

	_, err = st.CreateTodo(r.Context(), title,
		optional(r.FormValue("description")),
		optional(r.FormValue("deadline")),
	)
	if err != nil {
		s.storeError(w, err)
		return
	}

	redirect(w, r, "/")
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r, "id")
	if !ok {
		return
	}

	st, err := s.openStore()
	if err != nil {
		s.storeError(w, err)
		return
	}
	defer st.Close()

	err = st.UpdateTodo(r.Context(), id,
		optional(r.FormValue("description")),
		optional(r.FormValue("deadline")),
	)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.storeError(w, err)
		return
	}

	redirect(w, r, fmt.Sprintf("/todo/%d", id))
}

func (s *Server) handleAddSubtask(w http.ResponseWriter, r *http.Request) {
	todoID, ok := formID(w, r, "todo_id")
	if !ok {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		http.Error(w, "title must not be empty", http.StatusBadRequest)
		return
	}

	st, err := s.openStore()
	if err != nil {
		s.storeError(w, err)
		return
	}
	defer st.Close()

	if err := st.AddSubtask(r.Context(), todoID, title); err != nil {
		s.storeError(w, err)
		return
	}

	redirect(w, r, fmt.Sprintf("/todo/%d", todoID))
}

func (s *Server) handleToggleSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r, "id")
	if !ok {
		return
	}
	todoID, ok := formID(w, r, "todo_id")
	if !ok {
		return
	}

	st, err := s.openStore()
	if err != nil {
		s.storeError(w, err)
		return
	}
	defer st.Close()

	if err := st.ToggleSubtask(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}

	redirect(w, r, fmt.Sprintf("/todo/%d", todoID))
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r, "id")
	if !ok {
		return
	}

	st, err := s.openStore()
	if err != nil {
		s.storeError(w, err)
		return
	}
	defer st.Close()

	err = st.CompleteTodo(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.storeError(w, err)
		return
	}

	redirect(w, r, "/")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r, "id")
	if !ok {
		return
	}

	st, err := s.openStore()
	if err != nil {
		s.storeError(w, err)
		return
	}
	defer st.Close()

	err = st.DeleteTodo(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.storeError(w, err)
		return
	}

	redirect(w, r, "/")
}

type indexData struct {
	Todos []model.Todo
}

type detailData struct {
	Todo *model.Todo
}

// storeError logs the failure and answers 500; the message stays out of
// the response body.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("store operation failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// formID parses an integer form field, answering 400 on garbage.
func formID(w http.ResponseWriter, r *http.Request, field string) (int64, bool) {
	id, err := strconv.ParseInt(r.FormValue(field), 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid %s", field), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// redirect answers 303 so the browser re-issues a GET after a form POST.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// optional trims a form value and maps the empty string to nil. An empty
// field clears the stored value rather than preserving it.
func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
