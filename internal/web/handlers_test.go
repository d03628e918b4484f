package web_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"simpletodo/internal/model"
	"simpletodo/internal/store"
	"simpletodo/internal/web"
)

// newTestHandler builds a server over a throwaway database file and returns
// the handler plus the db path for direct store access in setup/asserts.
func newTestHandler(t *testing.T) (http.Handler, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "todo.db")
	cfg := &model.AppConfig{ListenAddr: ":0", DBPath: dbPath}

	server, err := web.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return server.Handler(), dbPath
}

func openStore(t *testing.T, dbPath string) *store.SQLiteStore {
	t.Helper()

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexEmpty(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, _ := newTestHandler(t)

	rec := get(handler, "/")
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), "Noch keine Todos")
}

func TestAddEmptyTitle(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, _ := newTestHandler(t)

	rec := postForm(handler, "/add", url.Values{"title": {"   "}})
	assert.Equal(http.StatusBadRequest, rec.Code)
}

func TestAddRedirectsAndLists(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, _ := newTestHandler(t)

	rec := postForm(handler, "/add", url.Values{
		"title":       {"Einkaufen"},
		"description": {"Milch und Brot"},
	})
	assert.Equal(http.StatusSeeOther, rec.Code)
	assert.Equal("/", rec.Header().Get("Location"))

	rec = get(handler, "/")
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), "Einkaufen")
	assert.Contains(rec.Body.String(), "Milch und Brot")
}

func TestDetailShowsSubtasks(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, dbPath := newTestHandler(t)
	ctx := context.Background()

	s := openStore(t, dbPath)
	todo, err := s.CreateTodo(ctx, "Write report", nil, nil)
	assert.Nil(err)
	assert.Nil(s.AddSubtask(ctx, todo.ID, "Draft"))

	rec := get(handler, fmt.Sprintf("/todo/%d", todo.ID))
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), "Write report")
	assert.Contains(rec.Body.String(), "Draft")
	assert.Contains(rec.Body.String(), "0 / 1 erledigt")
}

func TestDetailUnknown(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, _ := newTestHandler(t)

	assert.Equal(http.StatusNotFound, get(handler, "/todo/42").Code)
	assert.Equal(http.StatusNotFound, get(handler, "/todo/abc").Code)
}

func TestCompleteTwice(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, dbPath := newTestHandler(t)

	s := openStore(t, dbPath)
	todo, err := s.CreateTodo(context.Background(), "Write report", nil, nil)
	assert.Nil(err)

	form := url.Values{"id": {fmt.Sprint(todo.ID)}}

	rec := postForm(handler, "/complete", form)
	assert.Equal(http.StatusSeeOther, rec.Code)
	assert.Equal("/", rec.Header().Get("Location"))

	rec = postForm(handler, "/complete", form)
	assert.Equal(http.StatusNotFound, rec.Code)
}

func TestUpdateClearsAbsentFields(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, dbPath := newTestHandler(t)
	ctx := context.Background()

	s := openStore(t, dbPath)
	deadline := "2026-09-01"
	todo, err := s.CreateTodo(ctx, "Pack bags", nil, &deadline)
	assert.Nil(err)

	rec := postForm(handler, "/update", url.Values{
		"id":          {fmt.Sprint(todo.ID)},
		"description": {"x"},
	})
	assert.Equal(http.StatusSeeOther, rec.Code)
	assert.Equal(fmt.Sprintf("/todo/%d", todo.ID), rec.Header().Get("Location"))

	got, err := s.GetTodo(ctx, todo.ID)
	assert.Nil(err)
	assert.Equal("x", *got.Description)
	assert.Nil(got.Deadline)
}

func TestUpdateUnknown(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, _ := newTestHandler(t)

	rec := postForm(handler, "/update", url.Values{"id": {"42"}})
	assert.Equal(http.StatusNotFound, rec.Code)
}

func TestAddSubtaskAndToggle(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, dbPath := newTestHandler(t)
	ctx := context.Background()

	s := openStore(t, dbPath)
	todo, err := s.CreateTodo(ctx, "Write report", nil, nil)
	assert.Nil(err)

	rec := postForm(handler, "/add-subtask", url.Values{
		"todo_id": {fmt.Sprint(todo.ID)},
		"title":   {"Draft"},
	})
	assert.Equal(http.StatusSeeOther, rec.Code)
	assert.Equal(fmt.Sprintf("/todo/%d", todo.ID), rec.Header().Get("Location"))

	got, err := s.GetTodo(ctx, todo.ID)
	assert.Nil(err)
	assert.Equal(1, got.SubtaskTotal)

	rec = postForm(handler, "/toggle-subtask", url.Values{
		"id":      {fmt.Sprint(got.Subtasks[0].ID)},
		"todo_id": {fmt.Sprint(todo.ID)},
	})
	assert.Equal(http.StatusSeeOther, rec.Code)

	got, err = s.GetTodo(ctx, todo.ID)
	assert.Nil(err)
	assert.Equal(1, got.SubtaskDone)
}

func TestAddSubtaskEmptyTitle(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, _ := newTestHandler(t)

	rec := postForm(handler, "/add-subtask", url.Values{
		"todo_id": {"1"},
		"title":   {" "},
	})
	assert.Equal(http.StatusBadRequest, rec.Code)
}

func TestDeleteRemovesTodo(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, dbPath := newTestHandler(t)

	s := openStore(t, dbPath)
	todo, err := s.CreateTodo(context.Background(), "Write report", nil, nil)
	assert.Nil(err)

	rec := postForm(handler, "/delete", url.Values{"id": {fmt.Sprint(todo.ID)}})
	assert.Equal(http.StatusSeeOther, rec.Code)
	assert.Equal("/", rec.Header().Get("Location"))

	assert.Equal(http.StatusNotFound, get(handler, fmt.Sprintf("/todo/%d", todo.ID)).Code)
}

func TestDeleteUnknown(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	handler, _ := newTestHandler(t)

	rec := postForm(handler, "/delete", url.Values{"id": {"42"}})
	assert.Equal(http.StatusNotFound, rec.Code)
}
