package library

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/misty-step/bibliomnomnom-sub004/internal/auth"
	"github.com/misty-step/bibliomnomnom-sub004/internal/dto"
)

type fakeEmbeddings struct {
	vector []float32
	err    error
}

func (f *fakeEmbeddings) Generate(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

func newTestLibraryHandler(t *testing.T) (*Handler, *Store) {
	store := setupTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(store, &fakeEmbeddings{}, logger), store
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID string) echo.Context {
	c := e.NewContext(req, rec)
	auth.SetClaimsForTest(c, &auth.Claims{UserID: userID})
	return c
}

func TestHandler_CreateBook(t *testing.T) {
	h, _ := newTestLibraryHandler(t)
	e := echo.New()

	body := `{"title":"Dune","author":"Frank Herbert","status":"reading","tags":["sci-fi","classics"]}`
	req := httptest.NewRequest(http.MethodPost, "/library/books", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1")

	if err := h.CreateBook(c); err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp dto.BookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "Dune" || resp.Status != "reading" || resp.ID == "" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Tags) != 2 || resp.Tags[0] != "sci-fi" {
		t.Errorf("tags = %v, want [sci-fi classics]", resp.Tags)
	}
}

func TestHandler_CreateBook_Validation(t *testing.T) {
	h, _ := newTestLibraryHandler(t)
	e := echo.New()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"author":"X"}`},
		{name: "invalid status", body: `{"title":"Dune","status":"finished"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/library/books", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := authedContext(e, req, rec, "user_1")

			err := h.CreateBook(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Errorf("CreateBook() error = %v, want 400", err)
			}
		})
	}
}

func TestHandler_ListBooks_FilterByStatus(t *testing.T) {
	h, store := newTestLibraryHandler(t)
	e := echo.New()
	ctx := context.Background()

	store.CreateBook(ctx, &Book{UserID: "user_1", Title: "Dune", Status: StatusReading})
	store.CreateBook(ctx, &Book{UserID: "user_1", Title: "Solaris", Status: StatusRead})

	req := httptest.NewRequest(http.MethodGet, "/library/books?status=read", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1")

	if err := h.ListBooks(c); err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}

	var resp dto.BookListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Books) != 1 || resp.Books[0].Title != "Solaris" {
		t.Errorf("books = %+v, want only Solaris", resp.Books)
	}
}

func TestHandler_UpdateBook(t *testing.T) {
	h, store := newTestLibraryHandler(t)
	e := echo.New()

	book := &Book{UserID: "user_1", Title: "Dune"}
	store.CreateBook(context.Background(), book)

	req := httptest.NewRequest(http.MethodPatch, "/library/books/"+book.ID, strings.NewReader(`{"status":"read"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1")
	c.SetParamNames("id")
	c.SetParamValues(book.ID)

	if err := h.UpdateBook(c); err != nil {
		t.Fatalf("UpdateBook() error = %v", err)
	}

	var resp dto.BookResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "read" {
		t.Errorf("status = %q, want read", resp.Status)
	}
}

func TestHandler_CreateNote_UnknownBook(t *testing.T) {
	h, _ := newTestLibraryHandler(t)
	e := echo.New()

	body := `{"body":"great chapter","book_id":"book_missing"}`
	req := httptest.NewRequest(http.MethodPost, "/library/notes", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1")

	err := h.CreateNote(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("CreateNote() error = %v, want 404", err)
	}
}

func TestHandler_CreateAndListNotes(t *testing.T) {
	h, _ := newTestLibraryHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/library/notes", strings.NewReader(`{"body":"great chapter"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1")

	if err := h.CreateNote(c); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/library/notes", nil)
	rec = httptest.NewRecorder()
	c = authedContext(e, req, rec, "user_1")

	if err := h.ListNotes(c); err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}

	var resp dto.NoteListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Notes) != 1 || resp.Notes[0].Body != "great chapter" {
		t.Errorf("notes = %+v", resp.Notes)
	}
}

func TestHandler_SearchNotes_FallsBackToRecency(t *testing.T) {
	// The noop embedding service returns an empty vector; search degrades
	// to the latest notes instead of failing.
	h, store := newTestLibraryHandler(t)
	e := echo.New()

	store.CreateNote(context.Background(), &Note{UserID: "user_1", Body: "spice is power"})

	req := httptest.NewRequest(http.MethodGet, "/library/notes/search?q=spice", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1")

	if err := h.SearchNotes(c); err != nil {
		t.Fatalf("SearchNotes() error = %v", err)
	}

	var resp dto.NoteListResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Notes) != 1 {
		t.Errorf("notes = %+v, want 1", resp.Notes)
	}
}

func TestHandler_SearchNotes_MissingQuery(t *testing.T) {
	h, _ := newTestLibraryHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/library/notes/search", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1")

	err := h.SearchNotes(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("SearchNotes() error = %v, want 400", err)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _ := newTestLibraryHandler(t)
	e := echo.New()
	h.RegisterRoutes(e.Group("/library"))

	want := map[string]bool{
		"POST /library/books":       false,
		"GET /library/books":        false,
		"GET /library/notes/search": false,
		"DELETE /library/notes/:id": false,
		"PATCH /library/books/:id":  false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, found := range want {
		if !found {
			t.Errorf("route %s should be registered", route)
		}
	}
}
