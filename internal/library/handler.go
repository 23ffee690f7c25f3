package library

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/misty-step/bibliomnomnom-sub004/internal/auth"
	"github.com/misty-step/bibliomnomnom-sub004/internal/dto"
	"github.com/misty-step/bibliomnomnom-sub004/internal/shared"
)

type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

type Handler struct {
	store      *Store
	embeddings EmbeddingService
	logger     *slog.Logger
}

func NewHandler(store *Store, embeddings EmbeddingService, logger *slog.Logger) *Handler {
	return &Handler{
		store:      store,
		embeddings: embeddings,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/books", h.CreateBook)
	g.GET("/books", h.ListBooks)
	g.GET("/books/:id", h.GetBook)
	g.PATCH("/books/:id", h.UpdateBook)
	g.DELETE("/books/:id", h.DeleteBook)
	g.POST("/notes", h.CreateNote)
	g.GET("/notes", h.ListNotes)
	g.GET("/notes/search", h.SearchNotes)
	g.DELETE("/notes/:id", h.DeleteNote)
}

// @Summary      Add a book
// @Description  Adds a book to the reader's library
// @Tags         library
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateBookRequest  true  "Book details"
// @Success      201      {object}  dto.BookResponse
// @Failure      400      {object}  shared.APIError
// @Failure      401      {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req dto.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return shared.BadRequest("missing_title", "title is required")
	}

	status := BookStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		return shared.BadRequest("invalid_status", "status must be reading, want or read")
	}

	book := &Book{
		UserID: userID,
		Title:  strings.TrimSpace(req.Title),
		Author: strings.TrimSpace(req.Author),
		Status: status,
		Tags:   shared.StringSlice(req.Tags),
	}
	if err := h.store.CreateBook(c.Request().Context(), book); err != nil {
		h.logger.Error("failed to create book", "error", err, "user_id", userID)
		return shared.InternalError("create_failed", "failed to create book")
	}

	return c.JSON(http.StatusCreated, bookResponse(book))
}

// @Summary      List books
// @Description  Lists the reader's books, optionally filtered by shelf
// @Tags         library
// @Produce      json
// @Param        status  query     string  false  "Shelf filter"  Enums(reading, want, read)
// @Success      200     {object}  dto.BookListResponse
// @Failure      401     {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var status *BookStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := BookStatus(raw)
		if !s.Valid() {
			return shared.BadRequest("invalid_status", "status must be reading, want or read")
		}
		status = &s
	}

	books, err := h.store.ListBooks(c.Request().Context(), userID, status)
	if err != nil {
		h.logger.Error("failed to list books", "error", err, "user_id", userID)
		return shared.InternalError("list_failed", "failed to list books")
	}

	resp := dto.BookListResponse{Books: make([]dto.BookResponse, 0, len(books))}
	for _, b := range books {
		resp.Books = append(resp.Books, bookResponse(b))
	}
	return c.JSON(http.StatusOK, resp)
}

// @Summary      Get a book
// @Tags         library
// @Produce      json
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  dto.BookResponse
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	book, err := h.store.GetBook(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("book_not_found", "book not found")
		}
		return shared.InternalError("get_failed", "failed to get book")
	}

	return c.JSON(http.StatusOK, bookResponse(book))
}

// @Summary      Move a book between shelves
// @Tags         library
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Book ID"
// @Param        request  body      dto.UpdateBookRequest  true  "New status"
// @Success      200      {object}  dto.BookResponse
// @Failure      400      {object}  shared.APIError
// @Failure      401      {object}  shared.APIError
// @Failure      404      {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/books/{id} [patch]
func (h *Handler) UpdateBook(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req dto.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	status := BookStatus(req.Status)
	if !status.Valid() {
		return shared.BadRequest("invalid_status", "status must be reading, want or read")
	}

	ctx := c.Request().Context()
	if err := h.store.UpdateBookStatus(ctx, userID, c.Param("id"), status); err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("book_not_found", "book not found")
		}
		return shared.InternalError("update_failed", "failed to update book")
	}

	book, err := h.store.GetBook(ctx, userID, c.Param("id"))
	if err != nil {
		return shared.InternalError("get_failed", "failed to get book")
	}
	return c.JSON(http.StatusOK, bookResponse(book))
}

// @Summary      Remove a book
// @Tags         library
// @Param        id  path  string  true  "Book ID"
// @Success      204  "No Content"
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	if err := h.store.DeleteBook(c.Request().Context(), userID, c.Param("id")); err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("book_not_found", "book not found")
		}
		return shared.InternalError("delete_failed", "failed to delete book")
	}
	return c.NoContent(http.StatusNoContent)
}

// @Summary      Create a note
// @Description  Saves a reading note, optionally attached to a book
// @Tags         library
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateNoteRequest  true  "Note body"
// @Success      201      {object}  dto.NoteResponse
// @Failure      400      {object}  shared.APIError
// @Failure      401      {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/notes [post]
func (h *Handler) CreateNote(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if strings.TrimSpace(req.Body) == "" {
		return shared.BadRequest("missing_body", "note body is required")
	}

	ctx := c.Request().Context()
	if req.BookID != "" {
		if _, err := h.store.GetBook(ctx, userID, req.BookID); err != nil {
			if err == shared.ErrNotFound {
				return shared.NotFound("book_not_found", "book not found")
			}
			return shared.InternalError("get_failed", "failed to get book")
		}
	}

	note := &Note{
		UserID: userID,
		BookID: req.BookID,
		Body:   strings.TrimSpace(req.Body),
	}
	if err := h.store.CreateNote(ctx, note); err != nil {
		h.logger.Error("failed to create note", "error", err, "user_id", userID)
		return shared.InternalError("create_failed", "failed to create note")
	}

	h.indexNote(ctx, note)

	return c.JSON(http.StatusCreated, noteResponse(note))
}

// @Summary      List notes
// @Tags         library
// @Produce      json
// @Param        book_id  query     string  false  "Filter by book"
// @Param        limit    query     int     false  "Maximum notes to return"
// @Success      200      {object}  dto.NoteListResponse
// @Failure      401      {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/notes [get]
func (h *Handler) ListNotes(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	notes, err := h.store.ListNotes(c.Request().Context(), userID, c.QueryParam("book_id"), limit)
	if err != nil {
		h.logger.Error("failed to list notes", "error", err, "user_id", userID)
		return shared.InternalError("list_failed", "failed to list notes")
	}

	return c.JSON(http.StatusOK, noteListResponse(notes))
}

// @Summary      Search notes
// @Description  Semantic search over the reader's notes
// @Tags         library
// @Produce      json
// @Param        q      query     string  true   "Search query"
// @Param        limit  query     int     false  "Maximum notes to return"
// @Success      200    {object}  dto.NoteListResponse
// @Failure      400    {object}  shared.APIError
// @Failure      401    {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/notes/search [get]
func (h *Handler) SearchNotes(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return shared.BadRequest("missing_query", "q parameter is required")
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	ctx := c.Request().Context()
	embedding, err := h.embeddings.Generate(ctx, query)
	if err != nil {
		h.logger.Error("failed to embed query", "error", err, "user_id", userID)
		return shared.InternalError("search_failed", "failed to search notes")
	}
	if len(embedding) == 0 {
		// Embeddings not configured; fall back to recency.
		notes, err := h.store.ListNotes(ctx, userID, "", limit)
		if err != nil {
			return shared.InternalError("search_failed", "failed to search notes")
		}
		return c.JSON(http.StatusOK, noteListResponse(notes))
	}

	notes, err := h.store.SearchNotesByEmbedding(ctx, userID, embedding, limit)
	if err != nil {
		h.logger.Error("failed to search notes", "error", err, "user_id", userID)
		return shared.InternalError("search_failed", "failed to search notes")
	}

	return c.JSON(http.StatusOK, noteListResponse(notes))
}

// @Summary      Delete a note
// @Tags         library
// @Param        id  path  string  true  "Note ID"
// @Success      204  "No Content"
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Security     BearerAuth
// @Router       /library/notes/{id} [delete]
func (h *Handler) DeleteNote(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	if err := h.store.DeleteNote(c.Request().Context(), userID, c.Param("id")); err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("note_not_found", "note not found")
		}
		return shared.InternalError("delete_failed", "failed to delete note")
	}
	return c.NoContent(http.StatusNoContent)
}

// indexNote upserts the note's embedding best-effort; notes stay usable
// without vector search.
func (h *Handler) indexNote(ctx context.Context, note *Note) {
	embedding, err := h.embeddings.Generate(ctx, note.Body)
	if err != nil {
		h.logger.Warn("failed to embed note", "error", err, "note_id", note.ID)
		return
	}
	if len(embedding) == 0 {
		return
	}
	if err := h.store.UpsertNoteEmbedding(ctx, note.ID, embedding); err != nil {
		h.logger.Warn("failed to index note", "error", err, "note_id", note.ID)
	}
}

func bookResponse(b *Book) dto.BookResponse {
	return dto.BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Status:    string(b.Status),
		Tags:      b.Tags,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

func noteResponse(n *Note) dto.NoteResponse {
	return dto.NoteResponse{
		ID:        n.ID,
		BookID:    n.BookID,
		Body:      n.Body,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func noteListResponse(notes []*Note) dto.NoteListResponse {
	resp := dto.NoteListResponse{Notes: make([]dto.NoteResponse, 0, len(notes))}
	for _, n := range notes {
		resp.Notes = append(resp.Notes, noteResponse(n))
	}
	return resp
}
