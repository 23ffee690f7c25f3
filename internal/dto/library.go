package dto

type CreateBookRequest struct {
	Title  string   `json:"title" example:"Dune"`
	Author string   `json:"author,omitempty" example:"Frank Herbert"`
	Status string   `json:"status,omitempty" example:"reading" enums:"reading,want,read"`
	Tags   []string `json:"tags,omitempty" example:"sci-fi,classics"`
}

type UpdateBookRequest struct {
	Status string `json:"status" example:"read" enums:"reading,want,read"`
}

type BookResponse struct {
	ID        string   `json:"id" example:"book_abc123"`
	Title     string   `json:"title" example:"Dune"`
	Author    string   `json:"author,omitempty" example:"Frank Herbert"`
	Status    string   `json:"status" example:"reading"`
	Tags      []string `json:"tags,omitempty" example:"sci-fi,classics"`
	CreatedAt string   `json:"created_at" example:"2025-01-15T10:30:00Z"`
	UpdatedAt string   `json:"updated_at" example:"2025-01-20T15:45:00Z"`
}

type BookListResponse struct {
	Books []BookResponse `json:"books"`
}

type CreateNoteRequest struct {
	Body   string `json:"body" example:"The spice must flow"`
	BookID string `json:"book_id,omitempty" example:"book_abc123"`
}

type NoteResponse struct {
	ID        string `json:"id" example:"note_abc123"`
	BookID    string `json:"book_id,omitempty" example:"book_abc123"`
	Body      string `json:"body" example:"The spice must flow"`
	CreatedAt string `json:"created_at" example:"2025-01-15T10:30:00Z"`
}

type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
}
