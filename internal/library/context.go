package library

import (
	"context"

	"github.com/misty-step/bibliomnomnom-sub004/internal/synthesis"
)

const recentNoteLimit = 5

// ContextBuilder assembles the reading context handed to synthesis: the
// session's book, the user's shelves, and their latest notes.
type ContextBuilder struct {
	store *Store
}

func NewContextBuilder(store *Store) *ContextBuilder {
	return &ContextBuilder{store: store}
}

func (b *ContextBuilder) Build(ctx context.Context, userID, bookID string) (*synthesis.Context, error) {
	sctx := &synthesis.Context{}

	if bookID != "" {
		book, err := b.store.GetBook(ctx, userID, bookID)
		if err != nil {
			return nil, err
		}
		sctx.Book = &synthesis.Book{Title: book.Title, Author: book.Author}
	}

	books, err := b.store.ListBooks(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	for _, book := range books {
		entry := synthesis.Book{Title: book.Title, Author: book.Author}
		switch book.Status {
		case StatusReading:
			sctx.CurrentlyReading = append(sctx.CurrentlyReading, entry)
		case StatusWantToRead:
			sctx.WantToRead = append(sctx.WantToRead, entry)
		case StatusRead:
			sctx.Read = append(sctx.Read, entry)
		}
	}

	notes, err := b.store.RecentNotes(ctx, userID, recentNoteLimit)
	if err != nil {
		return nil, err
	}
	sctx.RecentNotes = notes

	return sctx, nil
}
