package library

import (
	"context"
	"errors"

	"github.com/misty-step/bibliomnomnom-sub004/internal/shared"
	"github.com/qdrant/go-client/qdrant"
	"gorm.io/gorm"
)

const notesCollection = "notes"

type Store struct {
	db     *gorm.DB
	qdrant *qdrant.Client
}

func NewStore(db *gorm.DB, qdrantClient *qdrant.Client) *Store {
	return &Store{
		db:     db,
		qdrant: qdrantClient,
	}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Book{}, &Note{})
}

func (s *Store) CreateBook(ctx context.Context, b *Book) error {
	if b.ID == "" {
		b.ID = shared.NewID("book_")
	}
	if b.Status == "" {
		b.Status = StatusReading
	}
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *Store) GetBook(ctx context.Context, userID, id string) (*Book, error) {
	var b Book
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &b, err
}

func (s *Store) ListBooks(ctx context.Context, userID string, status *BookStatus) ([]*Book, error) {
	var books []*Book
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	err := q.Order("updated_at DESC").Find(&books).Error
	return books, err
}

func (s *Store) UpdateBookStatus(ctx context.Context, userID, id string, status BookStatus) error {
	result := s.db.WithContext(ctx).Model(&Book{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).Delete(&Book{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (s *Store) CreateNote(ctx context.Context, n *Note) error {
	if n.ID == "" {
		n.ID = shared.NewID("note_")
	}
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *Store) GetNote(ctx context.Context, userID, id string) (*Note, error) {
	var n Note
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &n, err
}

func (s *Store) ListNotes(ctx context.Context, userID, bookID string, limit int) ([]*Note, error) {
	var notes []*Note
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if bookID != "" {
		q = q.Where("book_id = ?", bookID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("created_at DESC").Find(&notes).Error
	return notes, err
}

func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).Delete(&Note{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return s.DeleteNoteEmbedding(ctx, id)
}

// RecentNotes returns the bodies of the user's latest notes, newest first.
func (s *Store) RecentNotes(ctx context.Context, userID string, limit int) ([]string, error) {
	notes, err := s.ListNotes(ctx, userID, "", limit)
	if err != nil {
		return nil, err
	}
	bodies := make([]string, 0, len(notes))
	for _, n := range notes {
		bodies = append(bodies, n.Body)
	}
	return bodies, nil
}

func (s *Store) SearchNotesByEmbedding(ctx context.Context, userID string, embedding []float32, limit int) ([]*Note, error) {
	if s.qdrant == nil {
		return nil, errors.New("qdrant client not configured")
	}

	results, err := s.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: notesCollection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.Id != nil {
			if uuid := r.Id.GetUuid(); uuid != "" {
				ids = append(ids, uuid)
			}
		}
	}

	if len(ids) == 0 {
		return []*Note{}, nil
	}

	var notes []*Note
	err = s.db.WithContext(ctx).Where("id IN ? AND user_id = ?", ids, userID).Find(&notes).Error
	return notes, err
}

func (s *Store) UpsertNoteEmbedding(ctx context.Context, noteID string, embedding []float32) error {
	if s.qdrant == nil {
		return errors.New("qdrant client not configured")
	}

	_, err := s.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: notesCollection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(noteID),
				Vectors: qdrant.NewVectors(embedding...),
			},
		},
	})
	return err
}

func (s *Store) DeleteNoteEmbedding(ctx context.Context, noteID string) error {
	if s.qdrant == nil {
		return nil
	}

	_, err := s.qdrant.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: notesCollection,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(noteID)),
	})
	return err
}
