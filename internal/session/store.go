package session

import (
	"context"
	"errors"

	"github.com/misty-step/bibliomnomnom-sub004/internal/pipeline"
	"github.com/misty-step/bibliomnomnom-sub004/internal/shared"
	"github.com/misty-step/bibliomnomnom-sub004/internal/synthesis"
	"gorm.io/gorm"
)

// ErrInvalidTransition is returned when a stage change is not exactly one
// step forward.
var ErrInvalidTransition = errors.New("invalid stage transition")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&ReadingSession{}, &SessionArtifact{})
}

func (s *Store) Create(ctx context.Context, sess *ReadingSession) error {
	if sess.ID == "" {
		sess.ID = shared.NewID("sess_")
	}
	if sess.Stage == "" {
		sess.Stage = pipeline.StageRecording
	}
	if !sess.Stage.Valid() {
		return ErrInvalidTransition
	}
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *Store) GetByID(ctx context.Context, userID, id string) (*ReadingSession, error) {
	var sess ReadingSession
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &sess, err
}

func (s *Store) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*ReadingSession, error) {
	var sessions []*ReadingSession
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&sessions).Error
	return sessions, err
}

// AdvanceStage moves a session one step forward in its lifecycle. Any
// other transition fails with ErrInvalidTransition and leaves the row
// untouched.
func (s *Store) AdvanceStage(ctx context.Context, userID, id string, to pipeline.Stage) (*ReadingSession, error) {
	sess, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !pipeline.CanTransition(sess.Stage, to) {
		return nil, ErrInvalidTransition
	}

	result := s.db.WithContext(ctx).Model(&ReadingSession{}).
		Where("id = ? AND stage = ?", id, sess.Stage).
		Update("stage", to)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Lost a race with a concurrent transition.
		return nil, ErrInvalidTransition
	}

	sess.Stage = to
	return sess, nil
}

// RecordOutcome persists the transcription and synthesis results of a
// pipeline run.
func (s *Store) RecordOutcome(ctx context.Context, id string, outcome pipeline.Outcome) error {
	updates := map[string]any{
		"provider":      outcome.Provider,
		"transcript":    outcome.Transcript,
		"used_fallback": outcome.UsedFallback,
	}
	if outcome.TranscriptionError != nil {
		updates["error_kind"] = string(outcome.TranscriptionError.Kind)
	}

	result := s.db.WithContext(ctx).Model(&ReadingSession{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AppendArtifacts stores a pipeline run's artifacts in generation order.
func (s *Store) AppendArtifacts(ctx context.Context, sessionID string, artifacts []synthesis.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}

	rows := make([]SessionArtifact, 0, len(artifacts))
	for i, a := range artifacts {
		rows = append(rows, SessionArtifact{
			ID:        shared.NewID("art_"),
			SessionID: sessionID,
			Kind:      string(a.Kind),
			Title:     a.Title,
			Content:   a.Content,
			Position:  i,
		})
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *Store) ArtifactsBySession(ctx context.Context, userID, sessionID string) ([]*SessionArtifact, error) {
	if _, err := s.GetByID(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	var artifacts []*SessionArtifact
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).
		Order("position ASC").Find(&artifacts).Error
	return artifacts, err
}
