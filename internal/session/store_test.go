package session

import (
	"context"
	"testing"

	"github.com/misty-step/bibliomnomnom-sub004/internal/pipeline"
	"github.com/misty-step/bibliomnomnom-sub004/internal/shared"
	"github.com/misty-step/bibliomnomnom-sub004/internal/stt"
	"github.com/misty-step/bibliomnomnom-sub004/internal/synthesis"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestSessionStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	store := NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return store
}

func TestStore_Create_Defaults(t *testing.T) {
	store := setupTestSessionStore(t)

	sess := &ReadingSession{UserID: "user_1"}
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == "" {
		t.Error("expected generated ID")
	}
	if sess.Stage != pipeline.StageRecording {
		t.Errorf("Stage = %q, want recording", sess.Stage)
	}
}

func TestStore_Create_RejectsUnknownStage(t *testing.T) {
	store := setupTestSessionStore(t)

	sess := &ReadingSession{UserID: "user_1", Stage: "archived"}
	if err := store.Create(context.Background(), sess); err != ErrInvalidTransition {
		t.Errorf("Create() error = %v, want ErrInvalidTransition", err)
	}
}

func TestStore_GetByID_ScopedToUser(t *testing.T) {
	store := setupTestSessionStore(t)
	ctx := context.Background()

	sess := &ReadingSession{UserID: "user_1"}
	store.Create(ctx, sess)

	if _, err := store.GetByID(ctx, "user_1", sess.ID); err != nil {
		t.Errorf("owner GetByID() error = %v", err)
	}
	if _, err := store.GetByID(ctx, "user_2", sess.ID); err != shared.ErrNotFound {
		t.Errorf("other user GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestStore_AdvanceStage_Forward(t *testing.T) {
	store := setupTestSessionStore(t)
	ctx := context.Background()

	sess := &ReadingSession{UserID: "user_1"}
	store.Create(ctx, sess)

	for _, to := range []pipeline.Stage{
		pipeline.StageUploading,
		pipeline.StageTranscribing,
		pipeline.StageSynthesizing,
		pipeline.StageCompleting,
	} {
		updated, err := store.AdvanceStage(ctx, "user_1", sess.ID, to)
		if err != nil {
			t.Fatalf("AdvanceStage(%s) error = %v", to, err)
		}
		if updated.Stage != to {
			t.Errorf("Stage = %q, want %q", updated.Stage, to)
		}
	}
}

func TestStore_AdvanceStage_RejectsSkipsAndBackward(t *testing.T) {
	store := setupTestSessionStore(t)
	ctx := context.Background()

	sess := &ReadingSession{UserID: "user_1"}
	store.Create(ctx, sess)

	tests := []struct {
		name string
		to   pipeline.Stage
	}{
		{name: "skip forward", to: pipeline.StageTranscribing},
		{name: "same stage", to: pipeline.StageRecording},
		{name: "unknown stage", to: "archived"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.AdvanceStage(ctx, "user_1", sess.ID, tt.to); err != ErrInvalidTransition {
				t.Errorf("AdvanceStage(%s) error = %v, want ErrInvalidTransition", tt.to, err)
			}
		})
	}

	// Backward after a legitimate advance.
	store.AdvanceStage(ctx, "user_1", sess.ID, pipeline.StageUploading)
	if _, err := store.AdvanceStage(ctx, "user_1", sess.ID, pipeline.StageRecording); err != ErrInvalidTransition {
		t.Errorf("backward AdvanceStage error = %v, want ErrInvalidTransition", err)
	}
}

func TestStore_RecordOutcome(t *testing.T) {
	store := setupTestSessionStore(t)
	ctx := context.Background()

	sess := &ReadingSession{UserID: "user_1"}
	store.Create(ctx, sess)

	outcome := pipeline.Outcome{
		Provider:     "openai",
		Transcript:   "hello world",
		UsedFallback: false,
	}
	if err := store.RecordOutcome(ctx, sess.ID, outcome); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}

	got, _ := store.GetByID(ctx, "user_1", sess.ID)
	if got.Provider != "openai" || got.Transcript != "hello world" {
		t.Errorf("session = %+v", got)
	}
}

func TestStore_RecordOutcome_WithError(t *testing.T) {
	store := setupTestSessionStore(t)
	ctx := context.Background()

	sess := &ReadingSession{UserID: "user_1"}
	store.Create(ctx, sess)

	outcome := pipeline.Outcome{
		UsedFallback:       true,
		TranscriptionError: &stt.Error{Kind: stt.KindNetworkError, Message: "connection refused"},
	}
	if err := store.RecordOutcome(ctx, sess.ID, outcome); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}

	got, _ := store.GetByID(ctx, "user_1", sess.ID)
	if !got.UsedFallback || got.ErrorKind != "network_error" {
		t.Errorf("session = %+v", got)
	}
}

func TestStore_AppendAndListArtifacts(t *testing.T) {
	store := setupTestSessionStore(t)
	ctx := context.Background()

	sess := &ReadingSession{UserID: "user_1"}
	store.Create(ctx, sess)

	artifacts := []synthesis.Artifact{
		{Kind: synthesis.KindInsight, Title: "Session insight 1", Content: "first"},
		{Kind: synthesis.KindOpenQuestion, Title: "Open question 1", Content: "second"},
	}
	if err := store.AppendArtifacts(ctx, sess.ID, artifacts); err != nil {
		t.Fatalf("AppendArtifacts() error = %v", err)
	}

	got, err := store.ArtifactsBySession(ctx, "user_1", sess.ID)
	if err != nil {
		t.Fatalf("ArtifactsBySession() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(artifacts) = %d, want 2", len(got))
	}
	if got[0].Kind != "insight" || got[0].Position != 0 {
		t.Errorf("first artifact = %+v", got[0])
	}
	if got[1].Kind != "openQuestion" || got[1].Position != 1 {
		t.Errorf("second artifact = %+v", got[1])
	}
}

func TestStore_ArtifactsBySession_OtherUser(t *testing.T) {
	store := setupTestSessionStore(t)
	ctx := context.Background()

	sess := &ReadingSession{UserID: "user_1"}
	store.Create(ctx, sess)

	if _, err := store.ArtifactsBySession(ctx, "user_2", sess.ID); err != shared.ErrNotFound {
		t.Errorf("ArtifactsBySession() error = %v, want ErrNotFound", err)
	}
}
