package session

import (
	"time"

	"github.com/misty-step/bibliomnomnom-sub004/internal/pipeline"
)

// ReadingSession is one spoken reflection: recorded, transcribed and
// distilled into artifacts. Stage only ever moves forward through the
// pipeline lifecycle.
type ReadingSession struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	UserID       string         `gorm:"not null;index" json:"user_id"`
	BookID       string         `gorm:"index" json:"book_id,omitempty"`
	Stage        pipeline.Stage `gorm:"not null;default:recording" json:"stage"`
	Provider     string         `json:"provider,omitempty"`
	Transcript   string         `gorm:"type:text" json:"transcript,omitempty"`
	UsedFallback bool           `json:"used_fallback"`
	ErrorKind    string         `json:"error_kind,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// SessionArtifact is one synthesized (or fallback) artifact attached to a
// session. Position preserves generation order.
type SessionArtifact struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	Kind      string    `gorm:"not null" json:"kind"`
	Title     string    `json:"title,omitempty"`
	Content   string    `gorm:"type:text" json:"content"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
