package library

import (
	"time"

	"github.com/misty-step/bibliomnomnom-sub004/internal/shared"
)

type BookStatus string

const (
	StatusReading    BookStatus = "reading"
	StatusWantToRead BookStatus = "want"
	StatusRead       BookStatus = "read"
)

func (s BookStatus) Valid() bool {
	switch s {
	case StatusReading, StatusWantToRead, StatusRead:
		return true
	}
	return false
}

type Book struct {
	ID        string             `gorm:"primaryKey" json:"id"`
	UserID    string             `gorm:"not null;index" json:"user_id"`
	Title     string             `gorm:"not null" json:"title"`
	Author    string             `json:"author,omitempty"`
	Status    BookStatus         `gorm:"not null;default:reading;index" json:"status"`
	Tags      shared.StringSlice `gorm:"type:text" json:"tags,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type Note struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	BookID    string    `gorm:"index" json:"book_id,omitempty"`
	Body      string    `gorm:"not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
